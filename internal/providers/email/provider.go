package email

import "context"

type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
	SendTemplate(ctx context.Context, to []string, templateName string, subject string, data any) error
}

// NoOpProvider is used when SMTP is not configured; sends are dropped.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}

func (p *NoOpProvider) SendTemplate(ctx context.Context, to []string, templateName string, subject string, data any) error {
	return nil
}
