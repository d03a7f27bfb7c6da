package migration

import (
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	leaddomain "github.com/coachdesk/coachdesk/internal/lead/domain"
	paymentdomain "github.com/coachdesk/coachdesk/internal/payment/domain"
	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
	"gorm.io/gorm"
)

// AutoMigrate creates the schema from the gorm models. It is the
// migration path for sqlite deployments and for tests; postgres uses the
// embedded SQL files so the schema history stays explicit.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&catalogdomain.Course{},
		&catalogdomain.FeeLineItem{},
		&catalogdomain.Subject{},
		&studentdomain.Student{},
		&leaddomain.Lead{},
		&leaddomain.FollowUpNote{},
		&admissiondomain.Admission{},
		&admissiondomain.Installment{},
		&boardbillingdomain.MonthlyBill{},
		&paymentdomain.Receipt{},
	)
}
