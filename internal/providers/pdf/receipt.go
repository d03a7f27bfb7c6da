package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoProvider struct{}

func NewMaroto() *MarotoProvider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, "Fee Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, data.ReceiptNo, props.Text{
			Size:  10,
			Align: align.Right,
			Top:   4,
		}),
	)

	m.AddRow(24,
		col.New(6).Add(
			text.New(data.InstituteName, props.Text{Style: fontstyle.Bold}),
			text.New(data.InstituteAddress, props.Text{Top: 5, Size: 9}),
		),
		col.New(6).Add(
			text.New("Date paid: "+data.DatePaid, props.Text{Align: align.Right}),
			text.New("Status: "+data.Status, props.Text{Top: 4, Align: align.Right}),
		),
	)

	m.AddRow(24,
		col.New(12).Add(
			text.New("Received from", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(data.GuardianName, props.Text{Top: 4}),
			text.New("For student: "+data.StudentName+" ("+data.CourseName+")", props.Text{Top: 9, Size: 9}),
		),
	)

	m.AddRow(8,
		text.NewCol(9, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, line := range data.Lines {
		m.AddRow(8,
			text.NewCol(9, line.Description, props.Text{Size: 9}),
			text.NewCol(3, line.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	if data.ExcessAmount != "" {
		m.AddRow(8,
			text.NewCol(9, "Excess received (adjustable at branch)", props.Text{Size: 9}),
			text.NewCol(3, data.ExcessAmount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Total paid", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(3, data.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	method := "Paid by " + data.Method
	if data.ChequeNo != "" {
		method += " (" + data.ChequeNo + ")"
	}
	m.AddRow(10,
		text.NewCol(12, method, props.Text{Size: 9}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
