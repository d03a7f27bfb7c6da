package server

import (
	"fmt"
	"net/http"
	"strings"

	paymentdomain "github.com/coachdesk/coachdesk/internal/payment/domain"
	"github.com/coachdesk/coachdesk/internal/providers/pdf"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListReceipts(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	receipts, err := s.paymentSvc.ListReceipts(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": receipts})
}

func (s *Server) GetReceipt(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	receipt, err := s.paymentSvc.GetReceipt(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

func (s *Server) DownloadReceiptPDF(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	receipt, err := s.paymentSvc.GetReceipt(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data, err := s.receiptData(c, receipt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.GenerateReceipt(ctx, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", receipt.ReceiptNo))
	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, nil)
}

func (s *Server) receiptData(c *gin.Context, receipt *paymentdomain.Receipt) (pdf.ReceiptData, error) {
	ctx := c.Request.Context()

	detail, err := s.admissionSvc.Get(ctx, receipt.AdmissionID)
	if err != nil {
		return pdf.ReceiptData{}, err
	}
	student, err := s.studentSvc.Get(ctx, receipt.StudentID)
	if err != nil {
		return pdf.ReceiptData{}, err
	}
	course, err := s.catalogSvc.GetCourse(ctx, detail.Admission.CourseID)
	if err != nil {
		return pdf.ReceiptData{}, err
	}

	description := "Fee payment"
	if receipt.InstallmentID != nil {
		for _, installment := range detail.Installments {
			if installment.ID == *receipt.InstallmentID {
				description = fmt.Sprintf("Installment %d of %d", installment.Number, detail.Admission.NumberOfInstallments)
				break
			}
		}
	} else if receipt.MonthlyBillID != nil {
		bills, err := s.boardSvc.ListMonths(ctx, receipt.AdmissionID)
		if err != nil {
			return pdf.ReceiptData{}, err
		}
		for _, bill := range bills {
			if bill.ID == *receipt.MonthlyBillID {
				description = fmt.Sprintf("Month %d (%s)", bill.MonthNo, strings.Join(bill.Subjects, ", "))
				break
			}
		}
	}

	excess := ""
	if receipt.ExcessAmount.IsPositive() {
		excess = receipt.ExcessAmount.StringFixed(2)
	}

	return pdf.ReceiptData{
		InstituteName:    s.cfg.Billing.InstituteName,
		InstituteAddress: s.cfg.Billing.InstituteAddress,

		ReceiptNo: receipt.ReceiptNo,
		DatePaid:  receipt.ReceivedDate.Format("02 Jan 2006"),
		Status:    string(receipt.Status),
		Method:    string(receipt.Method),
		ChequeNo:  receipt.ChequeNo,

		StudentName:  strings.TrimSpace(student.FirstName + " " + student.LastName),
		GuardianName: student.GuardianName,
		CourseName:   course.Name,

		Lines: []pdf.ReceiptLine{
			{Description: description, Amount: receipt.Amount.Sub(receipt.ExcessAmount).StringFixed(2)},
		},
		ExcessAmount: excess,
		Total:        receipt.Amount.StringFixed(2),
	}, nil
}
