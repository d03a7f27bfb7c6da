package server

import (
	"net/http"
	"time"

	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	paymentdomain "github.com/coachdesk/coachdesk/internal/payment/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type recordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	TransactionID string          `json:"transaction_id"`
	ChequeNo      string          `json:"cheque_no"`
	ChequeDate    *time.Time      `json:"cheque_date"`
	ReceivedDate  *time.Time      `json:"received_date"`
	Remarks       string          `json:"remarks"`
}

func (s *Server) RecordInstallmentPayment(c *gin.Context) {
	admissionID, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	no, err := parseIntParam(c, "no")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	receipt, err := s.paymentSvc.RecordInstallmentPayment(c.Request.Context(), paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   admissionID,
		InstallmentNo: no,
		Amount:        req.Amount,
		Method:        admissiondomain.PaymentMethod(req.Method),
		TransactionID: req.TransactionID,
		ChequeNo:      req.ChequeNo,
		ChequeDate:    req.ChequeDate,
		ReceivedDate:  req.ReceivedDate,
		Remarks:       req.Remarks,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

func (s *Server) RecordMonthlyBillPayment(c *gin.Context) {
	admissionID, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	no, err := parseIntParam(c, "no")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	receipt, err := s.paymentSvc.RecordMonthlyBillPayment(c.Request.Context(), paymentdomain.RecordMonthlyBillPaymentRequest{
		AdmissionID:   admissionID,
		MonthNo:       no,
		Amount:        req.Amount,
		Method:        admissiondomain.PaymentMethod(req.Method),
		TransactionID: req.TransactionID,
		ChequeNo:      req.ChequeNo,
		ChequeDate:    req.ChequeDate,
		ReceivedDate:  req.ReceivedDate,
		Remarks:       req.Remarks,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

func (s *Server) ConfirmClearance(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	receipt, err := s.paymentSvc.ConfirmClearance(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": receipt})
}

func (s *Server) BounceCheque(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Remarks string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	receipt, err := s.paymentSvc.BounceCheque(c.Request.Context(), id, req.Remarks)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": receipt})
}
