package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	"github.com/coachdesk/coachdesk/internal/clock"
	"github.com/coachdesk/coachdesk/internal/config"
	paymentdomain "github.com/coachdesk/coachdesk/internal/payment/domain"
	"github.com/coachdesk/coachdesk/pkg/db/option"
	"github.com/coachdesk/coachdesk/pkg/repository"
	"github.com/oklog/ulid/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const payLockTTL = 30 * time.Second

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Config   config.Config
	Clock    clock.Clock
	BoardSvc boardbillingdomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	locker   *locker
	boardSvc boardbillingdomain.Service

	admissionRepo repository.Repository[admissiondomain.Admission]
	receiptRepo   repository.Repository[paymentdomain.Receipt]
}

func NewService(p ServiceParam) paymentdomain.Service {
	var client *redis.Client
	if addr := strings.TrimSpace(p.Config.RedisAddr); addr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: strings.TrimSpace(p.Config.RedisPassword),
			DB:       p.Config.RedisDB,
		})
	}

	return &Service{
		db:    p.DB,
		log:   p.Log.Named("payment.service"),
		genID: p.GenID,
		clock: p.Clock,

		locker:   newLocker(client),
		boardSvc: p.BoardSvc,

		admissionRepo: repository.ProvideStore[admissiondomain.Admission](p.DB),
		receiptRepo:   repository.ProvideStore[paymentdomain.Receipt](p.DB),
	}
}

func (s *Service) RecordInstallmentPayment(ctx context.Context, req paymentdomain.RecordInstallmentPaymentRequest) (*paymentdomain.Receipt, error) {
	if err := validateInstrument(req.Method, req.Amount, req.ChequeNo); err != nil {
		return nil, err
	}

	lockKey := fmt.Sprintf("paylock:%s:%d", req.AdmissionID, req.InstallmentNo)
	token, ok, err := s.locker.TryLock(ctx, lockKey, payLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, paymentdomain.ErrPaymentInProgress
	}
	defer s.locker.Release(ctx, lockKey, token)

	receivedDate := s.clock.Now()
	if req.ReceivedDate != nil {
		receivedDate = *req.ReceivedDate
	}

	var receipt *paymentdomain.Receipt
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admission, err := s.admissionRepo.WithTrx(tx).FindOne(ctx, &admissiondomain.Admission{ID: req.AdmissionID})
		if err != nil {
			return err
		}
		if admission == nil {
			return paymentdomain.ErrNotFound
		}

		var installment admissiondomain.Installment
		err = lockForUpdate(tx).
			Where("admission_id = ? AND number = ?", req.AdmissionID, req.InstallmentNo).
			First(&installment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return paymentdomain.ErrInstallmentNotFound
			}
			return err
		}
		if settled(installment.Status) {
			return paymentdomain.ErrAlreadyPaid
		}
		if req.Amount.LessThan(installment.Amount) {
			return paymentdomain.ErrInvalidAmount
		}

		status := admissiondomain.InstallmentStatusPaid
		if req.Method.IsClearing() {
			status = admissiondomain.InstallmentStatusPendingClearance
		}

		res := tx.Model(&admissiondomain.Installment{}).
			Where("id = ? AND status IN ?", installment.ID, openStatuses()).
			Updates(map[string]any{
				"status":         status,
				"paid_amount":    req.Amount,
				"payment_method": req.Method,
				"transaction_id": req.TransactionID,
				"cheque_no":      req.ChequeNo,
				"cheque_date":    req.ChequeDate,
				"received_date":  receivedDate,
				"remarks":        req.Remarks,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return paymentdomain.ErrAlreadyPaid
		}

		installmentID := installment.ID
		receipt = s.buildReceipt(admission, req.Method, req.Amount,
			req.Amount.Sub(installment.Amount), req.TransactionID, req.ChequeNo,
			req.ChequeDate, receivedDate, req.Remarks)
		receipt.InstallmentID = &installmentID
		return s.receiptRepo.WithTrx(tx).Create(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	s.logPayment(receipt, "installment payment recorded",
		zap.Int("installment_no", req.InstallmentNo))
	return receipt, nil
}

func (s *Service) RecordMonthlyBillPayment(ctx context.Context, req paymentdomain.RecordMonthlyBillPaymentRequest) (*paymentdomain.Receipt, error) {
	if err := validateInstrument(req.Method, req.Amount, req.ChequeNo); err != nil {
		return nil, err
	}

	lockKey := fmt.Sprintf("paylock:%s:month:%d", req.AdmissionID, req.MonthNo)
	token, ok, err := s.locker.TryLock(ctx, lockKey, payLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, paymentdomain.ErrPaymentInProgress
	}
	defer s.locker.Release(ctx, lockKey, token)

	// Resolve the month first so the due amount reflects inherited
	// subjects and current catalog prices.
	bill, err := s.boardSvc.OpenMonth(ctx, req.AdmissionID, req.MonthNo)
	if err != nil {
		if errors.Is(err, boardbillingdomain.ErrInvalidMonth) {
			return nil, paymentdomain.ErrMonthNotFound
		}
		if errors.Is(err, boardbillingdomain.ErrNotFound) {
			return nil, paymentdomain.ErrNotFound
		}
		return nil, err
	}

	receivedDate := s.clock.Now()
	if req.ReceivedDate != nil {
		receivedDate = *req.ReceivedDate
	}

	var receipt *paymentdomain.Receipt
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admission, err := s.admissionRepo.WithTrx(tx).FindOne(ctx, &admissiondomain.Admission{ID: req.AdmissionID})
		if err != nil {
			return err
		}
		if admission == nil {
			return paymentdomain.ErrNotFound
		}

		if settled(bill.Status) {
			return paymentdomain.ErrAlreadyPaid
		}
		if req.Amount.LessThan(bill.Amount) {
			return paymentdomain.ErrInvalidAmount
		}

		status := admissiondomain.InstallmentStatusPaid
		updates := map[string]any{
			"status":         status,
			"paid_amount":    req.Amount,
			"payment_method": req.Method,
			"transaction_id": req.TransactionID,
			"cheque_no":      req.ChequeNo,
			"cheque_date":    req.ChequeDate,
			"received_date":  receivedDate,
			"remarks":        req.Remarks,
			"frozen_at":      receivedDate,
		}
		if req.Method.IsClearing() {
			status = admissiondomain.InstallmentStatusPendingClearance
			updates["status"] = status
			// Clearing freezes via status; frozen_at is stamped only
			// once the instrument clears.
			delete(updates, "frozen_at")
		}

		res := tx.Model(&boardbillingdomain.MonthlyBill{}).
			Where("id = ? AND status IN ? AND frozen_at IS NULL", bill.ID, openStatuses()).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return paymentdomain.ErrAlreadyPaid
		}

		billID := bill.ID
		receipt = s.buildReceipt(admission, req.Method, req.Amount,
			req.Amount.Sub(bill.Amount), req.TransactionID, req.ChequeNo,
			req.ChequeDate, receivedDate, req.Remarks)
		receipt.MonthlyBillID = &billID
		return s.receiptRepo.WithTrx(tx).Create(ctx, receipt)
	})
	if err != nil {
		return nil, err
	}

	s.logPayment(receipt, "monthly bill payment recorded",
		zap.Int("month_no", req.MonthNo))
	return receipt, nil
}

func (s *Service) ConfirmClearance(ctx context.Context, receiptID snowflake.ID) (*paymentdomain.Receipt, error) {
	var receipt *paymentdomain.Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		receipt, err = s.pendingReceipt(ctx, tx, receiptID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if receipt.InstallmentID != nil {
			err = s.settleRow(tx, &admissiondomain.Installment{}, *receipt.InstallmentID, map[string]any{
				"status": admissiondomain.InstallmentStatusPaid,
			})
		} else {
			err = s.settleRow(tx, &boardbillingdomain.MonthlyBill{}, *receipt.MonthlyBillID, map[string]any{
				"status":    admissiondomain.InstallmentStatusPaid,
				"frozen_at": now,
			})
		}
		if err != nil {
			return err
		}

		receipt.Status = paymentdomain.ReceiptStatusIssued
		return s.receiptRepo.WithTrx(tx).Update(ctx, receipt.ID.String(), map[string]any{
			"status": receipt.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logPayment(receipt, "clearance confirmed")
	return receipt, nil
}

func (s *Service) BounceCheque(ctx context.Context, receiptID snowflake.ID, remarks string) (*paymentdomain.Receipt, error) {
	var receipt *paymentdomain.Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		receipt, err = s.pendingReceipt(ctx, tx, receiptID)
		if err != nil {
			return err
		}

		reopen := map[string]any{
			"status":         admissiondomain.InstallmentStatusPending,
			"paid_amount":    decimal.Zero,
			"payment_method": "",
			"transaction_id": "",
			"cheque_no":      "",
			"cheque_date":    nil,
			"received_date":  nil,
		}
		if receipt.InstallmentID != nil {
			err = s.settleRow(tx, &admissiondomain.Installment{}, *receipt.InstallmentID, reopen)
		} else {
			err = s.settleRow(tx, &boardbillingdomain.MonthlyBill{}, *receipt.MonthlyBillID, reopen)
		}
		if err != nil {
			return err
		}

		receipt.Status = paymentdomain.ReceiptStatusVoid
		receipt.Remarks = remarks
		return s.receiptRepo.WithTrx(tx).Update(ctx, receipt.ID.String(), map[string]any{
			"status":  receipt.Status,
			"remarks": remarks,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logPayment(receipt, "cheque bounced")
	return receipt, nil
}

func (s *Service) GetReceipt(ctx context.Context, id snowflake.ID) (*paymentdomain.Receipt, error) {
	receipt, err := s.receiptRepo.FindOne(ctx, &paymentdomain.Receipt{ID: id})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, paymentdomain.ErrNotFound
	}
	return receipt, nil
}

func (s *Service) GetReceiptByNo(ctx context.Context, receiptNo string) (*paymentdomain.Receipt, error) {
	receipt, err := s.receiptRepo.FindOne(ctx, &paymentdomain.Receipt{ReceiptNo: receiptNo})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, paymentdomain.ErrNotFound
	}
	return receipt, nil
}

func (s *Service) ListReceipts(ctx context.Context, admissionID snowflake.ID) ([]paymentdomain.Receipt, error) {
	rows, err := s.receiptRepo.Find(ctx,
		&paymentdomain.Receipt{AdmissionID: admissionID},
		option.WithOrder("id DESC"),
	)
	if err != nil {
		return nil, err
	}

	receipts := make([]paymentdomain.Receipt, 0, len(rows))
	for _, row := range rows {
		receipts = append(receipts, *row)
	}
	return receipts, nil
}

func (s *Service) buildReceipt(
	admission *admissiondomain.Admission,
	method admissiondomain.PaymentMethod,
	amount, excess decimal.Decimal,
	transactionID, chequeNo string,
	chequeDate *time.Time,
	receivedDate time.Time,
	remarks string,
) *paymentdomain.Receipt {
	status := paymentdomain.ReceiptStatusIssued
	if method.IsClearing() {
		status = paymentdomain.ReceiptStatusPendingClearance
	}
	return &paymentdomain.Receipt{
		ID:            s.genID.Generate(),
		BranchID:      admission.BranchID,
		ReceiptNo:     ulid.Make().String(),
		AdmissionID:   admission.ID,
		StudentID:     admission.StudentID,
		Amount:        amount,
		ExcessAmount:  excess,
		Method:        method,
		TransactionID: transactionID,
		ChequeNo:      chequeNo,
		ChequeDate:    chequeDate,
		ReceivedDate:  receivedDate,
		Remarks:       remarks,
		Status:        status,
	}
}

func (s *Service) pendingReceipt(ctx context.Context, tx *gorm.DB, receiptID snowflake.ID) (*paymentdomain.Receipt, error) {
	receipt, err := s.receiptRepo.WithTrx(lockForUpdate(tx)).FindOne(ctx, &paymentdomain.Receipt{ID: receiptID})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, paymentdomain.ErrNotFound
	}
	if receipt.Status != paymentdomain.ReceiptStatusPendingClearance {
		return nil, paymentdomain.ErrNotInClearance
	}
	return receipt, nil
}

func (s *Service) settleRow(tx *gorm.DB, model any, id snowflake.ID, updates map[string]any) error {
	res := tx.Model(model).
		Where("id = ? AND status = ?", id, admissiondomain.InstallmentStatusPendingClearance).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return paymentdomain.ErrNotInClearance
	}
	return nil
}

func (s *Service) logPayment(receipt *paymentdomain.Receipt, msg string, fields ...zap.Field) {
	fields = append(fields,
		zap.String("receipt_no", receipt.ReceiptNo),
		zap.String("admission_id", receipt.AdmissionID.String()),
		zap.String("amount", receipt.Amount.String()),
		zap.String("method", string(receipt.Method)),
	)
	if receipt.ExcessAmount.IsPositive() {
		fields = append(fields, zap.String("excess_amount", receipt.ExcessAmount.String()))
	}
	s.log.Info(msg, fields...)
}

func validateInstrument(method admissiondomain.PaymentMethod, amount decimal.Decimal, chequeNo string) error {
	if !method.Valid() {
		return paymentdomain.ErrInvalidMethod
	}
	if !amount.IsPositive() {
		return paymentdomain.ErrInvalidAmount
	}
	if method.IsClearing() && strings.TrimSpace(chequeNo) == "" {
		return paymentdomain.ErrChequeDetailMissing
	}
	return nil
}

func settled(status admissiondomain.InstallmentStatus) bool {
	return status == admissiondomain.InstallmentStatusPaid ||
		status == admissiondomain.InstallmentStatusPendingClearance
}

func openStatuses() []admissiondomain.InstallmentStatus {
	return []admissiondomain.InstallmentStatus{
		admissiondomain.InstallmentStatusPending,
		admissiondomain.InstallmentStatusOverdue,
	}
}

// lockForUpdate takes a row lock on engines that support it; sqlite
// serializes writers anyway and rejects the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
