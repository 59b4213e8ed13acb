package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// PaymentService records and queries student payments. Amount bounds
// (0.01 to 10000.00 inclusive) are validated here and enforced again
// by the store's CHECK constraint.
type PaymentService interface {
	Create(ctx context.Context, np NewPayment) (Payment, error)
	QueryByStudent(ctx context.Context, studentID int) ([]Payment, error)
	QueryPending(ctx context.Context) ([]Payment, error)
}

type paymentService struct {
	repo     Repository
	validate *validator.Validate
}

var _ PaymentService = (*paymentService)(nil)

func NewPaymentService(repo Repository, validate *validator.Validate) PaymentService {
	return &paymentService{repo: repo, validate: validate}
}

func (svc *paymentService) Create(ctx context.Context, np NewPayment) (Payment, error) {
	if err := np.Validate(svc.validate); err != nil {
		return Payment{}, err
	}
	p := Payment{
		StudentID:     np.StudentID,
		Amount:        np.Amount,
		PaymentDate:   time.Now().UTC(),
		Status:        np.Status,
		TransactionID: uuid.New().String(),
		PaymentMethod: np.PaymentMethod,
	}
	p, err := svc.repo.CreatePayment(ctx, p)
	if err != nil {
		return Payment{}, errors.Wrap(err, "creating payment")
	}
	return p, nil
}

func (svc *paymentService) QueryByStudent(ctx context.Context, studentID int) ([]Payment, error) {
	return svc.repo.QueryPaymentsByStudent(ctx, studentID)
}

func (svc *paymentService) QueryPending(ctx context.Context) ([]Payment, error) {
	return svc.repo.QueryPendingPayments(ctx)
}
