package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-engine/internal/domain"
)

// LoanService is the loan lifecycle as seen by the HTTP layer
type LoanService interface {
	CreateLoan(ctx context.Context, userID uuid.UUID, req *domain.CreateLoanRequest) (*domain.Loan, error)
	GetLoan(ctx context.Context, id, userID uuid.UUID) (*domain.Loan, error)
	ListLoans(ctx context.Context, filter domain.LoanFilter) (*domain.LoanListResponse, error)
	LoanStats(ctx context.Context, userID uuid.UUID) (*domain.LoanStatsResponse, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status string) (*domain.Loan, error)
	DeleteLoan(ctx context.Context, id, userID uuid.UUID) error
}

type NotificationService interface {
	ListNotifications(ctx context.Context, filter domain.NotificationFilter) (*domain.NotificationListResponse, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ReminderService interface {
	Run(ctx context.Context, now time.Time) (*domain.RunReport, error)
	LastRun(ctx context.Context) (*domain.RunReport, error)
}

// NewValidator returns a validator that understands decimal.Decimal fields
// through the decimal_gt and decimal_gte tags.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("decimal_gt", decimalCompare(func(cmp int) bool { return cmp > 0 }))
	_ = v.RegisterValidation("decimal_gte", decimalCompare(func(cmp int) bool { return cmp >= 0 }))

	return v
}

func decimalCompare(ok func(cmp int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return ok(value.Cmp(bound))
	}
}

// validationMessage turns the first validator failure into a sentence for the user
func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "Invalid request"
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "decimal_gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "decimal_gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

const (
	maxBodyBytes = 1 << 20

	// maxQueryInt bounds page and limit so page*limit stays far from overflow
	maxQueryInt = 100000
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// queryInt reads a non-negative integer query parameter; absent means 0
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	if n > maxQueryInt {
		return 0, fmt.Errorf("%s must be at most %d", name, maxQueryInt)
	}
	return n, nil
}
