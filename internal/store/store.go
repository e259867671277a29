package store

import (
	"context"
	"errors"
	"time"

	"tillpoint/backend/internal/domain"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInsufficientCredit = errors.New("insufficient credit")
)

// Repository is the persistence surface shared by the memory and Postgres
// backends. Listing methods take half-open [from, to) windows; a limit below
// 1 means no cap, so aggregation callers see every matching record.
type Repository interface {
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, limit int) ([]domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	GetSaleByID(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, staffID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error)
	ListSalesByCustomer(ctx context.Context, customerID string) ([]domain.Sale, error)
	AppendSalePayment(ctx context.Context, payment domain.AdditionalPayment) (*domain.AdditionalPayment, error)
	ListPaymentsByStaffBetween(ctx context.Context, staffID string, from time.Time, to time.Time) ([]domain.AdditionalPayment, error)

	CreateReturn(ctx context.Context, ret domain.ReturnTransaction) (*domain.ReturnTransaction, error)
	ListReturns(ctx context.Context, staffID string, from time.Time, to time.Time, limit int) ([]domain.ReturnTransaction, error)
	ListReturnsByCustomer(ctx context.Context, customerID string) ([]domain.ReturnTransaction, error)

	CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error)
	ListExpenses(ctx context.Context, staffID string, from time.Time, to time.Time, limit int) ([]domain.Expense, error)

	// IncrementDailyCounter bumps the counter for the given day key
	// (yyyy-MM-dd) and returns the new value, starting at 1 for a fresh day.
	IncrementDailyCounter(ctx context.Context, day string) (int, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
