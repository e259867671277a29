package domain

import "time"

// All monetary values are stored as int64 cents so ledger arithmetic stays
// exact. Conversion to and from decimal currency units happens only at the
// API boundary (see internal/money).

const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

const (
	PaymentMethodCash         = "Cash"
	PaymentMethodCheque       = "Cheque"
	PaymentMethodBankTransfer = "BankTransfer"
)

// DirectRefundSaleID marks a return transaction that is not tied to any
// originating sale: a cash payout drawn against the customer's store credit.
const DirectRefundSaleID = "DIRECT_REFUND"

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CustomerCreateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CustomerUpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// AdditionalPayment is a later settlement applied to a sale that was
// originally left partly on credit. It counts toward the cash position of
// the staff member and day it was collected on, not the sale's.
type AdditionalPayment struct {
	ID          string    `json:"id"`
	SaleID      string    `json:"saleId"`
	AmountCents int64     `json:"amountCents"`
	Method      string    `json:"method"`
	StaffID     string    `json:"staffId"`
	PaidAt      time.Time `json:"paidAt"`
}

type Sale struct {
	ID                    string              `json:"id"`
	CustomerID            string              `json:"customerId,omitempty"`
	CustomerName          string              `json:"customerName,omitempty"`
	StaffID               string              `json:"staffId"`
	Status                string              `json:"status"`
	SaleDate              time.Time           `json:"saleDate"`
	TotalAmountCents      int64               `json:"totalAmountCents"`
	PaidCashCents         int64               `json:"paidCashCents"`
	PaidChequeCents       int64               `json:"paidChequeCents"`
	PaidBankTransferCents int64               `json:"paidBankTransferCents"`
	CreditUsedCents       int64               `json:"creditUsedCents"`
	AdditionalPayments    []AdditionalPayment `json:"additionalPayments,omitempty"`
}

type SaleCreateRequest struct {
	CustomerID       string  `json:"customerId"`
	CustomerName     string  `json:"customerName"`
	StaffID          string  `json:"staffId"`
	SaleDate         string  `json:"saleDate,omitempty"`
	TotalAmount      float64 `json:"totalAmount"`
	PaidCash         float64 `json:"paidCash"`
	PaidCheque       float64 `json:"paidCheque"`
	PaidBankTransfer float64 `json:"paidBankTransfer"`
	CreditUsed       float64 `json:"creditUsed"`
}

type SalePaymentRequest struct {
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
	StaffID string  `json:"staffId"`
}

type ReturnItem struct {
	ItemID         string `json:"itemId,omitempty"`
	Name           string `json:"name"`
	Qty            int    `json:"qty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// ReturnTransaction records any credit or cash event on a customer's
// account. RefundAmountCents is signed: positive grants store credit,
// negative debits it (cash paid out against existing credit).
type ReturnTransaction struct {
	ID                string       `json:"id"`
	OriginalSaleID    string       `json:"originalSaleId"`
	ReturnDate        time.Time    `json:"returnDate"`
	StaffID           string       `json:"staffId"`
	CustomerID        string       `json:"customerId"`
	CustomerName      string       `json:"customerName,omitempty"`
	ReturnedItems     []ReturnItem `json:"returnedItems"`
	ExchangedItems    []ReturnItem `json:"exchangedItems"`
	CashPaidOutCents  int64        `json:"cashPaidOutCents"`
	RefundAmountCents int64        `json:"refundAmountCents"`
}

type ReturnCreateRequest struct {
	OriginalSaleID string       `json:"originalSaleId"`
	CustomerID     string       `json:"customerId"`
	CustomerName   string       `json:"customerName"`
	StaffID        string       `json:"staffId"`
	ReturnedItems  []ReturnItem `json:"returnedItems,omitempty"`
	ExchangedItems []ReturnItem `json:"exchangedItems,omitempty"`
	CashPaidOut    float64      `json:"cashPaidOut"`
	RefundAmount   float64      `json:"refundAmount"`
}

// DirectRefundRequest is the wire contract of POST /returns/direct-refund.
// Amounts travel as decimal currency units.
type DirectRefundRequest struct {
	CustomerID   string  `json:"customerId"`
	CustomerName string  `json:"customerName"`
	CashPaidOut  float64 `json:"cashPaidOut"`
	StaffID      string  `json:"staffId"`
}

// ReturnTransactionView is the currency-unit projection of a
// ReturnTransaction used in API responses.
type ReturnTransactionView struct {
	ID             string       `json:"id"`
	OriginalSaleID string       `json:"originalSaleId"`
	ReturnDate     time.Time    `json:"returnDate"`
	StaffID        string       `json:"staffId"`
	CustomerID     string       `json:"customerId"`
	CustomerName   string       `json:"customerName,omitempty"`
	ReturnedItems  []ReturnItem `json:"returnedItems"`
	ExchangedItems []ReturnItem `json:"exchangedItems"`
	CashPaidOut    float64      `json:"cashPaidOut"`
	RefundAmount   float64      `json:"refundAmount"`
}

type DirectRefundResponse struct {
	Message    string                `json:"message"`
	ReturnData ReturnTransactionView `json:"returnData"`
}

type CreditSummary struct {
	CustomerID      string  `json:"customerId"`
	AvailableCredit float64 `json:"availableCredit"`
}

type Expense struct {
	ID          string    `json:"id"`
	StaffID     string    `json:"staffId"`
	AmountCents int64     `json:"amountCents"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
}

type ExpenseCreateRequest struct {
	StaffID     string  `json:"staffId"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// DailyCountSummary is the per-staff cash reconciliation for one day. A day
// with no records still yields a valid zeroed summary.
type DailyCountSummary struct {
	ReportDate             string `json:"reportDate"`
	StaffID                string `json:"staffId"`
	TotalTransactions      int    `json:"totalTransactions"`
	GrossSalesCents        int64  `json:"grossSalesCents"`
	TotalCashInCents       int64  `json:"totalCashInCents"`
	TotalChequeInCents     int64  `json:"totalChequeInCents"`
	TotalBankTransferCents int64  `json:"totalBankTransferCents"`
	TotalRefundsPaidCents  int64  `json:"totalRefundsPaidCents"`
	TotalExpensesCents     int64  `json:"totalExpensesCents"`
	NetCashInHandCents     int64  `json:"netCashInHandCents"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expiresAt"`
}

type Actor struct {
	Username string
	Role     string
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actorUsername"`
	ActorRole     string    `json:"actorRole"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entityType"`
	EntityID      string    `json:"entityId"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"createdAt"`
}
