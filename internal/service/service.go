package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tillpoint/backend/internal/cache"
	"tillpoint/backend/internal/domain"
	"tillpoint/backend/internal/money"
	"tillpoint/backend/internal/sequence"
	"tillpoint/backend/internal/store"
	"tillpoint/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// InsufficientCreditError reports a direct refund that asked for more than
// the customer's store credit can cover. Its message is part of the API
// contract consumed by the register frontend.
type InsufficientCreditError struct {
	RequestedCents int64
	AvailableCents int64
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("Refund amount of %s exceeds available credit of %s.",
		money.FormatCents(e.RequestedCents), money.FormatCents(e.AvailableCents))
}

func (e *InsufficientCreditError) Unwrap() error {
	return store.ErrInsufficientCredit
}

const directRefundScope = "direct-refund"

type Service struct {
	repo     store.Repository
	seq      *sequence.Generator
	reports  cache.ReportCache
	cacheTTL time.Duration

	// customerLocks serializes the read-validate-write section of direct
	// refunds per customer so two concurrent refunds cannot both pass the
	// credit check against the same balance. Striped so memory stays
	// bounded regardless of customer cardinality; customers sharing a
	// stripe only contend, never miss the exclusion.
	customerLocks [64]sync.Mutex
}

func New(repo store.Repository, seq *sequence.Generator, reports cache.ReportCache, cacheTTL time.Duration) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &Service{
		repo:     repo,
		seq:      seq,
		reports:  reports,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) lockCustomer(customerID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(customerID))
	return &s.customerLocks[h.Sum32()%uint32(len(s.customerLocks))]
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.Customer{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateCustomer(ctx, domain.Customer{
		ID:        xid.New("cust"),
		Name:      req.Name,
		Phone:     strings.TrimSpace(req.Phone),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, "customer_create", "customer", created.ID, fmt.Sprintf("name=%s", created.Name))
	return *created, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Customer{}, store.ErrInvalidInput
	}
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) ListCustomers(ctx context.Context, limit int) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx, limit)
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Customer{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Phone != nil {
		updated.Phone = strings.TrimSpace(*req.Phone)
	}

	saved, err := s.repo.UpdateCustomer(ctx, updated)
	if err != nil {
		return domain.Customer{}, err
	}

	s.logAudit(ctx, "customer_update", "customer", saved.ID, fmt.Sprintf("name=%s", saved.Name))
	return *saved, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return store.ErrInvalidInput
	}
	if err := s.repo.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "customer_delete", "customer", id, "")
	return nil
}

func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	req.StaffID = strings.TrimSpace(req.StaffID)
	if req.StaffID == "" {
		return domain.Sale{}, store.ErrInvalidInput
	}
	if req.TotalAmount < 0 || req.PaidCash < 0 || req.PaidCheque < 0 || req.PaidBankTransfer < 0 || req.CreditUsed < 0 {
		return domain.Sale{}, store.ErrInvalidInput
	}

	saleDate := time.Now().UTC()
	if strings.TrimSpace(req.SaleDate) != "" {
		parsed, err := time.Parse(time.RFC3339, req.SaleDate)
		if err != nil {
			return domain.Sale{}, store.ErrInvalidInput
		}
		saleDate = parsed.UTC()
	}

	sale := domain.Sale{
		ID:                    xid.New("sale"),
		CustomerID:            strings.TrimSpace(req.CustomerID),
		CustomerName:          strings.TrimSpace(req.CustomerName),
		StaffID:               req.StaffID,
		Status:                domain.SaleStatusCompleted,
		SaleDate:              saleDate,
		TotalAmountCents:      money.CentsFromUnits(req.TotalAmount),
		PaidCashCents:         money.CentsFromUnits(req.PaidCash),
		PaidChequeCents:       money.CentsFromUnits(req.PaidCheque),
		PaidBankTransferCents: money.CentsFromUnits(req.PaidBankTransfer),
		CreditUsedCents:       money.CentsFromUnits(req.CreditUsed),
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}

	s.logAudit(ctx, "sale_create", "sale", created.ID, fmt.Sprintf("total=%d,credit_used=%d", created.TotalAmountCents, created.CreditUsedCents))
	return *created, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Sale{}, store.ErrInvalidInput
	}
	sale, err := s.repo.GetSaleByID(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

// ListSales returns one day of sales, optionally narrowed to a staff member.
// An empty date means today (UTC), matching the register's day-scoped reads.
func (s *Service) ListSales(ctx context.Context, staffID string, date string, limit int) ([]domain.Sale, error) {
	from, to, err := dayWindow(date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, strings.TrimSpace(staffID), from, to, limit)
}

// RecordSalePayment appends a later settlement to a sale left partly on
// credit. The payment is attributed to the staff member and moment it was
// collected, which is what the reconciliation report keys on.
func (s *Service) RecordSalePayment(ctx context.Context, saleID string, req domain.SalePaymentRequest) (domain.AdditionalPayment, error) {
	saleID = strings.TrimSpace(saleID)
	req.StaffID = strings.TrimSpace(req.StaffID)
	if saleID == "" || req.StaffID == "" {
		return domain.AdditionalPayment{}, store.ErrInvalidInput
	}
	if req.Amount <= 0 || !isSupportedPaymentMethod(req.Method) {
		return domain.AdditionalPayment{}, store.ErrInvalidInput
	}

	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.AdditionalPayment{}, err
	}

	amountCents := money.CentsFromUnits(req.Amount)
	if amountCents > outstandingBalanceCents(sale) {
		return domain.AdditionalPayment{}, store.ErrInvalidInput
	}

	created, err := s.repo.AppendSalePayment(ctx, domain.AdditionalPayment{
		ID:          xid.New("pay"),
		SaleID:      saleID,
		AmountCents: amountCents,
		Method:      req.Method,
		StaffID:     req.StaffID,
		PaidAt:      time.Now().UTC(),
	})
	if err != nil {
		return domain.AdditionalPayment{}, err
	}

	s.logAudit(ctx, "sale_payment", "sale", saleID, fmt.Sprintf("amount=%d,method=%s", created.AmountCents, created.Method))
	return *created, nil
}

// RecordReturn registers a customer return. A positive refund amount grants
// store credit that later direct refunds draw down.
func (s *Service) RecordReturn(ctx context.Context, req domain.ReturnCreateRequest) (domain.ReturnTransaction, error) {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.StaffID = strings.TrimSpace(req.StaffID)
	req.OriginalSaleID = strings.TrimSpace(req.OriginalSaleID)
	if req.CustomerID == "" || req.StaffID == "" || req.OriginalSaleID == "" {
		return domain.ReturnTransaction{}, store.ErrInvalidInput
	}
	if req.RefundAmount < 0 || req.CashPaidOut < 0 {
		return domain.ReturnTransaction{}, store.ErrInvalidInput
	}

	ret := domain.ReturnTransaction{
		ID:                xid.New("ret"),
		OriginalSaleID:    req.OriginalSaleID,
		ReturnDate:        time.Now().UTC(),
		StaffID:           req.StaffID,
		CustomerID:        req.CustomerID,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		ReturnedItems:     req.ReturnedItems,
		ExchangedItems:    req.ExchangedItems,
		CashPaidOutCents:  money.CentsFromUnits(req.CashPaidOut),
		RefundAmountCents: money.CentsFromUnits(req.RefundAmount),
	}
	if ret.ReturnedItems == nil {
		ret.ReturnedItems = []domain.ReturnItem{}
	}
	if ret.ExchangedItems == nil {
		ret.ExchangedItems = []domain.ReturnItem{}
	}

	created, err := s.repo.CreateReturn(ctx, ret)
	if err != nil {
		return domain.ReturnTransaction{}, err
	}

	s.logAudit(ctx, "return_record", "return", created.ID, fmt.Sprintf("refund=%d,cash_out=%d", created.RefundAmountCents, created.CashPaidOutCents))
	return *created, nil
}

// ListReturns returns one day of return transactions; an empty date means
// today (UTC).
func (s *Service) ListReturns(ctx context.Context, staffID string, date string, limit int) ([]domain.ReturnTransaction, error) {
	from, to, err := dayWindow(date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListReturns(ctx, strings.TrimSpace(staffID), from, to, limit)
}

// AvailableCredit computes a customer's store credit balance: the signed sum
// of refund amounts across their returns minus the credit consumed by their
// sales. The two record sets are fetched concurrently.
func (s *Service) AvailableCredit(ctx context.Context, customerID string) (int64, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return 0, store.ErrInvalidInput
	}

	var returns []domain.ReturnTransaction
	var sales []domain.Sale

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		returns, err = s.repo.ListReturnsByCustomer(gctx, customerID)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.repo.ListSalesByCustomer(gctx, customerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var credit int64
	for _, ret := range returns {
		credit += ret.RefundAmountCents
	}
	for _, sale := range sales {
		credit -= sale.CreditUsedCents
	}
	return credit, nil
}

func (s *Service) CustomerCredit(ctx context.Context, customerID string) (domain.CreditSummary, error) {
	credit, err := s.AvailableCredit(ctx, customerID)
	if err != nil {
		return domain.CreditSummary{}, err
	}
	return domain.CreditSummary{
		CustomerID:      strings.TrimSpace(customerID),
		AvailableCredit: money.UnitsFromCents(credit),
	}, nil
}

// ProcessDirectRefund pays cash out against a customer's accumulated store
// credit. The whole check-then-write section holds a per-customer lock so
// the balance cannot be spent twice. Refunds up to exactly the available
// credit are allowed; one cent over is rejected.
func (s *Service) ProcessDirectRefund(ctx context.Context, req domain.DirectRefundRequest) (domain.DirectRefundResponse, error) {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.StaffID = strings.TrimSpace(req.StaffID)
	if req.CustomerID == "" || req.StaffID == "" {
		return domain.DirectRefundResponse{}, store.ErrInvalidInput
	}
	requested := money.CentsFromUnits(req.CashPaidOut)
	if requested <= 0 {
		return domain.DirectRefundResponse{}, store.ErrInvalidInput
	}

	mu := s.lockCustomer(req.CustomerID)
	mu.Lock()
	defer mu.Unlock()

	available, err := s.AvailableCredit(ctx, req.CustomerID)
	if err != nil {
		return domain.DirectRefundResponse{}, err
	}
	if requested > available {
		return domain.DirectRefundResponse{}, &InsufficientCreditError{
			RequestedCents: requested,
			AvailableCents: available,
		}
	}

	now := time.Now().UTC()
	ret := domain.ReturnTransaction{
		ID:                s.seq.Next(ctx, directRefundScope, now),
		OriginalSaleID:    domain.DirectRefundSaleID,
		ReturnDate:        now,
		StaffID:           req.StaffID,
		CustomerID:        req.CustomerID,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		ReturnedItems:     []domain.ReturnItem{},
		ExchangedItems:    []domain.ReturnItem{},
		CashPaidOutCents:  requested,
		RefundAmountCents: -requested,
	}

	created, err := s.repo.CreateReturn(ctx, ret)
	if err != nil {
		return domain.DirectRefundResponse{}, err
	}

	s.logAudit(ctx, "direct_refund", "return", created.ID, fmt.Sprintf("customer=%s,cash_out=%d", req.CustomerID, requested))

	return domain.DirectRefundResponse{
		Message:    "Direct refund processed successfully.",
		ReturnData: toReturnView(*created),
	}, nil
}

func (s *Service) RecordExpense(ctx context.Context, req domain.ExpenseCreateRequest) (domain.Expense, error) {
	req.StaffID = strings.TrimSpace(req.StaffID)
	req.Category = strings.TrimSpace(req.Category)
	if req.StaffID == "" || req.Category == "" || req.Amount <= 0 {
		return domain.Expense{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateExpense(ctx, domain.Expense{
		ID:          xid.New("exp"),
		StaffID:     req.StaffID,
		AmountCents: money.CentsFromUnits(req.Amount),
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Date:        time.Now().UTC(),
	})
	if err != nil {
		return domain.Expense{}, err
	}

	s.logAudit(ctx, "expense_record", "expense", created.ID, fmt.Sprintf("amount=%d,category=%s", created.AmountCents, created.Category))
	return *created, nil
}

// ListExpenses returns one day of expenses; an empty date means today (UTC).
func (s *Service) ListExpenses(ctx context.Context, staffID string, date string, limit int) ([]domain.Expense, error) {
	from, to, err := dayWindow(date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListExpenses(ctx, strings.TrimSpace(staffID), from, to, limit)
}

// DailyCount builds the cash reconciliation for one staff member and one
// calendar day. Every money movement counts on the day and staff it actually
// happened on: an additional payment collected today against last week's
// sale lands in today's report for whoever collected it. A day with no
// records yields a zeroed summary, never an error.
func (s *Service) DailyCount(ctx context.Context, staffID string, date string) (domain.DailyCountSummary, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return domain.DailyCountSummary{}, store.ErrInvalidInput
	}
	from, to, err := dayWindow(date)
	if err != nil {
		return domain.DailyCountSummary{}, err
	}
	reportDate := from.Format("2006-01-02")

	cacheKey := fmt.Sprintf("daily-count:%s:%s", staffID, reportDate)
	if cached, ok, err := s.reports.Get(ctx, cacheKey); err != nil {
		log.Printf("[service] WARN: daily count cache read failed key=%s: %v", cacheKey, err)
	} else if ok {
		return *cached, nil
	}

	var sales []domain.Sale
	var payments []domain.AdditionalPayment
	var returns []domain.ReturnTransaction
	var expenses []domain.Expense

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = s.repo.ListSales(gctx, staffID, from, to, 0)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.repo.ListPaymentsByStaffBetween(gctx, staffID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		returns, err = s.repo.ListReturns(gctx, staffID, from, to, 0)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.repo.ListExpenses(gctx, staffID, from, to, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.DailyCountSummary{}, err
	}

	summary := domain.DailyCountSummary{
		ReportDate: reportDate,
		StaffID:    staffID,
	}

	for _, sale := range sales {
		if sale.Status == domain.SaleStatusCancelled {
			continue
		}
		summary.TotalTransactions++
		summary.GrossSalesCents += sale.TotalAmountCents
		summary.TotalCashInCents += sale.PaidCashCents
		summary.TotalChequeInCents += sale.PaidChequeCents
		summary.TotalBankTransferCents += sale.PaidBankTransferCents
	}

	for _, payment := range payments {
		switch payment.Method {
		case domain.PaymentMethodCash:
			summary.TotalCashInCents += payment.AmountCents
		case domain.PaymentMethodCheque:
			summary.TotalChequeInCents += payment.AmountCents
		case domain.PaymentMethodBankTransfer:
			summary.TotalBankTransferCents += payment.AmountCents
		}
	}

	for _, ret := range returns {
		summary.TotalRefundsPaidCents += ret.CashPaidOutCents
	}
	for _, expense := range expenses {
		summary.TotalExpensesCents += expense.AmountCents
	}

	summary.NetCashInHandCents = summary.TotalCashInCents - summary.TotalRefundsPaidCents - summary.TotalExpensesCents

	if err := s.reports.Set(ctx, cacheKey, &summary, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: daily count cache write failed key=%s: %v", cacheKey, err)
	}
	return summary, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidInput
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

// dayWindow resolves a yyyy-MM-dd date to the half-open UTC interval
// [startOfDay, startOfDay+24h). An empty date defaults to the current day,
// so the listing endpoints read as "today" when no date is given.
func dayWindow(date string) (time.Time, time.Time, error) {
	var day time.Time
	if strings.TrimSpace(date) == "" {
		now := time.Now().UTC()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}, time.Time{}, store.ErrInvalidInput
		}
		day = parsed.UTC()
	}
	return day, day.Add(24 * time.Hour), nil
}

// outstandingBalanceCents is the portion of a sale's total not yet covered
// by direct payments or later settlements. Credit used at sale time counts
// as unpaid here: additional payments exist to settle it.
func outstandingBalanceCents(sale *domain.Sale) int64 {
	settled := sale.PaidCashCents + sale.PaidChequeCents + sale.PaidBankTransferCents
	for _, payment := range sale.AdditionalPayments {
		settled += payment.AmountCents
	}
	remaining := sale.TotalAmountCents - settled
	if remaining < 0 {
		return 0
	}
	return remaining
}

func toReturnView(ret domain.ReturnTransaction) domain.ReturnTransactionView {
	return domain.ReturnTransactionView{
		ID:             ret.ID,
		OriginalSaleID: ret.OriginalSaleID,
		ReturnDate:     ret.ReturnDate,
		StaffID:        ret.StaffID,
		CustomerID:     ret.CustomerID,
		CustomerName:   ret.CustomerName,
		ReturnedItems:  ret.ReturnedItems,
		ExchangedItems: ret.ExchangedItems,
		CashPaidOut:    money.UnitsFromCents(ret.CashPaidOutCents),
		RefundAmount:   money.UnitsFromCents(ret.RefundAmountCents),
	}
}

func isSupportedPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentMethodCash, domain.PaymentMethodCheque, domain.PaymentMethodBankTransfer:
		return true
	default:
		return false
	}
}
