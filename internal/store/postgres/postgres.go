package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tillpoint/backend/internal/domain"
	"tillpoint/backend/internal/store"
	"tillpoint/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if customer.ID == "" {
		customer.ID = xid.New("cust")
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, created_at, updated_at)
		VALUES ($1,$2,$3,$4,now())
	`, customer.ID, customer.Name, nullIfEmpty(customer.Phone), customer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	created := customer
	return &created, nil
}

func (s *Store) GetCustomerByID(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(phone,''), created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Phone, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	customer.CreatedAt = customer.CreatedAt.UTC()
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context, limit int) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(phone,''), created_at
		FROM customers
		ORDER BY name ASC, id ASC
		LIMIT $1
	`, limitOrNull(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 32)
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Phone, &customer.CreatedAt); err != nil {
			return nil, err
		}
		customer.CreatedAt = customer.CreatedAt.UTC()
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.ID == "" || customer.Name == "" {
		return nil, store.ErrInvalidInput
	}

	var updated domain.Customer
	err := s.db.QueryRowContext(ctx, `
		UPDATE customers
		SET name = $2, phone = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, name, COALESCE(phone,''), created_at
	`, customer.ID, customer.Name, nullIfEmpty(customer.Phone)).Scan(
		&updated.ID,
		&updated.Name,
		&updated.Phone,
		&updated.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	updated.CreatedAt = updated.CreatedAt.UTC()
	return &updated, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	if id == "" {
		return store.ErrInvalidInput
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.StaffID == "" || sale.TotalAmountCents < 0 {
		return nil, store.ErrInvalidInput
	}
	if sale.PaidCashCents < 0 || sale.PaidChequeCents < 0 || sale.PaidBankTransferCents < 0 || sale.CreditUsedCents < 0 {
		return nil, store.ErrInvalidInput
	}
	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now().UTC()
	}
	if sale.Status == "" {
		sale.Status = domain.SaleStatusCompleted
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (
			id, customer_id, customer_name, staff_id, status, sale_date,
			total_amount_cents, paid_cash_cents, paid_cheque_cents,
			paid_bank_transfer_cents, credit_used_cents, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
	`, sale.ID, nullIfEmpty(sale.CustomerID), nullIfEmpty(sale.CustomerName), sale.StaffID, sale.Status,
		sale.SaleDate, sale.TotalAmountCents, sale.PaidCashCents, sale.PaidChequeCents,
		sale.PaidBankTransferCents, sale.CreditUsedCents)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	created := sale
	return &created, nil
}

func (s *Store) GetSaleByID(ctx context.Context, id string) (*domain.Sale, error) {
	var sale domain.Sale
	var customerID sql.NullString
	var customerName sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, customer_name, staff_id, status, sale_date,
			total_amount_cents, paid_cash_cents, paid_cheque_cents,
			paid_bank_transfer_cents, credit_used_cents
		FROM sales
		WHERE id = $1
	`, id).Scan(
		&sale.ID,
		&customerID,
		&customerName,
		&sale.StaffID,
		&sale.Status,
		&sale.SaleDate,
		&sale.TotalAmountCents,
		&sale.PaidCashCents,
		&sale.PaidChequeCents,
		&sale.PaidBankTransferCents,
		&sale.CreditUsedCents,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if customerID.Valid {
		sale.CustomerID = customerID.String
	}
	if customerName.Valid {
		sale.CustomerName = customerName.String
	}
	sale.SaleDate = sale.SaleDate.UTC()

	payments, err := s.listPaymentsBySale(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.AdditionalPayments = payments
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, staffID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, customer_name, staff_id, status, sale_date,
			total_amount_cents, paid_cash_cents, paid_cheque_cents,
			paid_bank_transfer_cents, credit_used_cents
		FROM sales
		WHERE ($1 = '' OR staff_id = $1)
			AND sale_date >= $2
			AND sale_date < $3
		ORDER BY sale_date DESC
		LIMIT $4
	`, staffID, from, to, limitOrNull(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanSalesWithPayments(ctx, rows)
}

func (s *Store) ListSalesByCustomer(ctx context.Context, customerID string) ([]domain.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, customer_name, staff_id, status, sale_date,
			total_amount_cents, paid_cash_cents, paid_cheque_cents,
			paid_bank_transfer_cents, credit_used_cents
		FROM sales
		WHERE customer_id = $1
		ORDER BY sale_date DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.scanSalesWithPayments(ctx, rows)
}

func (s *Store) scanSalesWithPayments(ctx context.Context, rows *sql.Rows) ([]domain.Sale, error) {
	sales := make([]domain.Sale, 0, 64)
	ids := make([]string, 0, 64)
	for rows.Next() {
		var sale domain.Sale
		var customerID sql.NullString
		var customerName sql.NullString
		if err := rows.Scan(
			&sale.ID,
			&customerID,
			&customerName,
			&sale.StaffID,
			&sale.Status,
			&sale.SaleDate,
			&sale.TotalAmountCents,
			&sale.PaidCashCents,
			&sale.PaidChequeCents,
			&sale.PaidBankTransferCents,
			&sale.CreditUsedCents,
		); err != nil {
			return nil, err
		}
		if customerID.Valid {
			sale.CustomerID = customerID.String
		}
		if customerName.Valid {
			sale.CustomerName = customerName.String
		}
		sale.SaleDate = sale.SaleDate.UTC()
		sales = append(sales, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return sales, nil
	}

	paymentRows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, amount_cents, method, staff_id, paid_at
		FROM sale_payments
		WHERE sale_id = ANY($1)
		ORDER BY paid_at ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	defer paymentRows.Close()

	paymentMap := make(map[string][]domain.AdditionalPayment, len(ids))
	for paymentRows.Next() {
		var payment domain.AdditionalPayment
		if err := paymentRows.Scan(&payment.ID, &payment.SaleID, &payment.AmountCents, &payment.Method, &payment.StaffID, &payment.PaidAt); err != nil {
			return nil, err
		}
		payment.PaidAt = payment.PaidAt.UTC()
		paymentMap[payment.SaleID] = append(paymentMap[payment.SaleID], payment)
	}
	if err := paymentRows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		sales[i].AdditionalPayments = paymentMap[sales[i].ID]
	}
	return sales, nil
}

func (s *Store) listPaymentsBySale(ctx context.Context, saleID string) ([]domain.AdditionalPayment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, amount_cents, method, staff_id, paid_at
		FROM sale_payments
		WHERE sale_id = $1
		ORDER BY paid_at ASC
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.AdditionalPayment, 0, 4)
	for rows.Next() {
		var payment domain.AdditionalPayment
		if err := rows.Scan(&payment.ID, &payment.SaleID, &payment.AmountCents, &payment.Method, &payment.StaffID, &payment.PaidAt); err != nil {
			return nil, err
		}
		payment.PaidAt = payment.PaidAt.UTC()
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Store) AppendSalePayment(ctx context.Context, payment domain.AdditionalPayment) (*domain.AdditionalPayment, error) {
	if payment.SaleID == "" || payment.StaffID == "" || payment.AmountCents < 1 {
		return nil, store.ErrInvalidInput
	}
	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sale_payments (id, sale_id, amount_cents, method, staff_id, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, payment.ID, payment.SaleID, payment.AmountCents, payment.Method, payment.StaffID, payment.PaidAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	created := payment
	return &created, nil
}

func (s *Store) ListPaymentsByStaffBetween(ctx context.Context, staffID string, from time.Time, to time.Time) ([]domain.AdditionalPayment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, amount_cents, method, staff_id, paid_at
		FROM sale_payments
		WHERE ($1 = '' OR staff_id = $1)
			AND paid_at >= $2
			AND paid_at < $3
		ORDER BY paid_at ASC
	`, staffID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.AdditionalPayment, 0, 16)
	for rows.Next() {
		var payment domain.AdditionalPayment
		if err := rows.Scan(&payment.ID, &payment.SaleID, &payment.AmountCents, &payment.Method, &payment.StaffID, &payment.PaidAt); err != nil {
			return nil, err
		}
		payment.PaidAt = payment.PaidAt.UTC()
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Store) CreateReturn(ctx context.Context, ret domain.ReturnTransaction) (*domain.ReturnTransaction, error) {
	if ret.CustomerID == "" || ret.StaffID == "" || ret.OriginalSaleID == "" {
		return nil, store.ErrInvalidInput
	}
	if ret.ID == "" {
		ret.ID = xid.New("ret")
	}
	if ret.ReturnDate.IsZero() {
		ret.ReturnDate = time.Now().UTC()
	}

	returnedJSON, err := json.Marshal(ret.ReturnedItems)
	if err != nil {
		return nil, err
	}
	exchangedJSON, err := json.Marshal(ret.ExchangedItems)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO return_transactions (
			id, original_sale_id, return_date, staff_id, customer_id, customer_name,
			returned_items, exchanged_items, cash_paid_out_cents, refund_amount_cents
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, ret.ID, ret.OriginalSaleID, ret.ReturnDate, ret.StaffID, ret.CustomerID, nullIfEmpty(ret.CustomerName),
		returnedJSON, exchangedJSON, ret.CashPaidOutCents, ret.RefundAmountCents)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}
	created := ret
	return &created, nil
}

func (s *Store) ListReturns(ctx context.Context, staffID string, from time.Time, to time.Time, limit int) ([]domain.ReturnTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, original_sale_id, return_date, staff_id, customer_id, customer_name,
			returned_items, exchanged_items, cash_paid_out_cents, refund_amount_cents
		FROM return_transactions
		WHERE ($1 = '' OR staff_id = $1)
			AND return_date >= $2
			AND return_date < $3
		ORDER BY return_date DESC
		LIMIT $4
	`, staffID, from, to, limitOrNull(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReturns(rows)
}

func (s *Store) ListReturnsByCustomer(ctx context.Context, customerID string) ([]domain.ReturnTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, original_sale_id, return_date, staff_id, customer_id, customer_name,
			returned_items, exchanged_items, cash_paid_out_cents, refund_amount_cents
		FROM return_transactions
		WHERE customer_id = $1
		ORDER BY return_date DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReturns(rows)
}

func scanReturns(rows *sql.Rows) ([]domain.ReturnTransaction, error) {
	returns := make([]domain.ReturnTransaction, 0, 32)
	for rows.Next() {
		var ret domain.ReturnTransaction
		var customerName sql.NullString
		var returnedRaw []byte
		var exchangedRaw []byte
		if err := rows.Scan(
			&ret.ID,
			&ret.OriginalSaleID,
			&ret.ReturnDate,
			&ret.StaffID,
			&ret.CustomerID,
			&customerName,
			&returnedRaw,
			&exchangedRaw,
			&ret.CashPaidOutCents,
			&ret.RefundAmountCents,
		); err != nil {
			return nil, err
		}
		ret.ReturnDate = ret.ReturnDate.UTC()
		if customerName.Valid {
			ret.CustomerName = customerName.String
		}
		if len(returnedRaw) > 0 {
			if err := json.Unmarshal(returnedRaw, &ret.ReturnedItems); err != nil {
				return nil, err
			}
		}
		if len(exchangedRaw) > 0 {
			if err := json.Unmarshal(exchangedRaw, &ret.ExchangedItems); err != nil {
				return nil, err
			}
		}
		returns = append(returns, ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return returns, nil
}

func (s *Store) CreateExpense(ctx context.Context, expense domain.Expense) (*domain.Expense, error) {
	if expense.StaffID == "" || expense.AmountCents < 1 || strings.TrimSpace(expense.Category) == "" {
		return nil, store.ErrInvalidInput
	}
	if expense.ID == "" {
		expense.ID = xid.New("exp")
	}
	if expense.Date.IsZero() {
		expense.Date = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, staff_id, amount_cents, category, description, date)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, expense.ID, expense.StaffID, expense.AmountCents, expense.Category, strings.TrimSpace(expense.Description), expense.Date)
	if err != nil {
		return nil, err
	}
	created := expense
	return &created, nil
}

func (s *Store) ListExpenses(ctx context.Context, staffID string, from time.Time, to time.Time, limit int) ([]domain.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, amount_cents, category, COALESCE(description,''), date
		FROM expenses
		WHERE ($1 = '' OR staff_id = $1)
			AND date >= $2
			AND date < $3
		ORDER BY date DESC
		LIMIT $4
	`, staffID, from, to, limitOrNull(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 32)
	for rows.Next() {
		var expense domain.Expense
		if err := rows.Scan(&expense.ID, &expense.StaffID, &expense.AmountCents, &expense.Category, &expense.Description, &expense.Date); err != nil {
			return nil, err
		}
		expense.Date = expense.Date.UTC()
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}

// IncrementDailyCounter relies on an atomic upsert so two concurrent callers
// can never observe the same sequence value.
func (s *Store) IncrementDailyCounter(ctx context.Context, day string) (int, error) {
	if strings.TrimSpace(day) == "" {
		return 0, store.ErrInvalidInput
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_counters (day, count, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (day)
		DO UPDATE SET count = daily_counters.count + 1, updated_at = now()
		RETURNING count
	`, day).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1
			AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, from, to, limitOrNull(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, 32)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if user.Role == "" {
		user.Role = "staff"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now())
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidInput
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

// limitOrNull maps a non-positive limit to SQL NULL, which Postgres treats
// as LIMIT ALL. Keeps the "limit < 1 means unbounded" contract in step with
// the memory store.
func limitOrNull(limit int) any {
	if limit < 1 {
		return nil
	}
	return limit
}
