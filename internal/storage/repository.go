// Package storage persists users, category types and transactions in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expensesheet/internal/core"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when registering an email that already
	// has an account.
	ErrDuplicateEmail = errors.New("email already registered")
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new account. The email must be unique; a duplicate
// returns ErrDuplicateEmail.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (core.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		username, email, passwordHash, now.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return core.User{}, ErrDuplicateEmail
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "email", email)

	return core.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// UserByEmail returns the account registered under email, or ErrNotFound.
func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var (
		u       core.User
		created int64
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return u, nil
}

// CreateCategoryType inserts a category type. Duplicate detection is the
// caller's job via CategoryTypeByNameAndKind; there is no unique index on name, so
// two concurrent identical submissions can both pass the check and insert.
// That window is accepted for now.
func (r *SQLiteRepository) CreateCategoryType(ctx context.Context, name string, kind core.CategoryKind) (core.CategoryType, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO category_types (name, kind, created_at) VALUES (?, ?, ?)`,
		name, string(kind), now.Unix())
	if err != nil {
		return core.CategoryType{}, fmt.Errorf("insert category type: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.CategoryType{}, fmt.Errorf("category type insert id: %w", err)
	}

	slog.InfoContext(ctx, "Category type created", "category_id", id, "category", name, "kind", kind)

	return core.CategoryType{ID: id, Name: name, Kind: kind, CreatedAt: now}, nil
}

// CategoryTypeByName looks up a category type by its exact stored name,
// regardless of kind. Returns ErrNotFound when absent.
func (r *SQLiteRepository) CategoryTypeByName(ctx context.Context, name string) (core.CategoryType, error) {
	return r.scanCategoryType(r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, created_at FROM category_types WHERE name = ?`, name))
}

// CategoryTypeByNameAndKind is the duplicate check used before insert:
// exact match on the normalized name within one kind.
func (r *SQLiteRepository) CategoryTypeByNameAndKind(ctx context.Context, name string, kind core.CategoryKind) (core.CategoryType, error) {
	return r.scanCategoryType(r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, created_at FROM category_types WHERE name = ? AND kind = ?`,
		name, string(kind)))
}

func (r *SQLiteRepository) CategoryTypeByID(ctx context.Context, id int64) (core.CategoryType, error) {
	return r.scanCategoryType(r.db.QueryRowContext(ctx,
		`SELECT id, name, kind, created_at FROM category_types WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanCategoryType(row *sql.Row) (core.CategoryType, error) {
	var (
		c       core.CategoryType
		kind    string
		created int64
	)
	err := row.Scan(&c.ID, &c.Name, &kind, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CategoryType{}, ErrNotFound
	}
	if err != nil {
		return core.CategoryType{}, fmt.Errorf("scan category type: %w", err)
	}
	c.Kind = core.CategoryKind(kind)
	c.CreatedAt = time.Unix(created, 0).UTC()
	return c, nil
}

// ListCategoryTypes returns every category type in insertion order. An empty
// kind returns both kinds.
func (r *SQLiteRepository) ListCategoryTypes(ctx context.Context, kind core.CategoryKind) ([]core.CategoryType, error) {
	query := `SELECT id, name, kind, created_at FROM category_types ORDER BY id`
	args := []any{}
	if kind != "" {
		query = `SELECT id, name, kind, created_at FROM category_types WHERE kind = ? ORDER BY id`
		args = append(args, string(kind))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list category types: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryType
	for rows.Next() {
		var (
			c       core.CategoryType
			k       string
			created int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &k, &created); err != nil {
			return nil, fmt.Errorf("scan category type: %w", err)
		}
		c.Kind = core.CategoryKind(k)
		c.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateTransaction inserts a transaction row and returns it with its ID.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (category_id, user_id, date, description, amount_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.CategoryID, t.UserID, t.Date.ISO(), t.Description, t.Amount.Cents, now.Unix())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}

	t.ID = id
	t.CreatedAt = now

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"category_id", t.CategoryID,
		"amount_cents", t.Amount.Cents,
		"date", t.Date.ISO())

	return t, nil
}

// ReportRow is a transaction joined with its category, as shown on the
// report page.
type ReportRow struct {
	Transaction  core.Transaction
	CategoryName string
	Kind         core.CategoryKind
}

// TransactionsInRange returns the user's transactions with date in the
// inclusive range [from, to], joined with category names. An empty kind
// includes both expense and income categories. Results are ordered by date,
// then insertion order.
func (r *SQLiteRepository) TransactionsInRange(ctx context.Context, userID int64, kind core.CategoryKind, from, to core.Date) ([]ReportRow, error) {
	query := `SELECT t.id, t.category_id, t.user_id, t.date, t.description, t.amount_cents, t.created_at, c.name, c.kind
		FROM transactions t
		JOIN category_types c ON c.id = t.category_id
		WHERE t.user_id = ? AND t.date >= ? AND t.date <= ?`
	args := []any{userID, from.ISO(), to.ISO()}
	if kind != "" {
		query += ` AND c.kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY t.date, t.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions in range: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		row, err := scanReportRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanReportRow(rows *sql.Rows) (ReportRow, error) {
	var (
		row     ReportRow
		date    string
		kind    string
		created int64
	)
	err := rows.Scan(
		&row.Transaction.ID,
		&row.Transaction.CategoryID,
		&row.Transaction.UserID,
		&date,
		&row.Transaction.Description,
		&row.Transaction.Amount.Cents,
		&created,
		&row.CategoryName,
		&kind)
	if err != nil {
		return ReportRow{}, fmt.Errorf("scan report row: %w", err)
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return ReportRow{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	row.Transaction.Date = d
	row.Transaction.CreatedAt = time.Unix(created, 0).UTC()
	row.Kind = core.CategoryKind(kind)
	return row, nil
}

// TransactionByID returns a single transaction joined with its category,
// or ErrNotFound.
func (r *SQLiteRepository) TransactionByID(ctx context.Context, id int64) (ReportRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.category_id, t.user_id, t.date, t.description, t.amount_cents, t.created_at, c.name, c.kind
		 FROM transactions t
		 JOIN category_types c ON c.id = t.category_id
		 WHERE t.id = ?`, id)
	if err != nil {
		return ReportRow{}, fmt.Errorf("query transaction by id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return ReportRow{}, err
		}
		return ReportRow{}, ErrNotFound
	}
	return scanReportRow(rows)
}

// PendingExport holds the minimal data queued for the sheet export worker.
type PendingExport struct {
	ID        int64
	CreatedAt time.Time
}

// PendingExportTransactions returns up to limit transactions that have not
// been exported yet, oldest first.
func (r *SQLiteRepository) PendingExportTransactions(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM transactions WHERE exported = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending export transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingExport
	for rows.Next() {
		var (
			p       PendingExport
			created int64
		)
		if err := rows.Scan(&p.ID, &created); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		p.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkExported flags a transaction as written to the sheet.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET exported = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction exported: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as exported", "transaction_id", id)
	return nil
}
