package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindExpense CategoryKind = "expense"
	KindIncome  CategoryKind = "income"
)

type (
	// CategoryKind distinguishes expense categories from income categories.
	CategoryKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// User is an account record. Users are append-only: the application
	// never updates or deletes them.
	User struct {
		ID           int64
		Username     string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// CategoryType is a global, user-visible label ("Salary", "Food")
	// under which transactions are grouped. Not scoped to a user.
	CategoryType struct {
		ID        int64
		Name      string
		Kind      CategoryKind
		CreatedAt time.Time
	}

	// Transaction is a single dated, user-owned, category-tagged
	// monetary record.
	Transaction struct {
		ID          int64
		CategoryID  int64
		UserID      int64
		Date        Date
		Description string
		Amount      Money
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid category kind")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrMissingCategory  = errors.New("missing category")
	ErrMissingUser      = errors.New("missing user")
)

func (k CategoryKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date formatted as YYYY-MM-DD, the storage format.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c CategoryType) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return ErrMissingUser
	}
	if t.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Amount.Validate()
}
