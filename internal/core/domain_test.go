package core

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.ISO() != "2024-01-05" {
		t.Errorf("ISO() = %q, want 2024-01-05", d.ISO())
	}

	for _, bad := range []string{"", "05/01/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		CategoryID:  1,
		UserID:      1,
		Date:        NewDate(2024, 1, 5),
		Description: "Paycheck",
		Amount:      Money{Cents: 100000},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"no user", func(tr *Transaction) { tr.UserID = 0 }, ErrMissingUser},
		{"no category", func(tr *Transaction) { tr.CategoryID = 0 }, ErrMissingCategory},
		{"zero date", func(tr *Transaction) { tr.Date = Date{} }, ErrInvalidDate},
		{"empty description", func(tr *Transaction) { tr.Description = "  " }, ErrEmptyDescription},
		{"zero amount", func(tr *Transaction) { tr.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tr *Transaction) { tr.Amount = Money{Cents: -100} }, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid
			tt.mutate(&tr)
			if err := tr.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryTypeValidate(t *testing.T) {
	if err := (CategoryType{Name: "Salary", Kind: KindIncome}).Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	if err := (CategoryType{Name: "", Kind: KindExpense}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name: got %v, want ErrEmptyName", err)
	}
	if err := (CategoryType{Name: "Rent", Kind: "other"}).Validate(); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("bad kind: got %v, want ErrInvalidKind", err)
	}
}
