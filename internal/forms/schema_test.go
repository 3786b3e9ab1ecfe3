package forms

import (
	"net/url"
	"testing"
)

func TestValidateRegisterSchema(t *testing.T) {
	tests := []struct {
		name      string
		form      url.Values
		wantOK    bool
		wantField string
	}{
		{
			name:   "valid",
			form:   url.Values{"username": {"alice"}, "email": {"alice@example.com"}, "password": {"secret1"}},
			wantOK: true,
		},
		{
			name:      "missing username",
			form:      url.Values{"email": {"alice@example.com"}, "password": {"secret1"}},
			wantField: "username",
		},
		{
			name:      "bad email",
			form:      url.Values{"username": {"alice"}, "email": {"not-an-email"}, "password": {"secret1"}},
			wantField: "email",
		},
		{
			name:      "short password",
			form:      url.Values{"username": {"alice"}, "email": {"alice@example.com"}, "password": {"abc"}},
			wantField: "password",
		},
		{
			name:      "whitespace-only username",
			form:      url.Values{"username": {"   "}, "email": {"alice@example.com"}, "password": {"secret1"}},
			wantField: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.form, RegisterSchema)
			if res.OK() != tt.wantOK {
				t.Fatalf("OK() = %v, want %v (errors: %v)", res.OK(), tt.wantOK, res.Errors)
			}
			if tt.wantField != "" && res.ErrorFor(tt.wantField) == "" {
				t.Errorf("expected an error for field %q, got %v", tt.wantField, res.Errors)
			}
		})
	}
}

func TestValidateTransactionSchema(t *testing.T) {
	valid := url.Values{
		"category_id": {"1"},
		"date":        {"2024-01-05"},
		"description": {"Paycheck"},
		"amount":      {"1000.00"},
	}
	if res := Validate(valid, TransactionSchema); !res.OK() {
		t.Fatalf("valid transaction form rejected: %v", res.Errors)
	}

	bad := url.Values{
		"category_id": {"1"},
		"date":        {"05/01/2024"},
		"description": {"Paycheck"},
		"amount":      {"-3"},
	}
	res := Validate(bad, TransactionSchema)
	if res.OK() {
		t.Fatal("expected errors for bad date and amount")
	}
	if res.ErrorFor("date") == "" || res.ErrorFor("amount") == "" {
		t.Errorf("expected date and amount errors, got %v", res.Errors)
	}
}

func TestValidateSanitizesValues(t *testing.T) {
	form := url.Values{"name": {"  Groceries\x00\x01  "}}
	res := Validate(form, CategoryTypeSchema)
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if got := res.Values["name"]; got != "Groceries" {
		t.Errorf("sanitized value = %q, want %q", got, "Groceries")
	}
}

func TestReportSchemaOptionalDates(t *testing.T) {
	res := Validate(url.Values{"kind": {"Both"}}, ReportSchema)
	if !res.OK() {
		t.Fatalf("empty dates should validate: %v", res.Errors)
	}
	res = Validate(url.Values{"kind": {"Both"}, "from": {"nope"}}, ReportSchema)
	if res.OK() || res.ErrorFor("from") == "" {
		t.Errorf("expected from-date error, got %v", res.Errors)
	}
}
