package httpserver

import (
	"log/slog"
	"net/http"

	"expensesheet/internal/core"
	"expensesheet/internal/forms"
	"expensesheet/internal/session"
)

// Open bounds substituted when the user leaves a date empty. Dates are
// stored as YYYY-MM-DD text, so string comparison orders them correctly.
const (
	minReportDate = "0001-01-01"
	maxReportDate = "9999-12-31"
)

// handleViewReport renders the query form to anyone; running a query
// requires a session. Bounds are inclusive on both ends and "Both" is the
// union of expense and income.
func (s *Server) handleViewReport(w http.ResponseWriter, r *http.Request) {
	v := s.newView(w, r, "Report")
	v.Values["kind"] = "Expense"

	// A bare GET without a kind parameter is the unqueried form.
	if r.URL.Query().Get("kind") == "" {
		s.render(w, r, "report.html", v)
		return
	}

	res := forms.Validate(r.URL.Query(), forms.ReportSchema)

	var kind core.CategoryKind
	switch res.Values["kind"] {
	case "Expense":
		kind = core.KindExpense
	case "Income":
		kind = core.KindIncome
	case "Both":
		kind = "" // union of both kinds
	default:
		res.Errors = append(res.Errors, forms.FieldError{Field: "kind", Message: "Category must be Expense, Income, or Both"})
	}

	if !res.OK() {
		v.applyResult(res)
		s.render(w, r, "report.html", v)
		return
	}

	id, ok := session.FromContext(r.Context())
	if !ok {
		redirectWithFlash(w, r, "/login", "Please log in to view reports.")
		return
	}

	fromStr := res.Values["from"]
	if fromStr == "" {
		fromStr = minReportDate
	}
	toStr := res.Values["to"]
	if toStr == "" {
		toStr = maxReportDate
	}
	from, _ := core.ParseDate(fromStr)
	to, _ := core.ParseDate(toStr)

	rows, err := s.store.TransactionsInRange(r.Context(), id.UserID, kind, from, to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Report query failed", "error", err, "user_id", id.UserID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	v.applyResult(res)
	v.Queried = true
	for _, row := range rows {
		v.Rows = append(v.Rows, reportRow{
			Date:        row.Transaction.Date.ISO(),
			Category:    row.CategoryName,
			Kind:        titleKind(row.Kind),
			Description: row.Transaction.Description,
			Amount:      row.Transaction.Amount.String(),
		})
	}
	s.render(w, r, "report.html", v)
}
