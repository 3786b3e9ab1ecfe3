package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"expensesheet/internal/core"
	"expensesheet/internal/forms"
	"expensesheet/internal/session"
	"expensesheet/internal/storage"
)

func transactionRoute(kind core.CategoryKind) string {
	if kind == core.KindIncome {
		return "/add-income"
	}
	return "/add-expense"
}

func (s *Server) transactionView(w http.ResponseWriter, r *http.Request, kind core.CategoryKind) view {
	v := s.newView(w, r, "Add "+kindLabel(kind))
	v.KindLabel = kindLabel(kind)
	v.Action = transactionRoute(kind)
	v.TypeAction = typeRoute(kind)
	types, err := s.categoryTypes(r.Context(), kind)
	if err != nil {
		slog.ErrorContext(r.Context(), "List category types failed", "error", err, "kind", kind)
	}
	v.Types = types
	return v
}

func (s *Server) handleTransactionForm(kind core.CategoryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, "transaction.html", s.transactionView(w, r, kind))
	}
}

// handleAddTransaction validates the form first and checks the session only
// afterwards: an anonymous but fully valid submission is discarded and the
// user is sent to /login with nothing persisted.
func (s *Server) handleAddTransaction(kind core.CategoryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseForm(w, r) {
			return
		}
		res := forms.Validate(r.PostForm, forms.TransactionSchema)

		categoryID, err := strconv.ParseInt(res.Values["category_id"], 10, 64)
		if res.ErrorFor("category_id") == "" && err != nil {
			res.Errors = append(res.Errors, forms.FieldError{Field: "category_id", Message: "Category is not valid"})
		}

		if !res.OK() {
			v := s.transactionView(w, r, kind)
			v.applyResult(res)
			s.render(w, r, "transaction.html", v)
			return
		}

		id, ok := session.FromContext(r.Context())
		if !ok {
			redirectWithFlash(w, r, "/login", "Please log in to record transactions.")
			return
		}

		category, err := s.store.CategoryTypeByID(r.Context(), categoryID)
		if errors.Is(err, storage.ErrNotFound) || (err == nil && category.Kind != kind) {
			v := s.transactionView(w, r, kind)
			v.applyResult(res)
			v.Errors["category_id"] = "Pick a " + kindLabel(kind) + " type from the list"
			s.render(w, r, "transaction.html", v)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Category lookup failed", "error", err, "category_id", categoryID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		date, _ := core.ParseDate(res.Values["date"])
		cents, _ := core.ParseDecimalToCents(res.Values["amount"])

		tx, err := s.store.CreateTransaction(r.Context(), core.Transaction{
			CategoryID:  category.ID,
			UserID:      id.UserID,
			Date:        date,
			Description: res.Values["description"],
			Amount:      core.Money{Cents: cents},
		})
		if err != nil {
			slog.ErrorContext(r.Context(), "Transaction create failed", "error", err, "user_id", id.UserID)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Fire-and-forget: a broker failure never fails the request, the
		// worker's startup sweep catches missed rows.
		if s.publisher != nil {
			if err := s.publisher.PublishTransactionExport(r.Context(), tx.ID); err != nil {
				slog.WarnContext(r.Context(), "Export publish failed", "error", err, "transaction_id", tx.ID)
			}
		}

		redirectWithFlash(w, r, transactionRoute(kind),
			titleKind(kind)+" recorded: "+tx.Description+" ("+tx.Amount.String()+")")
	}
}

func titleKind(kind core.CategoryKind) string {
	if kind == core.KindIncome {
		return "Income"
	}
	return "Expense"
}
