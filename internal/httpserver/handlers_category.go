package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"expensesheet/internal/core"
	"expensesheet/internal/forms"
	"expensesheet/internal/storage"
)

func kindLabel(kind core.CategoryKind) string {
	if kind == core.KindIncome {
		return "income"
	}
	return "expense"
}

func typeRoute(kind core.CategoryKind) string {
	if kind == core.KindIncome {
		return "/add-income-type"
	}
	return "/add-expense-type"
}

func (s *Server) categoryTypeView(w http.ResponseWriter, r *http.Request, kind core.CategoryKind) view {
	v := s.newView(w, r, "Add "+kindLabel(kind)+" type")
	v.KindLabel = kindLabel(kind)
	v.Action = typeRoute(kind)
	types, err := s.categoryTypes(r.Context(), kind)
	if err != nil {
		slog.ErrorContext(r.Context(), "List category types failed", "error", err, "kind", kind)
	}
	v.Types = types
	return v
}

func (s *Server) handleCategoryTypeForm(kind core.CategoryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, "category_type.html", s.categoryTypeView(w, r, kind))
	}
}

// handleAddCategoryType normalizes the submitted name, rejects duplicates by
// exact match on the stored name, and re-renders the same form either way.
func (s *Server) handleAddCategoryType(kind core.CategoryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseForm(w, r) {
			return
		}
		res := forms.Validate(r.PostForm, forms.CategoryTypeSchema)
		if !res.OK() {
			v := s.categoryTypeView(w, r, kind)
			v.applyResult(res)
			s.render(w, r, "category_type.html", v)
			return
		}

		name := core.NormalizeTypeName(res.Values["name"])

		// Check-then-insert without a unique index: two concurrent identical
		// submissions can both pass this lookup and insert twice. Known
		// issue, accepted for this traffic profile.
		_, err := s.store.CategoryTypeByNameAndKind(r.Context(), name, kind)
		switch {
		case err == nil:
			redirectWithFlash(w, r, typeRoute(kind), "The type \""+name+"\" already exists.")
			return
		case !errors.Is(err, storage.ErrNotFound):
			slog.ErrorContext(r.Context(), "Category type lookup failed", "error", err, "category", name)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if _, err := s.store.CreateCategoryType(r.Context(), name, kind); err != nil {
			slog.ErrorContext(r.Context(), "Category type create failed", "error", err, "category", name, "kind", kind)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.invalidateCategoryTypes(kind)

		redirectWithFlash(w, r, typeRoute(kind), "New "+kindLabel(kind)+" type \""+name+"\" added.")
	}
}
