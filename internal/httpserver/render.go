package httpserver

import (
	"log/slog"
	"net/http"

	"expensesheet/internal/core"
	"expensesheet/internal/forms"
	"expensesheet/internal/session"
)

// reportRow is one rendered line of the report table.
type reportRow struct {
	Date        string
	Category    string
	Kind        string
	Description string
	Amount      string
}

// view is the data passed to every template. Page-specific fields stay zero
// on pages that don't use them.
type view struct {
	Title    string
	LoggedIn bool
	Username string
	Flash    string

	Values map[string]string
	Errors map[string]string

	// Category pages
	KindLabel  string
	Action     string
	TypeAction string
	Types      []core.CategoryType

	// Report page
	Queried bool
	Rows    []reportRow
}

// newView builds the common fields: login state from the request context and
// the pending flash message. Reading the flash clears it.
func (s *Server) newView(w http.ResponseWriter, r *http.Request, title string) view {
	v := view{
		Title:  title,
		Values: map[string]string{},
		Errors: map[string]string{},
	}
	if id, ok := session.FromContext(r.Context()); ok {
		v.LoggedIn = true
		v.Username = id.Username
	}
	if msg, ok := session.TakeFlash(w, r); ok {
		v.Flash = msg
	}
	return v
}

func (v *view) applyResult(res forms.Result) {
	v.Values = res.Values
	for _, e := range res.Errors {
		if _, dup := v.Errors[e.Field]; !dup {
			v.Errors[e.Field] = e.Message
		}
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, v view) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, v); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// redirectWithFlash sets a flash message and redirects with 303 so the POST
// is not replayed on refresh.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, msg string) {
	session.SetFlash(w, msg)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "path", r.URL.Path)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}
