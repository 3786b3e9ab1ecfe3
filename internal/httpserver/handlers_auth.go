package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"expensesheet/internal/forms"
	"expensesheet/internal/session"
	"expensesheet/internal/storage"
)

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", s.newView(w, r, "Register"))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	res := forms.Validate(r.PostForm, forms.RegisterSchema)
	if !res.OK() {
		v := s.newView(w, r, "Register")
		v.applyResult(res)
		s.render(w, r, "register.html", v)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(res.Values["password"]), bcrypt.DefaultCost)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hash failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	user, err := s.store.CreateUser(r.Context(), res.Values["username"], res.Values["email"], string(hash))
	if errors.Is(err, storage.ErrDuplicateEmail) {
		redirectWithFlash(w, r, "/login", "You've already signed up with that email, log in instead.")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "User create failed", "error", err, "email", res.Values["email"])
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.Issue(w, session.Identity{UserID: user.ID, Username: user.Username}); err != nil {
		slog.ErrorContext(r.Context(), "Session issue failed", "error", err, "user_id", user.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", s.newView(w, r, "Log in"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	res := forms.Validate(r.PostForm, forms.LoginSchema)
	if !res.OK() {
		v := s.newView(w, r, "Log in")
		v.applyResult(res)
		s.render(w, r, "login.html", v)
		return
	}

	user, err := s.store.UserByEmail(r.Context(), res.Values["email"])
	if errors.Is(err, storage.ErrNotFound) {
		// Distinct message from the wrong-password case. This leaks which
		// emails have accounts; kept intentionally to match the existing
		// user-facing behavior.
		redirectWithFlash(w, r, "/login", "That email does not exist, please try again.")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "User lookup failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(res.Values["password"])) != nil {
		redirectWithFlash(w, r, "/login", "Password incorrect, please try again.")
		return
	}

	if err := s.sessions.Issue(w, session.Identity{UserID: user.ID, Username: user.Username}); err != nil {
		slog.ErrorContext(r.Context(), "Session issue failed", "error", err, "user_id", user.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Safe when anonymous: clearing an absent cookie is a no-op.
	s.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
