// Package httpserver wires the router, middleware, and form handlers for the
// server-rendered UI.
package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"expensesheet/internal/cache"
	"expensesheet/internal/core"
	applog "expensesheet/internal/log"
	"expensesheet/internal/session"
	"expensesheet/internal/storage"
	appweb "expensesheet/web"
)

// Store is the slice of the repository the handlers need.
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (core.User, error)
	UserByEmail(ctx context.Context, email string) (core.User, error)

	CreateCategoryType(ctx context.Context, name string, kind core.CategoryKind) (core.CategoryType, error)
	CategoryTypeByNameAndKind(ctx context.Context, name string, kind core.CategoryKind) (core.CategoryType, error)
	CategoryTypeByID(ctx context.Context, id int64) (core.CategoryType, error)
	ListCategoryTypes(ctx context.Context, kind core.CategoryKind) ([]core.CategoryType, error)

	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	TransactionsInRange(ctx context.Context, userID int64, kind core.CategoryKind, from, to core.Date) ([]storage.ReportRow, error)
}

// Publisher queues a stored transaction for the spreadsheet export. A nil
// Publisher disables the pipeline.
type Publisher interface {
	PublishTransactionExport(ctx context.Context, id int64) error
}

type Server struct {
	http.Server
	templates *template.Template
	store     Store
	sessions  *session.Manager
	publisher Publisher

	rateLimiter *rateLimiter

	// Category lists for the transaction form selects, keyed by kind.
	typesCache *cache.LRUCache[[]core.CategoryType]

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, store Store, sessions *session.Manager, publisher Publisher) (*Server, error) {
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates:   t,
		store:       store,
		sessions:    sessions,
		publisher:   publisher,
		rateLimiter: newRateLimiter(),
		typesCache:  cache.NewLRUCache[[]core.CategoryType](4, 5*time.Minute),
	}

	r := chi.NewRouter()
	r.Use(s.withRequestLog)
	r.Use(s.withSecurityHeaders)
	r.Use(sessions.Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, req)
		})
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	r.Get("/", s.handleIndex)

	r.Get("/register", s.handleRegisterForm)
	r.Post("/register", s.handleRegister)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)

	r.Get("/add-expense-type", s.handleCategoryTypeForm(core.KindExpense))
	r.Post("/add-expense-type", s.handleAddCategoryType(core.KindExpense))
	r.Get("/add-income-type", s.handleCategoryTypeForm(core.KindIncome))
	r.Post("/add-income-type", s.handleAddCategoryType(core.KindIncome))

	r.Get("/add-expense", s.handleTransactionForm(core.KindExpense))
	r.Post("/add-expense", s.handleAddTransaction(core.KindExpense))
	r.Get("/add-income", s.handleTransactionForm(core.KindIncome))
	r.Post("/add-income", s.handleAddTransaction(core.KindIncome))

	r.Get("/view-report", s.handleViewReport)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.Server.Handler
}

// Shutdown drains in-flight requests and stops the rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestLog logs request start/end with a generated request id.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldComponent, applog.ComponentHTTP,
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	})
}

func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const requestIDKey contextKey = "request_id"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, "index.html", s.newView(w, r, "Home"))
}

// categoryTypes returns the cached list for a kind, loading on miss.
func (s *Server) categoryTypes(ctx context.Context, kind core.CategoryKind) ([]core.CategoryType, error) {
	key := string(kind)
	if types, ok := s.typesCache.Get(key); ok {
		return types, nil
	}
	types, err := s.store.ListCategoryTypes(ctx, kind)
	if err != nil {
		return nil, err
	}
	s.typesCache.Set(key, types)
	return types, nil
}

func (s *Server) invalidateCategoryTypes(kind core.CategoryKind) {
	s.typesCache.Delete(string(kind))
}
