// Package httpapi serves the tracker over JSON. The caller names the acting
// user in the X-User-ID header, by ID or name.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tracker/internal/api"
	"tracker/internal/domain"
	"tracker/internal/errors"
	"tracker/internal/logging"
	"tracker/internal/validation"
)

// UserHeader carries the acting user's ID or name.
const UserHeader = "X-User-ID"

// Server routes HTTP requests to a BusinessAPI.
type Server struct {
	api   api.BusinessAPI
	log   *slog.Logger
	mux   *http.ServeMux
	newID func() string
}

// NewServer registers every route on a fresh mux.
func NewServer(businessAPI api.BusinessAPI, log *slog.Logger) *Server {
	s := &Server{
		api:   businessAPI,
		log:   logging.OrDiscard(log),
		mux:   http.NewServeMux(),
		newID: func() string { return uuid.New().String() },
	}

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.mux.Handle("GET /entries", s.withUser(s.listEntries))
	s.mux.Handle("POST /entries", s.withUser(s.createEntry))
	s.mux.Handle("GET /entries/{id}", s.withUser(s.getEntry))
	s.mux.Handle("PUT /entries/{id}", s.withUser(s.updateEntry))
	s.mux.Handle("DELETE /entries/{id}", s.withUser(s.deleteEntry))

	s.mux.Handle("GET /timer", s.withUser(s.activeTimer))
	s.mux.Handle("POST /timer/start", s.withUser(s.startTimer))
	s.mux.Handle("POST /timer/stop", s.withUser(s.stopTimer))

	s.mux.Handle("GET /report", s.withUser(s.report))

	s.mux.Handle("GET /clients", s.withUser(s.listClients))
	s.mux.Handle("POST /clients", s.withUser(s.createClient))
	s.mux.Handle("GET /projects", s.withUser(s.listProjects))
	s.mux.Handle("POST /projects", s.withUser(s.createProject))
	s.mux.Handle("PUT /projects/{id}/status", s.withUser(s.setProjectStatus))

	return s
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.loggingMiddleware(s.mux)
}

// HTTPServer returns a configured http.Server. Call ListenAndServe on it in
// a goroutine and Shutdown it on exit.
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	s.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware tags every request with an ID and logs its outcome.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := s.newID()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.log.InfoContext(r.Context(), "http request",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("dur", time.Since(start)),
		)
	})
}

// withUser resolves the acting user before calling next. Requests without
// a known user get 401.
func (s *Server) withUser(next func(http.ResponseWriter, *http.Request, *domain.User)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.api.ResolveUser(r.Context(), r.Header.Get(UserHeader))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next(w, r, user)
	})
}

// writeJSON encodes body with status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// errorBody is the JSON form of every failure. Validation failures carry
// their messages per field.
type errorBody struct {
	Error  string              `json:"error"`
	Code   string              `json:"code,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// statusFor maps an application error to its HTTP status.
func statusFor(err error) int {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		if validation.IsValidationError(err) {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case errors.ErrorTypeValidation, errors.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypePermission:
		return http.StatusUnauthorized
	case errors.ErrorTypeConflict:
		return http.StatusConflict
	case errors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{
		Error: errors.GetUserMessage(err),
		Code:  errors.GetErrorCode(err),
	}
	if ve, ok := validation.AsValidationError(err); ok {
		body.Errors = ve.Fields()
	}
	if errors.ShouldLogError(err) {
		s.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into dst. Malformed bodies are invalid input.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewInvalidInputError("body", nil, err.Error())
	}
	return nil
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError("id", raw, "expected a positive number")
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*domain.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, errors.NewInvalidInputError(name, raw, "expected YYYY-MM-DD")
	}
	return &d, nil
}

// queryID parses an optional numeric query parameter.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.NewInvalidInputError(name, raw, "expected a number")
	}
	return &id, nil
}
