package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"quiz-platform/internal/auth"
	"quiz-platform/internal/quiz"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// requireAuth verifies the bearer token and stores the claims in the
// request context. 401 here is authentication; ownership 403s come from
// the domain layer.
func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authorization header is required"})
			return
		}

		claims, err := a.auth.VerifyToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}

func claimsFrom(r *http.Request) (auth.Claims, bool) {
	claims, ok := r.Context().Value(claimsContextKey).(auth.Claims)
	return claims, ok
}

// writeServiceError maps the domain taxonomy onto HTTP statuses. Typed
// domain errors propagate code and message verbatim; anything else is an
// infrastructure failure, logged with context and masked.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *quiz.Error
	if !errors.As(err, &domainErr) {
		log.Printf("internal error: %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound),
		errors.Is(err, quiz.ErrAttemptNotFound),
		errors.Is(err, quiz.ErrNoCompletedAttempts):
		status = http.StatusNotFound
	case errors.Is(err, quiz.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, quiz.ErrAlreadySubmitted):
		status = http.StatusConflict
	case errors.Is(err, quiz.ErrQuestionNotInQuiz),
		errors.Is(err, quiz.ErrOptionNotInQuestion):
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, errorResponse{Error: domainErr.Message, Code: domainErr.Code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", Code: "VALIDATION_FAILED"})
		return false
	}
	return true
}

func (a *API) validateRequest(w http.ResponseWriter, request any) bool {
	if err := a.validate.Struct(request); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "VALIDATION_FAILED"})
		return false
	}
	return true
}

func pathID(r *http.Request, key string) (int64, bool) {
	value, err := strconv.ParseInt(r.PathValue(key), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
