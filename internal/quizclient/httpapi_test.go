package quizclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestDoJSONReturnsServiceUnavailable(t *testing.T) {
	client := NewHTTPClient("http://example.test", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	})

	err := client.doJSON(context.Background(), http.MethodGet, "/quizzes", nil, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable wrapper, got %v", err)
	}
}

func TestDoJSONParsesErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error: "attempt already submitted",
			Code:  "ATTEMPT_ALREADY_SUBMITTED",
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	err := client.SaveAnswer(context.Background(), "attempt-1", 1, 2)
	if err == nil {
		t.Fatalf("expected API error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Fatalf("status code = %d, want %d", apiErr.StatusCode, http.StatusConflict)
	}
	if apiErr.Code != "ATTEMPT_ALREADY_SUBMITTED" {
		t.Fatalf("error code = %q", apiErr.Code)
	}
	if apiErr.Message != "attempt already submitted" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestLoginStoresBearerTokenForLaterCalls(t *testing.T) {
	const token = "issued-token"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			var payload loginRequest
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("decode login failed: %v", err)
			}
			if payload.Email != "alice@example.com" {
				t.Fatalf("login email = %q", payload.Email)
			}
			_ = json.NewEncoder(w).Encode(loginResponse{Token: token, UserID: 7})
		case "/quizzes":
			if got := r.Header.Get("Authorization"); got != "Bearer "+token {
				t.Fatalf("Authorization = %q", got)
			}
			_ = json.NewEncoder(w).Encode(quizListResponse{
				Quizzes: []QuizSummary{{QuizID: 1, Title: "General", TotalQuestions: 3}},
			})
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())

	userID, err := client.Login(context.Background(), "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if userID != 7 {
		t.Fatalf("user id = %d, want 7", userID)
	}

	quizzes, err := client.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list quizzes failed: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].Title != "General" {
		t.Fatalf("quizzes = %+v", quizzes)
	}
}

func TestStartAttemptParsesResumedAnswers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quiz/attempt" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload startAttemptRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if payload.QuizID != 3 {
			t.Fatalf("quiz_id = %d", payload.QuizID)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(StartedAttempt{
			AttemptID: "attempt-9",
			Status:    "in-progress",
			UserAnswers: []SavedAnswer{
				{QuestionID: 1, SelectedOptionID: 11},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	attempt, err := client.StartAttempt(context.Background(), 3)
	if err != nil {
		t.Fatalf("start attempt failed: %v", err)
	}
	if attempt.AttemptID != "attempt-9" || len(attempt.UserAnswers) != 1 {
		t.Fatalf("attempt = %+v", attempt)
	}
}

func TestSubmitAttemptParsesReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/attempts/attempt-9/submit" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(ScoreSummary{
			AttemptID:      "attempt-9",
			QuizID:         3,
			Status:         "submitted",
			TotalQuestions: 3,
			CorrectAnswers: 2,
			Percentage:     66.67,
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, server.Client())
	report, err := client.SubmitAttempt(context.Background(), "attempt-9")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if report.Percentage != 66.67 || report.CorrectAnswers != 2 {
		t.Fatalf("report = %+v", report)
	}
}
