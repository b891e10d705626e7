package quizclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	token string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

type QuizSummary struct {
	QuizID         int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	TotalQuestions int    `json:"total_questions"`
}

type quizListResponse struct {
	Quizzes []QuizSummary `json:"quizzes"`
}

type OptionItem struct {
	OptionID int64  `json:"id"`
	Text     string `json:"text"`
}

type QuestionItem struct {
	QuestionID int64        `json:"id"`
	QuizID     int64        `json:"quiz_id"`
	Text       string       `json:"text"`
	Options    []OptionItem `json:"options"`
}

type questionsResponse struct {
	QuizID    int64          `json:"quiz_id"`
	Questions []QuestionItem `json:"questions"`
}

type startAttemptRequest struct {
	QuizID int64 `json:"quiz_id"`
}

type SavedAnswer struct {
	QuestionID       int64 `json:"question_id"`
	SelectedOptionID int64 `json:"selected_option_id"`
}

type StartedAttempt struct {
	AttemptID   string        `json:"attempt_id"`
	Status      string        `json:"status"`
	UserAnswers []SavedAnswer `json:"user_answers"`
}

type saveAnswerRequest struct {
	QuestionID       int64 `json:"question_id"`
	SelectedOptionID int64 `json:"selected_option_id"`
}

type AnswerResult struct {
	QuestionID         int64   `json:"question_id"`
	QuestionText       string  `json:"question_text"`
	IsCorrect          bool    `json:"is_correct"`
	SelectedOptionID   *int64  `json:"selected_option_id"`
	SelectedOptionText *string `json:"selected_option_text"`
	CorrectOptionID    *int64  `json:"correct_option_id"`
	CorrectOptionText  *string `json:"correct_option_text"`
}

type ScoreSummary struct {
	AttemptID      string         `json:"attempt_id"`
	QuizID         int64          `json:"quiz_id"`
	Status         string         `json:"status"`
	TotalQuestions int            `json:"total_questions"`
	CorrectAnswers int            `json:"correct_answers"`
	Percentage     float64        `json:"percentage"`
	Answers        []AnswerResult `json:"answers"`
}

type ResultOption struct {
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
	IsCorrect  bool  `json:"is_correct"`
}

type QuizResults struct {
	QuizID         int64          `json:"quiz_id"`
	TotalQuestions int            `json:"total_questions"`
	CorrectAnswers int            `json:"correct_answers"`
	Options        []ResultOption `json:"options"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"error_code"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8080"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Login exchanges credentials for a bearer token that authorizes every
// subsequent call on this client.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (int64, error) {
	var payload loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		return 0, err
	}
	c.token = payload.Token
	return payload.UserID, nil
}

func (c *HTTPClient) ListQuizzes(ctx context.Context) ([]QuizSummary, error) {
	var payload quizListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/quizzes", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Quizzes, nil
}

func (c *HTTPClient) GetQuestions(ctx context.Context, quizID int64) ([]QuestionItem, error) {
	var payload questionsResponse
	path := "/quizzes/" + strconv.FormatInt(quizID, 10) + "/questions"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

func (c *HTTPClient) StartAttempt(ctx context.Context, quizID int64) (StartedAttempt, error) {
	var payload StartedAttempt
	err := c.doJSON(ctx, http.MethodPost, "/quiz/attempt", startAttemptRequest{QuizID: quizID}, &payload)
	if err != nil {
		return StartedAttempt{}, err
	}
	return payload, nil
}

func (c *HTTPClient) SaveAnswer(ctx context.Context, attemptID string, questionID, selectedOptionID int64) error {
	path := "/attempts/" + url.PathEscape(attemptID) + "/answer"
	request := saveAnswerRequest{QuestionID: questionID, SelectedOptionID: selectedOptionID}
	return c.doJSON(ctx, http.MethodPost, path, request, nil)
}

func (c *HTTPClient) SubmitAttempt(ctx context.Context, attemptID string) (ScoreSummary, error) {
	var payload ScoreSummary
	path := "/attempts/" + url.PathEscape(attemptID) + "/submit"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &payload); err != nil {
		return ScoreSummary{}, err
	}
	return payload, nil
}

func (c *HTTPClient) GetResults(ctx context.Context, quizID int64) (QuizResults, error) {
	var payload QuizResults
	path := "/quizzes/" + strconv.FormatInt(quizID, 10) + "/results"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return QuizResults{}, err
	}
	return payload, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Error)
			apiErr.Code = payload.Code
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
