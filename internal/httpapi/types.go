package httpapi

import "quiz-platform/internal/quiz"

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

type quizResponse struct {
	QuizID         int64  `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	TotalQuestions int    `json:"total_questions"`
}

type quizListResponse struct {
	Quizzes []quizResponse `json:"quizzes"`
}

type questionsResponse struct {
	QuizID    int64                 `json:"quiz_id"`
	Questions []quiz.PublicQuestion `json:"questions"`
}

type startAttemptRequest struct {
	QuizID int64 `json:"quiz_id" validate:"required,gt=0"`
}

type savedAnswerItem struct {
	QuestionID       int64 `json:"question_id"`
	SelectedOptionID int64 `json:"selected_option_id"`
}

type startAttemptResponse struct {
	AttemptID   string            `json:"attempt_id"`
	Status      string            `json:"status"`
	UserAnswers []savedAnswerItem `json:"user_answers"`
}

type saveAnswerRequest struct {
	QuestionID       int64 `json:"question_id" validate:"required,gt=0"`
	SelectedOptionID int64 `json:"selected_option_id" validate:"required,gt=0"`
}

type ackResponse struct {
	Message string `json:"message"`
}

type submitResponse struct {
	AttemptID      string                `json:"attempt_id"`
	QuizID         int64                 `json:"quiz_id"`
	UserID         int64                 `json:"user_id"`
	Status         string                `json:"status"`
	TotalQuestions int                   `json:"total_questions"`
	CorrectAnswers int                   `json:"correct_answers"`
	Percentage     float64               `json:"percentage"`
	Answers        []quiz.QuestionResult `json:"answers"`
}

type resultOptionItem struct {
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
	IsCorrect  bool  `json:"is_correct"`
}

type resultsResponse struct {
	QuizID         int64              `json:"quiz_id"`
	UserID         int64              `json:"user_id"`
	TotalQuestions int                `json:"total_questions"`
	CorrectAnswers int                `json:"correct_answers"`
	Options        []resultOptionItem `json:"options"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"error_code,omitempty"`
}
