package httpapi

import (
	"errors"
	"net/http"

	"quiz-platform/internal/auth"
	"quiz-platform/internal/quiz"
)

func (a *API) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var request loginRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if !a.validateRequest(w, request) {
		return
	}

	userID, err := a.auth.Authenticate(request.Email, request.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid email or password"})
			return
		}
		writeServiceError(w, r, err)
		return
	}

	token, err := a.auth.IssueToken(userID, request.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, UserID: userID})
}

func (a *API) HandleListQuizzes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	quizzes, err := a.lifecycle.ListQuizzes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := quizListResponse{Quizzes: make([]quizResponse, 0, len(quizzes))}
	for _, item := range quizzes {
		count, err := a.lifecycle.QuestionCount(r.Context(), item.QuizID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		response.Quizzes = append(response.Quizzes, quizResponse{
			QuizID:         item.QuizID,
			Title:          item.Title,
			Description:    item.Description,
			TotalQuestions: count,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func (a *API) HandleGetQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	quizID, ok := pathID(r, "quiz_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quiz_id must be a positive integer"})
		return
	}

	item, err := a.lifecycle.GetQuiz(r.Context(), quizID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	count, err := a.lifecycle.QuestionCount(r.Context(), quizID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quizResponse{
		QuizID:         item.QuizID,
		Title:          item.Title,
		Description:    item.Description,
		TotalQuestions: count,
	})
}

// HandleQuizQuestions serves the pre-submission question list. Option
// correctness never appears here; PublicQuestion strips it in the domain
// layer.
func (a *API) HandleQuizQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	quizID, ok := pathID(r, "quiz_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quiz_id must be a positive integer"})
		return
	}

	questions, err := a.lifecycle.Questions(r.Context(), quizID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, questionsResponse{
		QuizID:    quizID,
		Questions: questions,
	})
}

func (a *API) HandleStartAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	var request startAttemptRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if !a.validateRequest(w, request) {
		return
	}

	attempt, err := a.lifecycle.Start(r.Context(), claims.UserID, request.QuizID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	saved, err := a.lifecycle.SavedAnswers(r.Context(), attempt.AttemptID, claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	answers := make([]savedAnswerItem, 0, len(saved))
	for _, answer := range saved {
		answers = append(answers, savedAnswerItem{
			QuestionID:       answer.QuestionID,
			SelectedOptionID: answer.OptionID,
		})
	}

	writeJSON(w, http.StatusCreated, startAttemptResponse{
		AttemptID:   attempt.AttemptID,
		Status:      "in-progress",
		UserAnswers: answers,
	})
}

func (a *API) HandleSaveAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	attemptID := r.PathValue("attempt_id")
	if attemptID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "attempt_id is required"})
		return
	}

	var request saveAnswerRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if !a.validateRequest(w, request) {
		return
	}

	err := a.lifecycle.SaveAnswer(r.Context(), attemptID, claims.UserID, request.QuestionID, request.SelectedOptionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ackResponse{Message: "Answer saved successfully."})
}

func (a *API) HandleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	attemptID := r.PathValue("attempt_id")
	if attemptID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "attempt_id is required"})
		return
	}

	report, err := a.lifecycle.Submit(r.Context(), attemptID, claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		AttemptID:      report.AttemptID,
		QuizID:         report.QuizID,
		UserID:         report.UserID,
		Status:         quiz.StatusSubmitted,
		TotalQuestions: report.TotalQuestions,
		CorrectAnswers: report.CorrectAnswers,
		Percentage:     report.Percentage,
		Answers:        report.Answers,
	})
}

func (a *API) HandleQuizResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	quizID, ok := pathID(r, "quiz_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "quiz_id must be a positive integer"})
		return
	}

	report, err := a.lifecycle.Results(r.Context(), claims.UserID, quizID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	options := make([]resultOptionItem, 0, len(report.Answers))
	for _, answer := range report.Answers {
		if answer.SelectedOptionID == nil {
			continue
		}
		options = append(options, resultOptionItem{
			QuestionID: answer.QuestionID,
			OptionID:   *answer.SelectedOptionID,
			IsCorrect:  answer.IsCorrect,
		})
	}

	writeJSON(w, http.StatusOK, resultsResponse{
		QuizID:         report.QuizID,
		UserID:         report.UserID,
		TotalQuestions: report.TotalQuestions,
		CorrectAnswers: report.CorrectAnswers,
		Options:        options,
	})
}
