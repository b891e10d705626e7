package httpapi

import (
	"net/http"

	"quiz-platform/internal/auth"
	"quiz-platform/internal/quiz"
)

func NewRouter(lifecycle *quiz.Lifecycle, authService *auth.Service) http.Handler {
	api := NewAPI(lifecycle, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/login", api.HandleLogin)
	mux.HandleFunc("/quizzes", api.requireAuth(api.HandleListQuizzes))
	mux.HandleFunc("/quizzes/{quiz_id}", api.requireAuth(api.HandleGetQuiz))
	mux.HandleFunc("/quizzes/{quiz_id}/questions", api.requireAuth(api.HandleQuizQuestions))
	mux.HandleFunc("/quizzes/{quiz_id}/results", api.requireAuth(api.HandleQuizResults))
	mux.HandleFunc("/quiz/attempt", api.requireAuth(api.HandleStartAttempt))
	mux.HandleFunc("/attempts/{attempt_id}/answer", api.requireAuth(api.HandleSaveAnswer))
	mux.HandleFunc("/attempts/{attempt_id}/submit", api.requireAuth(api.HandleSubmitAttempt))

	return mux
}
