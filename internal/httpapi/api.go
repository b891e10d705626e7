package httpapi

import (
	"github.com/go-playground/validator/v10"

	"quiz-platform/internal/auth"
	"quiz-platform/internal/quiz"
)

type API struct {
	lifecycle *quiz.Lifecycle
	auth      *auth.Service
	validate  *validator.Validate
}

func NewAPI(lifecycle *quiz.Lifecycle, authService *auth.Service) *API {
	return &API{
		lifecycle: lifecycle,
		auth:      authService,
		validate:  validator.New(),
	}
}
