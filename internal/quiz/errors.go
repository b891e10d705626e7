package quiz

// Error is a domain failure with a machine-readable code. Codes propagate
// verbatim to API clients; anything that is not a *Error is treated as an
// infrastructure failure and masked at the boundary.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match sentinel instances by code, so wrapped domain
// errors still compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Code == e.Code
}

var (
	ErrQuizNotFound        = &Error{Code: "QUIZ_NOT_FOUND", Message: "quiz not found"}
	ErrAttemptNotFound     = &Error{Code: "ATTEMPT_NOT_FOUND", Message: "quiz attempt not found"}
	ErrForbidden           = &Error{Code: "UNAUTHORIZED_ACCESS", Message: "unauthorized access to quiz attempt"}
	ErrAlreadySubmitted    = &Error{Code: "ATTEMPT_ALREADY_SUBMITTED", Message: "cannot modify answers for a submitted quiz attempt"}
	ErrQuestionNotInQuiz   = &Error{Code: "QUESTION_NOT_IN_QUIZ", Message: "the question does not belong to this quiz"}
	ErrOptionNotInQuestion = &Error{Code: "OPTION_NOT_IN_QUESTION", Message: "the option does not belong to this question"}
	ErrNoCompletedAttempts = &Error{Code: "NO_COMPLETED_ATTEMPTS", Message: "no completed attempts found for this quiz"}
)
