package quiz

import (
	"context"
	"time"
)

// QuizRepository is the read side of quiz content.
type QuizRepository interface {
	ListQuizzes(ctx context.Context) ([]Quiz, error)
	GetQuiz(ctx context.Context, quizID int64) (Quiz, error)
	GetQuizQuestions(ctx context.Context, quizID int64) ([]Question, error)
	QuestionCount(ctx context.Context, quizID int64) (int, error)
}

// AttemptRepository is the durable record of attempts. MarkSubmitted is the
// single finalize primitive: a conditional update that reports whether this
// call performed the transition, so auto-submit and explicit submit racing
// on one attempt converge to exactly one finalizer.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt Attempt) error
	GetAttempt(ctx context.Context, attemptID string) (Attempt, error)
	DeleteUnsubmittedAttempts(ctx context.Context, userID, quizID int64) error
	MarkSubmitted(ctx context.Context, attemptID string, submittedAt time.Time) (finalized bool, err error)
	FindLatestSubmitted(ctx context.Context, userID, quizID int64) (Attempt, error)
}

// AnswerStore is the durable (attempt, question) -> option mapping.
// UpsertAnswer is atomic with last-committer-wins semantics;
// CountDistinctQuestions must observe all commits visible at call time.
type AnswerStore interface {
	UpsertAnswer(ctx context.Context, answer Answer) error
	CountDistinctQuestions(ctx context.Context, attemptID string) (int, error)
	ListAnswers(ctx context.Context, attemptID string) ([]Answer, error)
	DeleteAnswers(ctx context.Context, attemptID string) error
}
