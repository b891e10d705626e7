package quiz

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Lifecycle is the attempt state machine: it drives the three store
// contracts through start, answer saving, finalization, and scoring.
// Each attempt is its own unit of mutual exclusion; all contended writes
// funnel through AttemptRepository.MarkSubmitted, so no lock is held here.
type Lifecycle struct {
	quizzes  QuizRepository
	attempts AttemptRepository
	answers  AnswerStore
	now      func() time.Time
}

func NewLifecycle(quizzes QuizRepository, attempts AttemptRepository, answers AnswerStore) *Lifecycle {
	return &Lifecycle{
		quizzes:  quizzes,
		attempts: attempts,
		answers:  answers,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start creates a fresh in-progress attempt for (user, quiz), first
// discarding any prior unsubmitted attempt and its answers so at most one
// active attempt exists per user per quiz. Last writer wins: starting
// again invalidates the previous session.
func (l *Lifecycle) Start(ctx context.Context, userID, quizID int64) (Attempt, error) {
	if _, err := l.quizzes.GetQuiz(ctx, quizID); err != nil {
		return Attempt{}, err
	}

	if err := l.attempts.DeleteUnsubmittedAttempts(ctx, userID, quizID); err != nil {
		return Attempt{}, err
	}

	attempt := Attempt{
		AttemptID: uuid.NewString(),
		UserID:    userID,
		QuizID:    quizID,
		Status:    StatusInProgress,
		StartedAt: l.now(),
	}
	if err := l.attempts.CreateAttempt(ctx, attempt); err != nil {
		return Attempt{}, err
	}
	return attempt, nil
}

// SaveAnswer upserts one answer for an in-progress attempt, then
// re-evaluates completion from a live distinct-question count. Overwrite
// semantics let the user change answers freely before submission.
func (l *Lifecycle) SaveAnswer(ctx context.Context, attemptID string, userID, questionID, optionID int64) error {
	attempt, err := l.ownedAttempt(ctx, attemptID, userID)
	if err != nil {
		return err
	}
	if attempt.IsSubmitted() {
		return ErrAlreadySubmitted
	}

	questions, err := l.quizzes.GetQuizQuestions(ctx, attempt.QuizID)
	if err != nil {
		return err
	}
	if err := validateReference(questions, questionID, optionID); err != nil {
		return err
	}

	err = l.answers.UpsertAnswer(ctx, Answer{
		AttemptID:  attemptID,
		QuestionID: questionID,
		OptionID:   optionID,
		UpdatedAt:  l.now(),
	})
	if err != nil {
		return err
	}

	return l.autoSubmitIfComplete(ctx, attempt, len(questions))
}

// autoSubmitIfComplete finalizes the attempt once every question has a
// recorded answer. The count comes from the store, not a cached counter,
// so completion survives restarts and concurrent servers. Finalization
// shares MarkSubmitted with Submit; if an explicit submit won the race the
// conditional update is a no-op here.
func (l *Lifecycle) autoSubmitIfComplete(ctx context.Context, attempt Attempt, totalQuestions int) error {
	answered, err := l.answers.CountDistinctQuestions(ctx, attempt.AttemptID)
	if err != nil {
		return err
	}
	if answered < totalQuestions {
		return nil
	}

	_, err = l.attempts.MarkSubmitted(ctx, attempt.AttemptID, l.now())
	return err
}

// Submit finalizes the attempt and returns its score report. Submitting an
// already-submitted attempt is not an error: the report is recomputed and
// returned identically, which also absorbs the losing side of an
// auto-submit race.
func (l *Lifecycle) Submit(ctx context.Context, attemptID string, userID int64) (ScoreReport, error) {
	attempt, err := l.ownedAttempt(ctx, attemptID, userID)
	if err != nil {
		return ScoreReport{}, err
	}

	submittedAt := l.now()
	finalized, err := l.attempts.MarkSubmitted(ctx, attemptID, submittedAt)
	if err != nil {
		return ScoreReport{}, err
	}
	if finalized {
		attempt.Status = StatusSubmitted
		attempt.SubmittedAt = &submittedAt
	}

	return l.scoreAttempt(ctx, attempt)
}

// Results returns the score report for the user's most recent submitted
// attempt of the quiz. The report is recomputed live from current quiz
// content on every call, never read from a snapshot.
func (l *Lifecycle) Results(ctx context.Context, userID, quizID int64) (ScoreReport, error) {
	if _, err := l.quizzes.GetQuiz(ctx, quizID); err != nil {
		return ScoreReport{}, err
	}

	attempt, err := l.attempts.FindLatestSubmitted(ctx, userID, quizID)
	if err != nil {
		return ScoreReport{}, err
	}
	return l.scoreAttempt(ctx, attempt)
}

// SavedAnswers lists the recorded answers of an owned attempt, used to
// restore client UI state after a start.
func (l *Lifecycle) SavedAnswers(ctx context.Context, attemptID string, userID int64) ([]Answer, error) {
	if _, err := l.ownedAttempt(ctx, attemptID, userID); err != nil {
		return nil, err
	}
	return l.answers.ListAnswers(ctx, attemptID)
}

func (l *Lifecycle) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	return l.quizzes.ListQuizzes(ctx)
}

func (l *Lifecycle) GetQuiz(ctx context.Context, quizID int64) (Quiz, error) {
	return l.quizzes.GetQuiz(ctx, quizID)
}

func (l *Lifecycle) QuestionCount(ctx context.Context, quizID int64) (int, error) {
	return l.quizzes.QuestionCount(ctx, quizID)
}

// Questions returns the pre-submission view of a quiz: option correctness
// is stripped before anything leaves this package.
func (l *Lifecycle) Questions(ctx context.Context, quizID int64) ([]PublicQuestion, error) {
	questions, err := l.quizzes.GetQuizQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return ToPublicQuestions(questions), nil
}

func (l *Lifecycle) scoreAttempt(ctx context.Context, attempt Attempt) (ScoreReport, error) {
	questions, err := l.quizzes.GetQuizQuestions(ctx, attempt.QuizID)
	if err != nil {
		return ScoreReport{}, err
	}
	answers, err := l.answers.ListAnswers(ctx, attempt.AttemptID)
	if err != nil {
		return ScoreReport{}, err
	}

	report := CalculateScore(questions, answers)
	report.AttemptID = attempt.AttemptID
	report.QuizID = attempt.QuizID
	report.UserID = attempt.UserID
	return report, nil
}

func (l *Lifecycle) ownedAttempt(ctx context.Context, attemptID string, userID int64) (Attempt, error) {
	attempt, err := l.attempts.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if attempt.UserID != userID {
		return Attempt{}, ErrForbidden
	}
	return attempt, nil
}

// validateReference enforces the cross-reference invariant: the question
// must belong to the attempt's quiz and the option to that question.
func validateReference(questions []Question, questionID, optionID int64) error {
	for _, question := range questions {
		if question.QuestionID != questionID {
			continue
		}
		for _, option := range question.Options {
			if option.OptionID == optionID {
				return nil
			}
		}
		return ErrOptionNotInQuestion
	}
	return ErrQuestionNotInQuiz
}
