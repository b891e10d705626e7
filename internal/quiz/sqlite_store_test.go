package quiz

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func seedTestQuiz(t *testing.T, store *SQLiteStore) Quiz {
	t.Helper()

	err := store.Seed(context.Background(), []SeedQuiz{
		{
			Title:       "Seeded",
			Description: "store test quiz",
			Questions: []SeedQuestion{
				{Text: "Q1", Options: []string{"right", "wrong"}, CorrectIndex: 0},
				{Text: "Q2", Options: []string{"wrong", "right"}, CorrectIndex: 1},
			},
		},
	})
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	quizzes, err := store.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("ListQuizzes failed: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected one seeded quiz, got %d", len(quizzes))
	}
	return quizzes[0]
}

func TestSQLiteStoreSeedIsIdempotent(t *testing.T) {
	store := newTestSQLiteStore(t)
	seeded := seedTestQuiz(t, store)

	err := store.Seed(context.Background(), DefaultSeedQuizzes())
	if err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	quizzes, err := store.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("ListQuizzes failed: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].QuizID != seeded.QuizID {
		t.Fatalf("seed reran on populated store: %+v", quizzes)
	}
}

func TestSQLiteStoreQuestionsKeepOrderAndCorrectness(t *testing.T) {
	store := newTestSQLiteStore(t)
	seeded := seedTestQuiz(t, store)
	ctx := context.Background()

	questions, err := store.GetQuizQuestions(ctx, seeded.QuizID)
	if err != nil {
		t.Fatalf("GetQuizQuestions failed: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Text != "Q1" || questions[1].Text != "Q2" {
		t.Fatalf("question order not preserved: %+v", questions)
	}
	if !questions[0].Options[0].IsCorrect || questions[0].Options[1].IsCorrect {
		t.Fatalf("correct flags wrong for Q1: %+v", questions[0].Options)
	}

	count, err := store.QuestionCount(ctx, seeded.QuizID)
	if err != nil {
		t.Fatalf("QuestionCount failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("question count = %d, want 2", count)
	}

	if _, err := store.GetQuizQuestions(ctx, 999); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func createTestAttempt(t *testing.T, store *SQLiteStore, attemptID string, userID, quizID int64) Attempt {
	t.Helper()

	attempt := Attempt{
		AttemptID: attemptID,
		UserID:    userID,
		QuizID:    quizID,
		Status:    StatusInProgress,
		StartedAt: time.Now().UTC(),
	}
	if err := store.CreateAttempt(context.Background(), attempt); err != nil {
		t.Fatalf("CreateAttempt failed: %v", err)
	}
	return attempt
}

func TestSQLiteStoreOneActiveAttemptPerUserQuiz(t *testing.T) {
	store := newTestSQLiteStore(t)
	seeded := seedTestQuiz(t, store)
	ctx := context.Background()

	createTestAttempt(t, store, "attempt-1", 1, seeded.QuizID)

	// The partial unique index rejects a second active attempt outright.
	err := store.CreateAttempt(ctx, Attempt{
		AttemptID: "attempt-2",
		UserID:    1,
		QuizID:    seeded.QuizID,
		Status:    StatusInProgress,
		StartedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Fatalf("expected unique constraint violation for second active attempt")
	}

	if err := store.DeleteUnsubmittedAttempts(ctx, 1, seeded.QuizID); err != nil {
		t.Fatalf("DeleteUnsubmittedAttempts failed: %v", err)
	}
	if _, err := store.GetAttempt(ctx, "attempt-1"); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("expected attempt deleted, got %v", err)
	}

	createTestAttempt(t, store, "attempt-3", 1, seeded.QuizID)
}

func TestSQLiteStoreDeleteUnsubmittedCascadesAnswers(t *testing.T) {
	store := newTestSQLiteStore(t)
	seeded := seedTestQuiz(t, store)
	ctx := context.Background()

	questions, err := store.GetQuizQuestions(ctx, seeded.QuizID)
	if err != nil {
		t.Fatalf("GetQuizQuestions failed: %v", err)
	}

	attempt := createTestAttempt(t, store, "attempt-1", 1, seeded.QuizID)
	err = store.UpsertAnswer(ctx, Answer{
		AttemptID:  attempt.AttemptID,
		QuestionID: questions[0].QuestionID,
		OptionID:   questions[0].Options[0].OptionID,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertAnswer failed: %v", err)
	}

	if err := store.DeleteUnsubmittedAttempts(ctx, 1, seeded.QuizID); err != nil {
		t.Fatalf("DeleteUnsubmittedAttempts failed: %v", err)
	}

	count, err := store.CountDistinctQuestions(ctx, attempt.AttemptID)
	if err != nil {
		t.Fatalf("CountDistinctQuestions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("answers survived attempt deletion: count=%d", count)
	}
}

func TestSQLiteStoreUpsertAnswerLastWriteWins(t *testing.T) {
	store := newTestSQLiteStore(t)
	seeded := seedTestQuiz(t, store)
	ctx := context.Background()

	questions, err := store.GetQuizQuestions(ctx, seeded.QuizID)
	if err != nil {
		t.Fatalf("GetQuizQuestions failed: %v", err)
	}
	question := questions[0]
	attempt := createTestAttempt(t, store, "attempt-1", 1, seeded.QuizID)

	for _, optionIdx := range []int{0, 1, 0, 1} {
		err := store.UpsertAnswer(ctx, Answer{
			AttemptID:  attempt.AttemptID,
			QuestionID: question.QuestionID,
			OptionID:   question.Options[optionIdx].OptionID,
			UpdatedAt:  time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("UpsertAnswer failed: %v", err)
		}
	}

	answers, err := store.ListAnswers(ctx, attempt.AttemptID)
	if err != nil {
		t.Fatalf("ListAnswers failed: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("expected one row after repeated upserts, got %d", len(answers))
	}
	if answers[0].OptionID != question.Options[1].OptionID {
		t.Fatalf("stored option = %d, want last committed %d", answers[0].OptionID, question.Options[1].OptionID)
	}

	count, err := store.CountDistinctQuestions(ctx, attempt.AttemptID)
	if err != nil {
		t.Fatalf("CountDistinctQuestions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("distinct question count = %d, want 1", count)
	}
}

func TestSQLiteStoreMarkSubmittedIsConditional(t *testing.T) {
	store := newTestSQLiteStore(t)
	seeded := seedTestQuiz(t, store)
	ctx := context.Background()

	attempt := createTestAttempt(t, store, "attempt-1", 1, seeded.QuizID)

	submittedAt := time.Now().UTC()
	finalized, err := store.MarkSubmitted(ctx, attempt.AttemptID, submittedAt)
	if err != nil {
		t.Fatalf("MarkSubmitted failed: %v", err)
	}
	if !finalized {
		t.Fatalf("first MarkSubmitted should finalize")
	}

	again, err := store.MarkSubmitted(ctx, attempt.AttemptID, submittedAt.Add(time.Second))
	if err != nil {
		t.Fatalf("second MarkSubmitted failed: %v", err)
	}
	if again {
		t.Fatalf("second MarkSubmitted must be a no-op")
	}

	got, err := store.GetAttempt(ctx, attempt.AttemptID)
	if err != nil {
		t.Fatalf("GetAttempt failed: %v", err)
	}
	if !got.IsSubmitted() || got.SubmittedAt == nil {
		t.Fatalf("attempt not finalized: %+v", got)
	}
	if !got.SubmittedAt.Equal(submittedAt) {
		t.Fatalf("submitted_at overwritten by losing caller: %v != %v", got.SubmittedAt, submittedAt)
	}
}

func TestSQLiteStoreFindLatestSubmitted(t *testing.T) {
	store := newTestSQLiteStore(t)
	seeded := seedTestQuiz(t, store)
	ctx := context.Background()

	if _, err := store.FindLatestSubmitted(ctx, 1, seeded.QuizID); !errors.Is(err, ErrNoCompletedAttempts) {
		t.Fatalf("expected ErrNoCompletedAttempts, got %v", err)
	}

	base := time.Now().UTC()
	for idx, id := range []string{"attempt-old", "attempt-new"} {
		createTestAttempt(t, store, id, 1, seeded.QuizID)
		finalized, err := store.MarkSubmitted(ctx, id, base.Add(time.Duration(idx)*time.Minute))
		if err != nil || !finalized {
			t.Fatalf("MarkSubmitted %s: finalized=%v err=%v", id, finalized, err)
		}
	}

	latest, err := store.FindLatestSubmitted(ctx, 1, seeded.QuizID)
	if err != nil {
		t.Fatalf("FindLatestSubmitted failed: %v", err)
	}
	if latest.AttemptID != "attempt-new" {
		t.Fatalf("latest = %s, want attempt-new", latest.AttemptID)
	}
}
