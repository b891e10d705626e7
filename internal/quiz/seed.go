package quiz

import (
	"context"
	"fmt"
	"time"
)

// SeedQuiz is quiz content in authoring form, used to populate a fresh
// store. The correct option index is per question; exactly one per
// question, which is the content invariant CalculateScore relies on.
type SeedQuiz struct {
	Title       string
	Description string
	Questions   []SeedQuestion
}

type SeedQuestion struct {
	Text         string
	Options      []string
	CorrectIndex int
}

// Seed inserts the given quizzes if the store has none. Idempotent across
// restarts: an already-populated database is left untouched.
func (s *SQLiteStore) Seed(ctx context.Context, quizzes []SeedQuiz) error {
	existing, err := s.ListQuizzes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().UnixNano()
	for _, seed := range quizzes {
		result, err := tx.ExecContext(
			ctx,
			`INSERT INTO quizzes (title, description, created_at_unix) VALUES (?, ?, ?)`,
			seed.Title,
			seed.Description,
			now,
		)
		if err != nil {
			return err
		}
		quizID, err := result.LastInsertId()
		if err != nil {
			return err
		}

		for position, question := range seed.Questions {
			if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
				return fmt.Errorf("seed quiz %q question %d: correct index %d out of range", seed.Title, position, question.CorrectIndex)
			}

			questionResult, err := tx.ExecContext(
				ctx,
				`INSERT INTO questions (quiz_id, text, position) VALUES (?, ?, ?)`,
				quizID,
				question.Text,
				position,
			)
			if err != nil {
				return err
			}
			questionID, err := questionResult.LastInsertId()
			if err != nil {
				return err
			}

			for idx, optionText := range question.Options {
				isCorrect := 0
				if idx == question.CorrectIndex {
					isCorrect = 1
				}
				if _, err := tx.ExecContext(
					ctx,
					`INSERT INTO options (question_id, text, is_correct) VALUES (?, ?, ?)`,
					questionID,
					optionText,
					isCorrect,
				); err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit()
}

// DefaultSeedQuizzes is the starter content loaded by cmd/quiz-service on
// first run.
func DefaultSeedQuizzes() []SeedQuiz {
	return []SeedQuiz{
		{
			Title:       "General Knowledge",
			Description: "A warm-up round of general knowledge questions.",
			Questions: []SeedQuestion{
				{
					Text:         "What is the capital of France?",
					Options:      []string{"Berlin", "Paris", "Madrid", "Rome"},
					CorrectIndex: 1,
				},
				{
					Text:         "Which planet is known as the Red Planet?",
					Options:      []string{"Venus", "Jupiter", "Mars", "Saturn"},
					CorrectIndex: 2,
				},
				{
					Text:         "How many continents are there?",
					Options:      []string{"Five", "Six", "Seven", "Eight"},
					CorrectIndex: 2,
				},
			},
		},
		{
			Title:       "Computing Basics",
			Description: "Fundamentals of computers and programming.",
			Questions: []SeedQuestion{
				{
					Text:         "How many bits are in a byte?",
					Options:      []string{"4", "8", "16", "32"},
					CorrectIndex: 1,
				},
				{
					Text:         "Which of these is a compiled language?",
					Options:      []string{"Python", "JavaScript", "Go", "Ruby"},
					CorrectIndex: 2,
				},
				{
					Text:         "What does HTTP stand for?",
					Options:      []string{"HyperText Transfer Protocol", "High Throughput Transfer Process", "Hyperlink Text Transport Protocol", "Host Transfer Text Protocol"},
					CorrectIndex: 0,
				},
			},
		},
	}
}
