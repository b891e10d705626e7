package quiz

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements QuizRepository, AttemptRepository, and AnswerStore
// over one embedded database. Uniqueness invariants live in the schema so
// concurrent writers cannot violate them regardless of application order.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "quiz.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS quizzes (
			quiz_id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			question_id INTEGER PRIMARY KEY AUTOINCREMENT,
			quiz_id INTEGER NOT NULL REFERENCES quizzes(quiz_id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			position INTEGER NOT NULL,
			UNIQUE (quiz_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS options (
			option_id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL REFERENCES questions(question_id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			is_correct INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			attempt_id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			quiz_id INTEGER NOT NULL REFERENCES quizzes(quiz_id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'in_progress',
			started_at_unix INTEGER NOT NULL,
			submitted_at_unix INTEGER
		);`,
		// At most one active attempt per (user, quiz); submitted attempts
		// are exempt so history accumulates.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_attempts_one_active
			ON attempts(user_id, quiz_id) WHERE status = 'in_progress';`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_user_quiz_status
			ON attempts(user_id, quiz_id, status, started_at_unix DESC);`,
		`CREATE TABLE IF NOT EXISTS answers (
			attempt_id TEXT NOT NULL REFERENCES attempts(attempt_id) ON DELETE CASCADE,
			question_id INTEGER NOT NULL,
			option_id INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL,
			PRIMARY KEY (attempt_id, question_id)
		);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT quiz_id, title, description, created_at_unix
		 FROM quizzes
		 ORDER BY quiz_id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]Quiz, 0)
	for rows.Next() {
		var (
			item          Quiz
			createdAtUnix int64
		)
		if err := rows.Scan(&item.QuizID, &item.Title, &item.Description, &createdAtUnix); err != nil {
			return nil, err
		}
		item.CreatedAt = time.Unix(0, createdAtUnix).UTC()
		quizzes = append(quizzes, item)
	}

	return quizzes, rows.Err()
}

func (s *SQLiteStore) GetQuiz(ctx context.Context, quizID int64) (Quiz, error) {
	var (
		item          Quiz
		createdAtUnix int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT quiz_id, title, description, created_at_unix FROM quizzes WHERE quiz_id = ?`,
		quizID,
	).Scan(&item.QuizID, &item.Title, &item.Description, &createdAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}

	item.CreatedAt = time.Unix(0, createdAtUnix).UTC()
	return item, nil
}

func (s *SQLiteStore) GetQuizQuestions(ctx context.Context, quizID int64) ([]Question, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT q.question_id, q.quiz_id, q.text, q.position,
		        o.option_id, o.text, o.is_correct
		 FROM questions q
		 JOIN options o ON o.question_id = q.question_id
		 WHERE q.quiz_id = ?
		 ORDER BY q.position ASC, o.option_id ASC`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]Question, 0)
	var current *Question
	for rows.Next() {
		var (
			questionID int64
			qQuizID    int64
			text       string
			position   int
			option     Option
			isCorrect  int
		)
		if err := rows.Scan(&questionID, &qQuizID, &text, &position, &option.OptionID, &option.Text, &isCorrect); err != nil {
			return nil, err
		}
		option.QuestionID = questionID
		option.IsCorrect = isCorrect != 0

		if current == nil || current.QuestionID != questionID {
			questions = append(questions, Question{
				QuestionID: questionID,
				QuizID:     qQuizID,
				Text:       text,
				Position:   position,
			})
			current = &questions[len(questions)-1]
		}
		current.Options = append(current.Options, option)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		if _, err := s.GetQuiz(ctx, quizID); err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func (s *SQLiteStore) QuestionCount(ctx context.Context, quizID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM questions WHERE quiz_id = ?`,
		quizID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *SQLiteStore) CreateAttempt(ctx context.Context, attempt Attempt) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO attempts (attempt_id, user_id, quiz_id, status, started_at_unix)
		 VALUES (?, ?, ?, ?, ?)`,
		attempt.AttemptID,
		attempt.UserID,
		attempt.QuizID,
		attempt.Status,
		attempt.StartedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) GetAttempt(ctx context.Context, attemptID string) (Attempt, error) {
	var (
		attempt         Attempt
		startedAtUnix   int64
		submittedAtUnix sql.NullInt64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT attempt_id, user_id, quiz_id, status, started_at_unix, submitted_at_unix
		 FROM attempts WHERE attempt_id = ?`,
		attemptID,
	).Scan(&attempt.AttemptID, &attempt.UserID, &attempt.QuizID, &attempt.Status, &startedAtUnix, &submittedAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}

	attempt.StartedAt = time.Unix(0, startedAtUnix).UTC()
	if submittedAtUnix.Valid {
		submittedAt := time.Unix(0, submittedAtUnix.Int64).UTC()
		attempt.SubmittedAt = &submittedAt
	}
	return attempt, nil
}

// DeleteUnsubmittedAttempts removes any in-progress attempt for the pair;
// answers go with it via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteUnsubmittedAttempts(ctx context.Context, userID, quizID int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM attempts WHERE user_id = ? AND quiz_id = ? AND status = ?`,
		userID,
		quizID,
		StatusInProgress,
	)
	return err
}

// MarkSubmitted is the atomic finalize primitive: one conditional UPDATE,
// never read-then-write. RowsAffected tells the caller whether this call
// won the transition; a zero means the attempt was already submitted.
func (s *SQLiteStore) MarkSubmitted(ctx context.Context, attemptID string, submittedAt time.Time) (bool, error) {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE attempts SET status = ?, submitted_at_unix = ?
		 WHERE attempt_id = ? AND status = ?`,
		StatusSubmitted,
		submittedAt.UnixNano(),
		attemptID,
		StatusInProgress,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *SQLiteStore) FindLatestSubmitted(ctx context.Context, userID, quizID int64) (Attempt, error) {
	var (
		attempt         Attempt
		startedAtUnix   int64
		submittedAtUnix sql.NullInt64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT attempt_id, user_id, quiz_id, status, started_at_unix, submitted_at_unix
		 FROM attempts
		 WHERE user_id = ? AND quiz_id = ? AND status = ?
		 ORDER BY submitted_at_unix DESC
		 LIMIT 1`,
		userID,
		quizID,
		StatusSubmitted,
	).Scan(&attempt.AttemptID, &attempt.UserID, &attempt.QuizID, &attempt.Status, &startedAtUnix, &submittedAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNoCompletedAttempts
		}
		return Attempt{}, err
	}

	attempt.StartedAt = time.Unix(0, startedAtUnix).UTC()
	if submittedAtUnix.Valid {
		submittedAt := time.Unix(0, submittedAtUnix.Int64).UTC()
		attempt.SubmittedAt = &submittedAt
	}
	return attempt, nil
}

// UpsertAnswer writes the answer keyed by (attempt, question). ON CONFLICT
// keeps the write a single statement, so concurrent saves for one key never
// duplicate rows and the last commit determines final state.
func (s *SQLiteStore) UpsertAnswer(ctx context.Context, answer Answer) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO answers (attempt_id, question_id, option_id, updated_at_unix)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(attempt_id, question_id) DO UPDATE SET
			option_id = excluded.option_id,
			updated_at_unix = excluded.updated_at_unix`,
		answer.AttemptID,
		answer.QuestionID,
		answer.OptionID,
		answer.UpdatedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) CountDistinctQuestions(ctx context.Context, attemptID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(DISTINCT question_id) FROM answers WHERE attempt_id = ?`,
		attemptID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *SQLiteStore) ListAnswers(ctx context.Context, attemptID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT attempt_id, question_id, option_id, updated_at_unix
		 FROM answers
		 WHERE attempt_id = ?
		 ORDER BY question_id ASC`,
		attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make([]Answer, 0)
	for rows.Next() {
		var (
			answer        Answer
			updatedAtUnix int64
		)
		if err := rows.Scan(&answer.AttemptID, &answer.QuestionID, &answer.OptionID, &updatedAtUnix); err != nil {
			return nil, err
		}
		answer.UpdatedAt = time.Unix(0, updatedAtUnix).UTC()
		answers = append(answers, answer)
	}

	return answers, rows.Err()
}

func (s *SQLiteStore) DeleteAnswers(ctx context.Context, attemptID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM answers WHERE attempt_id = ?`, attemptID)
	return err
}
