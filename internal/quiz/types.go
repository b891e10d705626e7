package quiz

import "time"

const (
	// AttemptStatus values persisted in the attempts table. "in-progress" is
	// the wire spelling used by the start-attempt response; the store keeps
	// the underscore form.
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

type Quiz struct {
	QuizID      int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Option struct {
	OptionID   int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	// IsCorrect is never serialized to clients before submission; handlers
	// expose questions through PublicQuestion instead.
	IsCorrect bool `json:"-"`
}

type Question struct {
	QuestionID int64    `json:"id"`
	QuizID     int64    `json:"quiz_id"`
	Text       string   `json:"text"`
	Position   int      `json:"position"`
	Options    []Option `json:"options"`
}

// PublicQuestion is the pre-submission view of a question: option
// correctness stays server-side.
type PublicQuestion struct {
	QuestionID int64          `json:"id"`
	QuizID     int64          `json:"quiz_id"`
	Text       string         `json:"text"`
	Options    []PublicOption `json:"options"`
}

type PublicOption struct {
	OptionID int64  `json:"id"`
	Text     string `json:"text"`
}

type Attempt struct {
	AttemptID   string     `json:"attempt_id"`
	UserID      int64      `json:"user_id"`
	QuizID      int64      `json:"quiz_id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

func (a Attempt) IsSubmitted() bool {
	return a.Status == StatusSubmitted
}

type Answer struct {
	AttemptID  string    `json:"attempt_id"`
	QuestionID int64     `json:"question_id"`
	OptionID   int64     `json:"option_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScoreReport is derived data: recomputable at any time from the attempt,
// its answers, and the quiz definition. It is never stored.
type ScoreReport struct {
	AttemptID      string           `json:"attempt_id"`
	QuizID         int64            `json:"quiz_id"`
	UserID         int64            `json:"user_id"`
	TotalQuestions int              `json:"total_questions"`
	CorrectAnswers int              `json:"correct_answers"`
	Percentage     float64          `json:"percentage"`
	Answers        []QuestionResult `json:"answers"`
}

// QuestionResult is one row of the per-question breakdown. Selected fields
// are nil for unanswered questions. Correct-option fields are safe to
// reveal because reports exist only post-submission.
type QuestionResult struct {
	QuestionID         int64   `json:"question_id"`
	QuestionText       string  `json:"question_text"`
	SelectedOptionID   *int64  `json:"selected_option_id"`
	SelectedOptionText *string `json:"selected_option_text"`
	IsCorrect          bool    `json:"is_correct"`
	CorrectOptionID    *int64  `json:"correct_option_id"`
	CorrectOptionText  *string `json:"correct_option_text"`
}

func ToPublicQuestions(questions []Question) []PublicQuestion {
	public := make([]PublicQuestion, 0, len(questions))
	for _, question := range questions {
		options := make([]PublicOption, 0, len(question.Options))
		for _, option := range question.Options {
			options = append(options, PublicOption{
				OptionID: option.OptionID,
				Text:     option.Text,
			})
		}
		public = append(public, PublicQuestion{
			QuestionID: question.QuestionID,
			QuizID:     question.QuizID,
			Text:       question.Text,
			Options:    options,
		})
	}
	return public
}
