package quiz

import "math"

// CalculateScore builds a score report from a quiz definition and the
// recorded answers of one attempt. It is pure: no clock, no store access,
// identical inputs always produce an identical report, so results can be
// recomputed and replayed at any time.
//
// Each question is assumed to carry exactly one option flagged correct;
// that is a content invariant enforced at seed time, not validated here.
// Unanswered questions count as incorrect, never as errors.
func CalculateScore(questions []Question, answers []Answer) ScoreReport {
	selectedByQuestion := make(map[int64]int64, len(answers))
	for _, answer := range answers {
		selectedByQuestion[answer.QuestionID] = answer.OptionID
	}

	correctCount := 0
	summary := make([]QuestionResult, 0, len(questions))

	for _, question := range questions {
		var correctOption *Option
		for idx := range question.Options {
			if question.Options[idx].IsCorrect {
				correctOption = &question.Options[idx]
				break
			}
		}

		result := QuestionResult{
			QuestionID:   question.QuestionID,
			QuestionText: question.Text,
		}
		if correctOption != nil {
			result.CorrectOptionID = int64Ptr(correctOption.OptionID)
			result.CorrectOptionText = stringPtr(correctOption.Text)
		}

		if selectedID, answered := selectedByQuestion[question.QuestionID]; answered {
			result.SelectedOptionID = int64Ptr(selectedID)
			for _, option := range question.Options {
				if option.OptionID == selectedID {
					result.SelectedOptionText = stringPtr(option.Text)
					break
				}
			}
			if correctOption != nil && selectedID == correctOption.OptionID {
				result.IsCorrect = true
				correctCount++
			}
		}

		summary = append(summary, result)
	}

	return ScoreReport{
		TotalQuestions: len(questions),
		CorrectAnswers: correctCount,
		Percentage:     percentage(correctCount, len(questions)),
		Answers:        summary,
	}
}

// percentage rounds to two decimals; an empty quiz scores 0, not NaN.
func percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}

func int64Ptr(v int64) *int64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
