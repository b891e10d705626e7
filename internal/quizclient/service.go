package quizclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultServer            = "http://127.0.0.1:8080"
	defaultHTTPTimeout       = 5 * time.Second
	defaultMaxInvalidAnswers = 3
)

type Config struct {
	Email             string
	Password          string
	ServerURL         string
	HTTPTimeout       time.Duration
	Debounce          time.Duration
	MaxInvalidAnswers int
}

// Run drives an interactive quiz session against the service: log in, list
// quizzes, take a quiz with debounced background answer persistence, and
// review past results.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	email := strings.TrimSpace(cfg.Email)
	if email == "" {
		return errors.New("email is required")
	}

	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	maxInvalidAnswers := cfg.MaxInvalidAnswers
	if maxInvalidAnswers <= 0 {
		maxInvalidAnswers = defaultMaxInvalidAnswers
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	if _, err := client.Login(ctx, email, cfg.Password); err != nil {
		return describeClientError(err, serverURL)
	}

	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "quiz-client\nuser=%s\nserver=%s\n\n", email, serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "exit":
			return nil
		case "quizzes":
			if err := runList(ctx, out, client, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "play":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: play <quiz_id>")
				continue
			}
			quizID, parseErr := parseQuizID(args[1])
			if parseErr != nil {
				fmt.Fprintf(out, "invalid quiz_id: %v\n", parseErr)
				continue
			}
			if err := runPlay(ctx, reader, out, client, quizID, cfg.Debounce, maxInvalidAnswers, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		case "results":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: results <quiz_id>")
				continue
			}
			quizID, parseErr := parseQuizID(args[1])
			if parseErr != nil {
				fmt.Fprintf(out, "invalid quiz_id: %v\n", parseErr)
				continue
			}
			if err := runResults(ctx, out, client, quizID, serverURL); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
	}
}

func runList(ctx context.Context, out io.Writer, client *HTTPClient, serverURL string) error {
	quizzes, err := client.ListQuizzes(ctx)
	if err != nil {
		return describeClientError(err, serverURL)
	}

	if len(quizzes) == 0 {
		fmt.Fprintln(out, "No quizzes available.")
		return nil
	}

	fmt.Fprintln(out, "Available quizzes:")
	for _, item := range quizzes {
		fmt.Fprintf(out, "%d. %s (%d questions)\n", item.QuizID, item.Title, item.TotalQuestions)
		if strings.TrimSpace(item.Description) != "" {
			fmt.Fprintf(out, "   %s\n", item.Description)
		}
	}
	return nil
}

func runPlay(ctx context.Context, reader *bufio.Reader, out io.Writer, client *HTTPClient, quizID int64, debounce time.Duration, maxInvalidAnswers int, serverURL string) error {
	questions, err := client.GetQuestions(ctx, quizID)
	if err != nil {
		return describeClientError(err, serverURL)
	}
	if len(questions) == 0 {
		fmt.Fprintf(out, "quiz %d has no questions.\n", quizID)
		return nil
	}

	attempt, err := client.StartAttempt(ctx, quizID)
	if err != nil {
		return describeClientError(err, serverURL)
	}
	fmt.Fprintf(out, "attempt %s started (%d questions)\n", attempt.AttemptID, len(questions))

	queue := NewSaveQueue(func(saveCtx context.Context, answer PendingAnswer) error {
		return client.SaveAnswer(saveCtx, attempt.AttemptID, answer.QuestionID, answer.SelectedOptionID)
	}, SaveQueueConfig{Debounce: debounce})

	for idx, question := range questions {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Question %d/%d: %s\n\n", idx+1, len(questions), question.Text)
		for optionIdx, option := range question.Options {
			fmt.Fprintf(out, "%c. %s\n", 'A'+optionIdx, option.Text)
		}
		fmt.Fprintln(out)

		invalidCount := 0
		for {
			answerIdx, ok := promptAnswer(reader, out, len(question.Options))
			if !ok {
				invalidCount++
				if invalidCount >= maxInvalidAnswers {
					fmt.Fprintln(out, "Skipping question after multiple invalid responses.")
					break
				}
				fmt.Fprintf(out, "Invalid input. Attempts remaining: %d\n", maxInvalidAnswers-invalidCount)
				continue
			}

			if err := queue.Enqueue(question.QuestionID, question.Options[answerIdx].OptionID); err != nil {
				// The attempt was finalized underneath us, most likely by the
				// auto-submit that fires when the last answer lands.
				fmt.Fprintf(out, "attempt closed: %v\n", err)
			}
			break
		}
	}

	if err := queue.Close(ctx); err != nil && !isTerminalSaveError(err) {
		return describeClientError(err, serverURL)
	}

	report, err := client.SubmitAttempt(ctx, attempt.AttemptID)
	if err != nil {
		return describeClientError(err, serverURL)
	}

	printReport(out, report)
	return nil
}

func runResults(ctx context.Context, out io.Writer, client *HTTPClient, quizID int64, serverURL string) error {
	results, err := client.GetResults(ctx, quizID)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound && apiErr.Code == "NO_COMPLETED_ATTEMPTS" {
			fmt.Fprintf(out, "No completed attempts for quiz %d yet.\n", quizID)
			return nil
		}
		return describeClientError(err, serverURL)
	}

	percentage := 0.0
	if results.TotalQuestions > 0 {
		percentage = float64(results.CorrectAnswers) / float64(results.TotalQuestions) * 100
	}
	fmt.Fprintf(out, "Latest result for quiz %d: %d/%d correct (%.2f%%)\n",
		quizID, results.CorrectAnswers, results.TotalQuestions, percentage)
	return nil
}

func printReport(out io.Writer, report ScoreSummary) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Submitted. Score: %d/%d (%.2f%%)\n",
		report.CorrectAnswers, report.TotalQuestions, report.Percentage)

	for _, answer := range report.Answers {
		marker := "✗"
		if answer.IsCorrect {
			marker = "✓"
		}
		selected := "unanswered"
		if answer.SelectedOptionText != nil {
			selected = *answer.SelectedOptionText
		}
		fmt.Fprintf(out, "%s %s\n    your answer: %s\n", marker, answer.QuestionText, selected)
		if !answer.IsCorrect && answer.CorrectOptionText != nil {
			fmt.Fprintf(out, "    correct answer: %s\n", *answer.CorrectOptionText)
		}
	}
}
