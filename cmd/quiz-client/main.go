package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"quiz-platform/internal/quizclient"
)

func main() {
	email := flag.String("email", "", "account email (required)")
	password := flag.String("password", "", "account password")
	server := flag.String("server", "http://127.0.0.1:8080", "quiz service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout")
	debounce := flag.Duration("debounce", 500*time.Millisecond, "answer save debounce interval")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: --email is required")
		os.Exit(1)
	}

	err := quizclient.Run(context.Background(), os.Stdin, os.Stdout, quizclient.Config{
		Email:       *email,
		Password:    *password,
		ServerURL:   *server,
		HTTPTimeout: *timeout,
		Debounce:    *debounce,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
