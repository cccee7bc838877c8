package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mncare/medicaid-assistant/internal/bootstrap"
	"github.com/mncare/medicaid-assistant/internal/config"
	"github.com/mncare/medicaid-assistant/internal/core/domain"
	"github.com/mncare/medicaid-assistant/internal/observability/logging"
)

var exitCommands = map[string]struct{}{
	"exit":    {},
	"quit":    {},
	"bye":     {},
	"goodbye": {},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.NewJSONLogger("chat", "error")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	fmt.Println("Minnesota Medicaid Assistant")
	fmt.Println("Ask a question about Minnesota Medicaid, or type 'exit' to leave.")
	fmt.Println()

	var history domain.History
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if _, ok := exitCommands[strings.ToLower(question)]; ok {
			fmt.Println("Assistant: Goodbye! Take care.")
			break
		}

		answer, err := app.Assistant.Answer(ctx, question, history)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Printf("Assistant: Something went wrong while generating an answer (%v). Please try again.\n\n", err)
			continue
		}

		fmt.Printf("Assistant: %s\n\n", answer.Text)
		history = append(history, "User: "+question, "Assistant: "+answer.Text)
	}
}
