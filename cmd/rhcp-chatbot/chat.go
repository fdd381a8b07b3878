package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "chat",
		Short:   "Interactive local conversation without the HTTP server",
		Example: "  rhcp-chatbot chat",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat()
		},
	}
}

const chatHelp = `Commands:
  /help     show this help
  /history  show the conversation history
  /clear    start a fresh session
  /session  show the current session id
  /quit     exit`

func runChat() error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	rl, err := readline.New("you> ")
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	sessionID := app.sessions.CreateSession()
	fmt.Println("Ask me anything about the Red Hot Chili Peppers. Type /help for commands.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			fmt.Println("Bye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runChatCommand(app, line, &sessionID); quit {
				return nil
			}
			continue
		}

		res, err := app.pipeline.RunInference(context.Background(), line, sessionID)
		if err != nil {
			fmt.Println("Something went wrong:", err)
			continue
		}
		fmt.Println("bot>", res.FinalMessage)
	}
}

// runChatCommand handles slash commands locally, outside the
// pipeline. Returns true when the REPL should exit.
func runChatCommand(app *app, line string, sessionID *string) bool {
	switch line {
	case "/help":
		fmt.Println(chatHelp)
	case "/history":
		history := app.sessions.GetConversationHistory(*sessionID, 10)
		if len(history) == 0 {
			fmt.Println("No conversation yet.")
			return false
		}
		fmt.Println("Conversation History:")
		for i, msg := range history {
			fmt.Printf("Turn %d:\n  you> %s\n  bot> %s\n", i+1, msg.UserMessage, msg.BotMessage)
		}
	case "/clear":
		app.sessions.DeleteSession(*sessionID)
		*sessionID = app.sessions.CreateSession()
		fmt.Println("Started a fresh session.")
	case "/session":
		fmt.Println("Session:", *sessionID)
	case "/quit", "/exit":
		fmt.Println("Bye!")
		return true
	default:
		fmt.Println("Unknown command. Type /help for commands.")
	}
	return false
}
