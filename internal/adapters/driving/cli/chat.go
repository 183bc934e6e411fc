package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

var chatThreadID string

var chatCmd = &cobra.Command{
	Use:   "chat [session-id]",
	Short: "Open an interactive chat on a session",
	Long: `Launch the interactive terminal chat for a session.

A new thread is created unless --thread is given, in which case its
history is loaded into the transcript.

Controls:
  Enter      - Send question
  Esc/Ctrl+C - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatThreadID, "thread", "t", "", "continue an existing thread")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessionID := args[0]
	ctx := context.Background()

	// Fail fast on unknown or destroyed sessions before taking the terminal.
	if _, err := sessionService.Get(ctx, sessionID); err != nil {
		return err
	}

	threadID := chatThreadID
	var history []domain.Message
	if threadID == "" {
		thread, err := chatService.CreateThread(ctx, sessionID)
		if err != nil {
			return err
		}
		threadID = thread.ID
	} else {
		msgs, err := chatService.History(ctx, threadID)
		if err != nil {
			return err
		}
		history = msgs
	}

	model := tui.New(chatService, sessionID, threadID, history)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat UI: %w", err)
	}
	return nil
}
