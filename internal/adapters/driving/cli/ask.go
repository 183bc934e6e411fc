package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askThreadID    string
	askDocumentIDs []string
)

var askCmd = &cobra.Command{
	Use:   "ask [session-id] [question]",
	Short: "Ask a one-shot question against a session",
	Long: `Answer a single question from a session's indexed documents.

A fresh thread is created unless --thread is given, so repeated one-shot
questions do not share history. --documents restricts retrieval to the
given document IDs.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askThreadID, "thread", "t", "", "continue an existing thread")
	askCmd.Flags().StringSliceVarP(&askDocumentIDs, "documents", "d", nil, "restrict retrieval to these document IDs")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	sessionID := args[0]
	question := strings.Join(args[1:], " ")
	ctx := context.Background()

	threadID := askThreadID
	if threadID == "" {
		thread, err := chatService.CreateThread(ctx, sessionID)
		if err != nil {
			return err
		}
		threadID = thread.ID
	}

	result, err := chatService.Answer(ctx, sessionID, threadID, question, askDocumentIDs...)
	if err != nil {
		return err
	}

	cmd.Println(result.Text)
	if len(result.CitedChunkIDs) > 0 {
		cmd.Println()
		cmd.Printf("cited chunks: %s\n", strings.Join(result.CitedChunkIDs, ", "))
	}
	return nil
}
