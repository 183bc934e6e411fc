package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage chat sessions",
	Long: `Create, inspect, and destroy chat sessions.

Each session owns an isolated vector index: documents uploaded into one
session are never visible from another.`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new session",
	RunE:  runSessionCreate,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a session's index state",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionDestroyCmd = &cobra.Command{
	Use:   "destroy [session-id]",
	Short: "Destroy a session and everything in it",
	Long: `Destroy a session: its vectors, documents, and chat threads.

This is irreversible. Subsequent operations on the session fail.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionDestroy,
}

func init() {
	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionDestroyCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionCreate(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	session, err := sessionService.Create(context.Background())
	if err != nil {
		return err
	}

	cmd.Printf("Created session %s\n", session.ID)
	return nil
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessions, err := sessionService.List(context.Background())
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions. Create one with: docchat session create")
		return nil
	}

	for _, s := range sessions {
		cmd.Printf("%s  %-10s  created %s\n", s.ID, s.State, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	ctx := context.Background()
	session, err := sessionService.Get(ctx, args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Session:   %s\n", session.ID)
	cmd.Printf("State:     %s\n", session.State)
	if session.EmbeddingModel != "" {
		cmd.Printf("Embedding: %s\n", session.EmbeddingModel)
	}
	if session.Summary != "" {
		cmd.Printf("Summary:   %s\n", session.Summary)
	}

	index, err := sessionService.Index(ctx, session.ID)
	if err != nil {
		return err
	}
	cmd.Printf("Vectors:   %d\n", index.VectorCount)

	docs, err := sessionService.Documents(ctx, session.ID)
	if err != nil {
		return err
	}
	if len(docs) > 0 {
		cmd.Println("Documents:")
		for _, d := range docs {
			cmd.Printf("  %s  %-9s  %s\n", d.ID, d.Status, d.Filename)
		}
	}
	return nil
}

func runSessionDestroy(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.Destroy(context.Background(), args[0]); err != nil {
		return err
	}

	cmd.Printf("Destroyed session %s\n", args[0])
	return nil
}
