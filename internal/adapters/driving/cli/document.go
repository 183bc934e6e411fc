package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents within a session",
}

var documentListCmd = &cobra.Command{
	Use:   "list [session-id]",
	Short: "List a session's documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentList,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [session-id] [document-id]",
	Short: "Remove a document and its vectors from a session",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentRemove,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	docs, err := sessionService.Documents(context.Background(), args[0])
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		cmd.Println("No documents. Add one with: docchat ingest")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("%s  %-9s  %-5s  %s\n", d.ID, d.Status, d.Format, d.Filename)
	}
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.RemoveDocument(context.Background(), args[0], args[1]); err != nil {
		return err
	}

	cmd.Printf("Removed document %s\n", args[1])
	return nil
}
