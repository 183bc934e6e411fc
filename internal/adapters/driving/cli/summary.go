package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

var summaryDocumentID string

var summaryCmd = &cobra.Command{
	Use:   "summary [session-id]",
	Short: "Summarise a session's documents",
	Long: `Produce a structured summary of everything indexed in a session,
or of a single document with --document.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryDocumentID, "document", "d", "", "summarise a single document")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	if summaryService == nil {
		return errors.New("summary service not configured")
	}

	ctx := context.Background()
	sessionID := args[0]

	var summary *domain.Summary
	var err error
	if summaryDocumentID != "" {
		summary, err = summaryService.SummariseDocument(ctx, sessionID, summaryDocumentID)
	} else {
		summary, err = summaryService.SummariseSession(ctx, sessionID)
	}
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, s *domain.Summary) {
	switch s.Mode {
	case domain.SummarySingle:
		cmd.Printf("Main topic: %s\n", s.MainTopic)
		printSection(cmd, "Key points", s.KeyPoints)
		printSection(cmd, "Supporting details", s.SupportingDetails)
		printSection(cmd, "Additional information", s.AdditionalInfo)
	case domain.SummaryMulti:
		cmd.Printf("Overview: %s\n", s.Overview)
		printSection(cmd, "Key findings", s.KeyFindings)
		printSection(cmd, "Critical details", s.CriticalDetails)
		printSection(cmd, "Conclusions", s.Conclusions)
	}
}

func printSection(cmd *cobra.Command, title string, items []string) {
	if len(items) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("%s:\n", title)
	for _, item := range items {
		cmd.Printf("  - %s\n", item)
	}
}
