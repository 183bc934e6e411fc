package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [session-id] [file...]",
	Short: "Ingest documents into a session",
	Long: `Extract, chunk, embed, and index one or more documents into a session.

The format is inferred from the file extension. Supported formats:
txt, md, csv, pdf, docx, xlsx, xls, and (with vision configured)
jpg, jpeg, png, gif.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessionID := args[0]
	ctx := context.Background()

	var failed int
	for _, path := range args[1:] {
		if err := ingestFile(ctx, cmd, sessionID, path); err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args)-1)
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, sessionID, path string) error {
	format, err := domain.ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := sessionService.Upload(ctx, sessionID, filepath.Base(path), format, content)
	if err != nil {
		return err
	}

	if result.Report.Complete() {
		cmd.Printf("%s: indexed %d chunks\n", filepath.Base(path), result.Report.Inserted)
	} else {
		cmd.Printf("%s: indexed %d of %d chunks (%d failed)\n",
			filepath.Base(path), result.Report.Inserted, result.ChunkCount, len(result.Report.FailedChunkIDs))
	}
	return nil
}
