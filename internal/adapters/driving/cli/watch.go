package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/logger"
)

// watchSettleDelay is how long a file must be quiet before ingestion.
// Editors and downloads write in bursts; ingesting too early reads a
// half-written file.
const watchSettleDelay = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch [session-id] [directory]",
	Short: "Watch a directory and ingest new documents",
	Long: `Watch a directory and automatically ingest supported documents into
the session as they appear or change. Unsupported files are skipped.

Runs until interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessionID, dir := args[0], args[1]

	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory: " + dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	// Pending files wait out the settle delay before ingestion; repeated
	// writes to the same file reset its timer.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, err := domain.ParseFormat(filepath.Ext(event.Name)); err != nil {
				logger.Debug("Skipping unsupported file %s", event.Name)
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-ticker.C:
			for path, seen := range pending {
				if time.Since(seen) < watchSettleDelay {
					continue
				}
				delete(pending, path)
				if err := ingestFile(ctx, cmd, sessionID, path); err != nil {
					cmd.PrintErrf("%s: %v\n", path, err)
				}
			}
		}
	}
}
