package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lifelog/lifelog/internal/config"
	"github.com/lifelog/lifelog/internal/db"
	"github.com/lifelog/lifelog/internal/repository"
	"github.com/lifelog/lifelog/internal/storage"
)

// SweepCmd deletes orphaned storage objects: objects left behind when an
// upload batch was aborted before its metadata transaction committed. Keys
// with a metadata row are never touched.
func SweepCmd() *cobra.Command {
	var dryRun bool

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete storage objects with no attachment metadata row",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx := cmd.Context()

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(database) }()

			fileStorage, err := storage.New(cfg)
			if err != nil {
				return err
			}

			attachments := repository.NewAttachmentRepository(database)
			registered, err := attachments.AllKeys(ctx)
			if err != nil {
				return err
			}
			known := make(map[string]bool, len(registered))
			for _, key := range registered {
				known[key] = true
			}

			stored, err := fileStorage.Keys(ctx)
			if err != nil {
				return err
			}

			orphans := 0
			for _, key := range stored {
				if known[key] {
					continue
				}
				orphans++
				if dryRun {
					fmt.Printf("orphan: %s\n", key)
					continue
				}
				err := fileStorage.Delete(ctx, key)
				if err != nil {
					slog.Error("failed to delete orphaned object", "key", key, "error", err)
					continue
				}
				fmt.Printf("deleted: %s\n", key)
			}

			fmt.Printf("%d objects scanned, %d orphans\n", len(stored), orphans)
			return nil
		},
	}

	sweepCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list orphans without deleting them")
	return sweepCmd
}
