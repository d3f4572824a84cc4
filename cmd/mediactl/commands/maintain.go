package commands

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sir_venger/media_lite/internal/usecase/mediasvc"
)

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <media-id>...",
		Short: "Delete media payloads together with their sidecars",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, closeFn, err := flags.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			for _, id := range args {
				if err := s.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
				printf(cmd.OutOrStdout(), "deleted %s\n", id)
			}
			return nil
		},
	}
}

func newReindexCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the catalog index from sidecar files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, _, closeFn, err := flags.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := s.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "indexed %d record(s)\n", n)
			return nil
		},
	}
}

func newSweepCmd(flags *globalFlags) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove temporary files left by interrupted uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			sw := &mediasvc.Sweeper{
				Fs:        afero.NewOsFs(),
				MediaRoot: cfg.MediaRoot,
				TempRoot:  cfg.TempDir,
				TTL:       ttl,
			}
			n, err := sw.SweepOnce()
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "removed %d stale entries\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Only remove entries older than this")
	return cmd
}
