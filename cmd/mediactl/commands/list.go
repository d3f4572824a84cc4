package commands

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sir_venger/media_lite/internal/models"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored media, newest capture first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(flags.output); err != nil {
				return err
			}

			var filter models.MediaKind
			if kind != "" {
				k, ok := models.ParseMediaKind(kind)
				if !ok {
					return models.InvalidField("type", kind)
				}
				filter = k
			}

			s, _, closeFn, err := flags.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			recs, err := s.List(cmd.Context())
			if err != nil {
				return err
			}

			out := make([]models.MediaRecord, 0, len(recs))
			var total int64
			for _, r := range recs {
				if filter != "" && r.Kind != filter {
					continue
				}
				out = append(out, r)
				total += r.SizeBytes
			}

			if flags.output == "json" {
				return printJSON(cmd.OutOrStdout(), out)
			}

			rows := make([][]string, 0, len(out))
			for _, r := range out {
				rows = append(rows, []string{
					r.MediaID,
					string(r.Kind),
					humanize.IBytes(uint64(r.SizeBytes)),
					r.CapturedAt.UTC().Format(time.RFC3339),
					r.RelativePath,
				})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Type", "Size", "Captured", "Path"}, rows)
			printf(cmd.OutOrStdout(), "\n%s in %d item(s)\n", humanize.IBytes(uint64(total)), len(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Only list photo or video records")
	return cmd
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <media-id>",
		Short: "Show one media record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(flags.output); err != nil {
				return err
			}

			s, _, closeFn, err := flags.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			r, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if flags.output == "json" {
				return printJSON(cmd.OutOrStdout(), r)
			}
			printTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]string{
				{"Media ID", r.MediaID},
				{"Type", string(r.Kind)},
				{"Original", r.OriginalFilename},
				{"Stored", r.StoredFilename},
				{"Size", fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(r.SizeBytes)), r.SizeBytes)},
				{"MIME", r.MIMEType},
				{"Captured", r.CapturedAt.UTC().Format(time.RFC3339Nano)},
				{"Stored at", fmt.Sprintf("%s (%s)", r.StoredAt.UTC().Format(time.RFC3339), humanize.Time(r.StoredAt))},
				{"Path", r.RelativePath},
			})
			return nil
		},
	}
}
