package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sir_venger/media_lite/pkg/mediaclient"
)

func newStatusCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show free space reported by a running media service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := mediaclient.New(nil).Health(cmd.Context(), server)
			if err != nil {
				return err
			}

			used := uint64(0)
			if h.TotalBytes > h.FreeBytes {
				used = h.TotalBytes - h.FreeBytes
			}
			pct := 0.0
			if h.TotalBytes > 0 {
				pct = float64(used) / float64(h.TotalBytes) * 100
			}

			printTable(cmd.OutOrStdout(), []string{"Server", "OK", "Free", "Total", "Used"}, [][]string{{
				server,
				fmt.Sprint(h.OK),
				humanize.IBytes(h.FreeBytes),
				humanize.IBytes(h.TotalBytes),
				fmt.Sprintf("%.1f%%", pct),
			}})
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", envOr("MEDIA_SERVER", "http://localhost:8080"), "Media service URL")
	return cmd
}
