package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/pkg/mediaclient"
)

type uploadFlags struct {
	server    string
	mediaType string
	timestamp string
	mimeType  string
	quiet     bool
}

func newUploadCmd() *cobra.Command {
	f := &uploadFlags{}

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files to a running media service",
		Long: `Upload streams each file as a multipart form. The capture timestamp
defaults to the file modification time.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := models.ParseMediaKind(f.mediaType)
			if !ok {
				return models.InvalidField("type", f.mediaType)
			}

			var fixed time.Time
			if f.timestamp != "" {
				t, err := time.Parse(time.RFC3339, f.timestamp)
				if err != nil {
					return fmt.Errorf("invalid --timestamp: %w", err)
				}
				fixed = t
			}

			var progress io.Writer = cmd.ErrOrStderr()
			if f.quiet {
				progress = nil
			}
			client := mediaclient.New(progress)

			for _, path := range args {
				res, err := uploadOne(cmd, client, f, kind, fixed, path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printf(cmd.OutOrStdout(), "%s\t%s\n", res.MediaID, res.Filename)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.server, "server", envOr("MEDIA_SERVER", "http://localhost:8080"), "Media service URL")
	cmd.Flags().StringVar(&f.mediaType, "type", "", "Media type: photo or video")
	cmd.Flags().StringVar(&f.timestamp, "timestamp", "", "Capture time, RFC 3339 (default: file mtime)")
	cmd.Flags().StringVar(&f.mimeType, "mime", "", "Explicit MIME type")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Do not draw progress")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func uploadOne(cmd *cobra.Command, client mediaclient.Client, f *uploadFlags, kind models.MediaKind, fixed time.Time, path string) (mediaclient.UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return mediaclient.UploadResult{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return mediaclient.UploadResult{}, err
	}

	captured := fixed
	if captured.IsZero() {
		captured = info.ModTime()
	}

	return client.Upload(cmd.Context(), f.server, mediaclient.UploadRequest{
		Filename:   filepath.Base(path),
		MediaType:  string(kind),
		CapturedAt: captured.Truncate(time.Second),
		MIMEType:   f.mimeType,
		Reader:     file,
		Size:       info.Size(),
	})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

