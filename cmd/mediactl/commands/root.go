// Package commands реализует команды mediactl: администрирование каталога
// медиа прямо на томе хранилища и загрузку через HTTP API сервиса.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sir_venger/media_lite/internal/config"
	"github.com/sir_venger/media_lite/internal/repo/catalog"
	"github.com/sir_venger/media_lite/internal/usecase/mediasvc"
)

type globalFlags struct {
	configPath string
	root       string
	output     string
}

// Execute запускает корневую команду.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd собирает дерево команд; каждый вызов возвращает независимое дерево.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "mediactl",
		Short: "Media store maintenance",
		Long: `mediactl works directly on the media root: it lists stored records,
deletes them, rebuilds the catalog index from sidecar files and sweeps
temporary files left behind by interrupted uploads. The upload command
talks to a running service instead.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default: $CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().StringVar(&flags.root, "root", "", "Media root (overrides config)")
	root.PersistentFlags().StringVarP(&flags.output, "output", "o", "table", "Output format (table|json)")

	root.AddCommand(
		newListCmd(flags),
		newShowCmd(flags),
		newDeleteCmd(flags),
		newReindexCmd(flags),
		newSweepCmd(flags),
		newUploadCmd(),
		newStatusCmd(),
	)
	root.CompletionOptions.DisableDefaultCmd = true

	return root
}

func (f *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if f.root != "" {
		cfg.MediaRoot = f.root
	}
	return cfg, nil
}

// openStorage открывает хранилище и каталог из конфигурации.
func (f *globalFlags) openStorage(ctx context.Context) (*mediasvc.Storage, *config.Config, func(), error) {
	cfg, err := f.load()
	if err != nil {
		return nil, nil, nil, err
	}

	cat, err := catalog.Open(ctx, cfg.CatalogDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open catalog: %w", err)
	}

	s := mediasvc.New(mediasvc.Deps{
		Fs:      afero.NewOsFs(),
		Root:    cfg.MediaRoot,
		Catalog: cat,
	})
	return s, cfg, cat.Close, nil
}

func checkOutput(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", format)
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
