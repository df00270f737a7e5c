package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"pdfchat/internal/bootstrap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "ragctl",
	Short:         "Ingest PDFs and ask questions about them from the command line",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_FILE or configs/config.toml)")
	rootCmd.AddCommand(ingestCmd, askCmd, documentsCmd)
}

// withApp wires the same backends the server uses for the duration of one command.
func withApp(ctx context.Context, fn func(app *bootstrap.App) error) error {
	if cfgFile != "" {
		if err := os.Setenv("CONFIG_FILE", cfgFile); err != nil {
			return err
		}
	}
	app, err := bootstrap.New(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
