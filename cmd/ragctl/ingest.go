package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pdfchat/internal/app"
	"pdfchat/internal/bootstrap"
	"pdfchat/internal/pkg/pdfextract"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>",
	Short: "Extract, chunk, embed and store a PDF; prints the new doc_id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s failed: %w", path, err)
		}
		defer f.Close()

		pages, err := pdfextract.ExtractPages(f)
		if err != nil {
			return fmt.Errorf("read %s failed: %w", path, err)
		}

		return withApp(cmd.Context(), func(a *bootstrap.App) error {
			res, err := a.RAG.Ingest(cmd.Context(), app.IngestInput{
				Filename: filepath.Base(path),
				Pages:    pages,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "doc_id: %s\npages:  %d\nchunks: %d\n", res.DocID, res.PageCount, res.ChunkCount)
			return nil
		})
	},
}
