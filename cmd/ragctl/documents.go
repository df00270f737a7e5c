package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pdfchat/internal/bootstrap"
)

var (
	documentsLimit  int
	documentsDelete string
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List registered documents, or delete one with --delete",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *bootstrap.App) error {
			if a.Documents == nil {
				return errors.New("document registry is disabled (set mysql.enabled)")
			}
			out := cmd.OutOrStdout()

			if documentsDelete != "" {
				if err := a.Documents.Delete(cmd.Context(), documentsDelete); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted %s\n", documentsDelete)
				return nil
			}

			docs, err := a.Documents.List(cmd.Context(), documentsLimit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DOC_ID\tFILENAME\tPAGES\tCHUNKS\tCREATED")
			for _, d := range docs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", d.DocID, d.Filename, d.PageCount, d.ChunkCount, d.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

func init() {
	documentsCmd.Flags().IntVar(&documentsLimit, "limit", 50, "maximum number of documents to list")
	documentsCmd.Flags().StringVar(&documentsDelete, "delete", "", "doc_id to delete, including its vectors")
}
