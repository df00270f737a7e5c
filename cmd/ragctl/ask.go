package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pdfchat/internal/app"
	"pdfchat/internal/bootstrap"
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask <doc_id> <question...>",
	Short: "Answer a question from one ingested document",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := app.QueryInput{
			DocID:    args[0],
			Question: strings.Join(args[1:], " "),
			TopK:     askTopK,
		}
		return withApp(cmd.Context(), func(a *bootstrap.App) error {
			res, err := a.RAG.Query(cmd.Context(), input)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Answer)
			if len(res.Citations) > 0 {
				fmt.Fprintln(out, "\nSources:")
				for _, c := range res.Citations {
					page := "?"
					if c.Page != nil {
						page = fmt.Sprint(*c.Page)
					}
					fmt.Fprintf(out, "  p.%s  %s\n", page, c.ID)
				}
			}
			return nil
		})
	},
}

func init() {
	askCmd.Flags().IntVar(&askTopK, "k", 0, "number of chunks to retrieve (default from config)")
}
