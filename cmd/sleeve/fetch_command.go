package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fetch <release-group-id>",
		Short: "Fetch the detail document for a release group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			doc, err := svc.FetchDetail(requestContext(cmd), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, doc)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, doc.Text)
			if doc.URL != "" {
				fmt.Fprintf(out, "\nURL: %s\n", doc.URL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the document as JSON")
	return cmd
}
