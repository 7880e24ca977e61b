package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sleeve/internal/api"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var debug bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search album cover art for a free-form query",
		Long: `Search album cover art for a free-form query.

The query is routed automatically: "by <name>" or "from <name>" selects
an artist search, a known genre word selects a tag search, and anything
else is treated as an artist name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			resp, err := svc.SearchCoverArt(requestContext(cmd), query, limit, debug)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, resp)
			}
			renderSearchResponse(cmd, resp)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of covers (default from config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Include routing and artist diagnostics")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderSearchResponse(cmd *cobra.Command, resp api.SearchResponse) {
	out := cmd.OutOrStdout()

	routed := fmt.Sprintf("Routed as %s query for %q", resp.Routed.Kind, resp.Routed.Value)
	if resp.Routed.Forced {
		routed += " (forced)"
	}
	fmt.Fprintln(out, routed)

	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "No covers found.")
	} else {
		rows := make([][]string, 0, len(resp.Results))
		for i, result := range resp.Results {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				result.Artist,
				result.ReleaseTitle,
				result.ReleaseDate,
				result.CoverURL,
			})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "Artist", "Release", "Released", "Cover"}, rows))
	}

	if resp.Debug != nil && resp.Debug.Artist != nil {
		fmt.Fprintf(out, "Matched artist: %s (%s)\n", resp.Debug.Artist.Name, resp.Debug.Artist.ID)
	}
}
