package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sleeve/internal/vibe"
)

type vibeOutput struct {
	vibe.Board
	Narrative string `json:"narrative,omitempty"`
}

func newVibeCommand(ctx *commandContext) *cobra.Command {
	var items int
	var debug bool
	var narrate bool
	var style string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "vibe <query>",
		Short: "Build a palette-clustered vibe board of album covers",
		Long: `Build a vibe board: album covers for the query are fetched, their
dominant palettes extracted, and the covers clustered into two mood
groups. With --narrate a configured LLM backend writes a short
curatorial paragraph about the board.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			runCtx := requestContext(cmd)
			board, err := svc.VibeBoard(runCtx, query, items, debug)
			if err != nil {
				return err
			}

			output := vibeOutput{Board: board}
			if narrate {
				if !svc.NarratorConfigured() {
					return fmt.Errorf("no narrative backend configured; set an OpenAI key or an Ollama host in the config")
				}
				boardJSON, err := json.Marshal(board)
				if err != nil {
					return fmt.Errorf("marshal board: %w", err)
				}
				summary, err := svc.Summarize(runCtx, string(boardJSON), style)
				if err != nil {
					return err
				}
				output.Narrative = summary.Narrative
			}

			if asJSON {
				return writeJSON(cmd, output)
			}
			renderVibeBoard(cmd, query, output)
			return nil
		},
	}

	cmd.Flags().IntVarP(&items, "items", "n", 0, "Maximum number of covers on the board (default from config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Include per-item resolution records")
	cmd.Flags().BoolVar(&narrate, "narrate", false, "Generate a narrative paragraph for the board")
	cmd.Flags().StringVar(&style, "style", "", "Style hint for the narrative voice")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of tables")
	return cmd
}

func renderVibeBoard(cmd *cobra.Command, query string, output vibeOutput) {
	out := cmd.OutOrStdout()

	if len(output.Groups) == 0 {
		fmt.Fprintf(out, "No covers resolved for %q.\n", query)
	}

	for i, group := range output.Groups {
		fmt.Fprintf(out, "Group %d: %s (%d covers)\n", i+1, group.Label, len(group.Items))
		if group.Summary != "" {
			fmt.Fprintf(out, "  %s\n", group.Summary)
		}

		rows := make([][]string, 0, len(group.Items))
		for j, item := range group.Items {
			rows = append(rows, []string{
				strconv.Itoa(j + 1),
				item.Title,
				item.MiniCaption,
				strings.Join(item.PaletteHex, " "),
				item.CoverURL,
			})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "Title", "Caption", "Palette", "Cover"}, rows))
	}

	if len(output.Debug) > 0 {
		rows := make([][]string, 0, len(output.Debug))
		for _, record := range output.Debug {
			status := "hit"
			if !record.Hit {
				status = record.Reason
				if status == "" {
					status = "miss"
				}
			}
			rows = append(rows, []string{record.RGID, record.Title, status, record.Source})
		}
		fmt.Fprintln(out, "Resolution records:")
		fmt.Fprintln(out, renderTable([]string{"Release group", "Title", "Status", "Source"}, rows))
	}

	if output.Narrative != "" {
		fmt.Fprintln(out, "Narrative:")
		fmt.Fprintf(out, "  %s\n", output.Narrative)
	}
}
