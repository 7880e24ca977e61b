package main

import (
	"github.com/spf13/cobra"

	"sleeve/internal/mcp"
)

func newMCPCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the cover art tools over stdio",
		Long: `Serve the cover art tools as an MCP server on stdin/stdout.

Stdout carries the protocol, so all logging goes to stderr. Point an
MCP-capable client at this command to call search_cover_art, search,
fetch, vibe_board, and rag_summarize directly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			server := mcp.NewServer(svc, ctx.loggerValue())
			return server.Run(cmd.Context())
		},
	}
}
