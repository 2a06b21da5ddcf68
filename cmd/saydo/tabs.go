package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joss/saydo/internal/browser"
	"github.com/joss/saydo/internal/config"
)

func tabsCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "tabs <keywords>",
		Short: "List open Chrome tabs matching spoken keywords",
		Long: `Connect to Chrome's remote debugging endpoint and rank open tabs by how
many keywords appear in their title or URL. Chrome must run with
--remote-debugging-port (default endpoint $SAYDO_DEVTOOLS or 127.0.0.1:9222).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = config.Env().DevToolsAddr
			}
			keywords := strings.Join(args, " ")

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			tabs, err := browser.NewDevTools(addr).Tabs(ctx)
			if err != nil {
				return err
			}
			ranked := browser.Rank(tabs, keywords)
			best := browser.Best(tabs, keywords)

			if jsonOut {
				return printJSON(cmd, struct {
					Total   int              `json:"total"`
					Matches []browser.Ranked `json:"matches"`
					Best    int              `json:"best"`
				}{len(tabs), ranked, best.Index})
			}

			r := renderer(cmd)
			r.Tabs(len(tabs), keywords, ranked)
			if best.Found {
				r.Line()
				r.Println("on-screen pick: [%d] %s", best.Index, tabs[best.Index].Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "devtools", "", "Chrome DevTools host:port")
	return cmd
}
