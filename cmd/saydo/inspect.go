package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/joss/saydo/internal/history"
	"github.com/joss/saydo/internal/whitelist"
)

func parseCmd() *cobra.Command {
	var rules bool

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Show how a command would be parsed and resolved, without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			if rules {
				renderer(cmd).Rules(a.router)
				return nil
			}
			if len(args) == 0 {
				return cmd.Usage()
			}

			rep := a.dispatcher.Plan(strings.Join(args, " "))
			if jsonOut {
				return printJSON(cmd, rep)
			}
			renderer(cmd).Plan(rep)
			if !rep.Result.OK {
				return exitCode(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rules, "rules", false, "List the phrase rules in match order")
	return cmd
}

// chatEntry is the JSON form of one whitelisted chat.
type chatEntry struct {
	Canonical   string   `json:"canonical"`
	Aliases     []string `json:"aliases"`
	ResultIndex *int     `json:"result_index,omitempty"`
}

func chatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List whitelisted chats and alias collisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			idx := a.store.Load()
			if !jsonOut {
				renderer(cmd).Chats(idx, a.env.TrackedChatsPath)
				return nil
			}

			out := struct {
				Path       string                `json:"path"`
				Enforce    bool                  `json:"enforce"`
				Chats      []chatEntry           `json:"chats"`
				Collisions []whitelist.Collision `json:"collisions"`
			}{Path: a.env.TrackedChatsPath, Enforce: a.resolver.Enforce, Collisions: idx.Collisions()}
			for _, name := range idx.Canonicals() {
				e := chatEntry{Canonical: name, Aliases: idx.AliasesOf(name)}
				if n, ok := idx.FixedIndex(name); ok {
					e.ResultIndex = &n
				}
				out.Chats = append(out.Chats, e)
			}
			return printJSON(cmd, out)
		},
	}
}

func historyCmd() *cobra.Command {
	var (
		unrecognized bool
		heard        bool
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent commands and heard speech",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.openHistory(); err != nil {
				return err
			}

			title := "history"
			var kind history.Kind
			switch {
			case unrecognized:
				kind, title = history.KindUnrecognized, "unrecognized commands"
			case heard:
				kind, title = history.KindHeard, "heard speech"
			}

			entries, err := a.history.List(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd, entries)
			}
			renderer(cmd).History(entries, title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unrecognized, "unrecognized", false, "Only commands no rule matched")
	cmd.Flags().BoolVar(&heard, "heard", false, "Only transcribed speech")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries")
	cmd.MarkFlagsMutuallyExclusive("unrecognized", "heard")
	return cmd
}
