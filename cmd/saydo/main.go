// Package main provides the saydo CLI entrypoint.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joss/saydo/internal/render"
)

var (
	version = "0.1.0"
	pretty  = true
	jsonOut bool
)

// exitCode carries a process exit status out of a command without
// printing an error.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	os.Exit(execute(newRootCmd()))
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "saydo [command text]",
		Short: "Voice-driven desktop automation for Telegram and Chrome",
		Long: `saydo turns short Russian phrases into actions on the automation daemon.

Usage modes:
  saydo "<command>"   Run one command and exit 0 on success, 1 otherwise
  saydo               Listen for wake-word commands until interrupted

Examples:
  saydo "открой чат мама"
  saydo "напиши в избранное: тест"
  saydo "открой вкладку смета"`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !cmd.Flags().Changed("pretty") {
				pretty = render.Pretty()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListen(cmd, listenOptions{transcriber: envTranscriber()})
			}
			return runText(cmd, strings.Join(args, " "))
		},
	}

	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Colors and icons (default: when stdout is a terminal)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "run", Title: "Commands:"},
		&cobra.Group{ID: "inspect", Title: "Inspection:"},
		&cobra.Group{ID: "helpers", Title: "Daemon helpers:"},
	)

	for _, c := range []*cobra.Command{listenCmd(), parseCmd()} {
		c.GroupID = "run"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{chatsCmd(), healthCmd(), historyCmd(), tabsCmd()} {
		c.GroupID = "inspect"
		rootCmd.AddCommand(c)
	}
	ocr := ocrCmd()
	ocr.GroupID = "helpers"
	rootCmd.AddCommand(ocr)

	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// execute runs root and maps its error to a process exit status.
func execute(root *cobra.Command) int {
	err := root.Execute()
	if err == nil {
		return 0
	}
	var code exitCode
	if errors.As(err, &code) {
		return int(code)
	}
	fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	return 1
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "saydo version %s\n", version)
		},
	}
}

// printJSON writes v indented to stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func renderer(cmd *cobra.Command) *render.Renderer {
	return render.New(cmd.OutOrStdout(), pretty)
}
