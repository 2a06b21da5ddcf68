package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joss/saydo/internal/exec"
	"github.com/joss/saydo/internal/ocr"
)

func ocrCmd() *cobra.Command {
	var (
		langs     string
		noEnhance bool
	)

	cmd := &cobra.Command{
		Use:   "ocr chat|tab <screenshot> <target>",
		Short: "Find the target line in a screenshot (called by the automation daemon)",
		Long: `Recognize the screenshot with tesseract and print which line matches the
target as {"index":N,"found":bool}. Tab mode adds "score". The exit status
is 0 when the target was found and 1 otherwise.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := ocr.ParseMode(args[0])
			if err != nil {
				return err
			}
			target := strings.Join(args[2:], " ")

			t := ocr.NewTesseract(exec.Default)
			t.Languages = langs
			t.Enhance = !noEnhance
			loc := &ocr.Locator{Recognizer: t}

			rep, err := loc.Locate(cmd.Context(), mode, args[1], target)
			if err != nil {
				return err
			}

			data, err := json.Marshal(rep)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			if code := rep.ExitCode(); code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&langs, "lang", "rus+eng", "Tesseract languages")
	cmd.Flags().BoolVar(&noEnhance, "no-enhance", false, "Skip grayscale and contrast preprocessing")
	return cmd
}
