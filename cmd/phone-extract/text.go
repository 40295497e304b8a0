package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"claim_contact_backend/platform/sanitize"

	"github.com/spf13/cobra"
)

var inspect bool

var textCmd = &cobra.Command{
	Use:   "text [file...]",
	Short: "Extract from whole files, or stdin when no file is given",
	Long: `Reads each file as one claim record and prints one line per file:

  <file>	<phone>	<label>

A dash is printed when no phone is found. With --inspect a JSON report of
every label and candidate is printed instead.

Example:
  phone-extract text ficha_2024000123.txt
  cat ficha.html | phone-extract text --inspect`,
	RunE: runText,
}

func init() {
	textCmd.Flags().BoolVar(&inspect, "inspect", false, "print a per-label JSON report")
}

func runText(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return writeText(cmd.Context(), out, "-", string(raw))
	}

	for _, name := range args {
		raw, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		if err := writeText(cmd.Context(), out, name, string(raw)); err != nil {
			return err
		}
	}
	return nil
}

func writeText(ctx context.Context, w io.Writer, name, raw string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	text := sanitize.DocumentText(raw)

	if inspect {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(extractor.Inspect(text))
	}

	match, found := extractor.Extract(ctx, text)
	if !found {
		_, err := fmt.Fprintf(w, "%s\t-\t-\n", name)
		return err
	}
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", name, match.Number, match.Label.Name())
	return err
}
