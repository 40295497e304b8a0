package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"claim_contact_backend/internal/claims/service"
	"claim_contact_backend/platform/phone"
	"claim_contact_backend/platform/sanitize"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const maxLineBytes = 16 << 20

var (
	concurrency int
	outputFile  string
)

var jsonlCmd = &cobra.Command{
	Use:   "jsonl <file>",
	Short: "Extract from a JSON lines file of claim records",
	Long: `Reads one {"claimNumber": "...", "text": "..."} object per line and writes
one result object per line, in input order:

  {"claimNumber":"...","status":"ok","phone":"...","e164":"...","label":"..."}

Status is ok, not_found or error (unreadable input line). Use - to read
stdin.

Example:
  phone-extract jsonl fichas.jsonl --concurrency 8 -o telefonos.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runJSONL,
}

func init() {
	jsonlCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent workers")
	jsonlCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
}

type recordIn struct {
	ClaimNumber string `json:"claimNumber"`
	Text        string `json:"text"`
}

type recordOut struct {
	ClaimNumber string `json:"claimNumber"`
	Status      string `json:"status"`
	Phone       string `json:"phone,omitempty"`
	E164        string `json:"e164,omitempty"`
	Label       string `json:"label,omitempty"`
	Error       string `json:"error,omitempty"`
}

type jsonlStats struct {
	Records  int
	OK       int
	NotFound int
	Errors   int
}

func runJSONL(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	out := cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stats, err := processJSONL(ctx, in, out, concurrency)
	if err != nil {
		return err
	}
	log.Info("jsonl extraction finished",
		"records", stats.Records, "ok", stats.OK, "notFound", stats.NotFound, "errors", stats.Errors)
	return nil
}

// processJSONL extracts every record of r and writes results to w in input
// order.
func processJSONL(ctx context.Context, r io.Reader, w io.Writer, workers int) (jsonlStats, error) {
	var lines [][]byte
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return jsonlStats{}, fmt.Errorf("read input: %w", err)
	}

	results := make([]recordOut, len(lines))
	var ok, notFound, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, line := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = extractRecord(gctx, line)
			switch results[i].Status {
			case "ok":
				ok.Add(1)
			case "not_found":
				notFound.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return jsonlStats{}, err
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return jsonlStats{}, fmt.Errorf("write output: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return jsonlStats{}, fmt.Errorf("write output: %w", err)
	}

	return jsonlStats{
		Records:  len(lines),
		OK:       int(ok.Load()),
		NotFound: int(notFound.Load()),
		Errors:   int(failed.Load()),
	}, nil
}

func extractRecord(ctx context.Context, line []byte) recordOut {
	var rec recordIn
	if err := json.Unmarshal(line, &rec); err != nil {
		return recordOut{Status: "error", Error: "invalid json: " + err.Error()}
	}

	out := recordOut{ClaimNumber: service.NormalizeClaimNumber(rec.ClaimNumber)}
	match, found := extractor.Extract(ctx, sanitize.DocumentText(rec.Text))
	if !found {
		out.Status = "not_found"
		return out
	}

	out.Status = "ok"
	out.Phone = string(match.Number)
	out.E164 = phone.NormalizeE164(out.Phone)
	out.Label = match.Label.Name()
	return out
}
