// Command portal-extract reads claim records from the portal and stores the
// contact phone of each claim.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"claim_contact_backend/internal/adapters"
	"claim_contact_backend/internal/claims"
	"claim_contact_backend/internal/claims/repository"
	"claim_contact_backend/internal/claims/transport"
	"claim_contact_backend/platform/apperr"
	"claim_contact_backend/platform/config"
	"claim_contact_backend/platform/db"
	"claim_contact_backend/platform/logger"
	"claim_contact_backend/platform/validator"

	"github.com/spf13/cobra"
)

var (
	claimList    string
	claimsFile   string
	limit        int
	exportPath   string
	exportStatus string
)

var rootCmd = &cobra.Command{
	Use:   "portal-extract",
	Short: "Fetch claim records from the portal and extract contact phones",
	Long: `portal-extract logs into the claim portal, opens each claim record and
stores the contact phone found in it.

Without --claims or --file every pending claim is processed, up to --limit.
Claim numbers given explicitly are imported first; numbers shorter than 9
digits are skipped.

Example:
  portal-extract --claims 202400012345,202400012346
  portal-extract --file siniestros.txt --export resultados.jsonl
  portal-extract --limit 200`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&claimList, "claims", "", "comma separated claim numbers")
	rootCmd.Flags().StringVar(&claimsFile, "file", "", "file with one claim number per line")
	rootCmd.Flags().IntVar(&limit, "limit", 100, "maximum pending claims to process")
	rootCmd.Flags().StringVar(&exportPath, "export", "", "write results as JSON lines to this file")
	rootCmd.Flags().StringVar(&exportStatus, "export-status", "", "only export claims with this status")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	status := repository.Status(exportStatus)
	if status != "" && !status.Valid() {
		return fmt.Errorf("invalid --export-status %q", exportStatus)
	}

	numbers, err := collectClaimNumbers(claimList, claimsFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.IsPortalEnabled() {
		return fmt.Errorf("PORTAL_BASE_URL and PORTAL_USERNAME are required")
	}

	log := logger.New(cfg.Env)
	log.Info("starting portal extraction", "claims", len(numbers), "limit", limit)

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	extractor, closeExtractor := adapters.NewPhoneExtractor(cfg, log)
	defer closeExtractor()

	sources, err := adapters.NewTextSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = sources.Close() }()

	if sources.Portal == nil {
		return fmt.Errorf("portal reader is not configured")
	}
	if err := sources.Portal.Login(ctx); err != nil {
		return err
	}

	module := claims.NewModule(pool, extractor, cfg, validator.New(), log)
	svc := module.Service()
	svc.SetTextSource(sources.Source)

	if len(numbers) > 0 {
		if err := extractNumbers(ctx, cmd.ErrOrStderr(), svc, numbers); err != nil {
			return err
		}
	} else {
		summary, err := svc.ExtractPending(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "processed %d: %d ok, %d not found, %d errors\n",
			summary.Processed, summary.OK, summary.NotFound, summary.Errors)
	}

	if exportPath == "" {
		return nil
	}
	f, err := os.Create(exportPath)
	if err != nil {
		return err
	}
	defer f.Close()

	written, err := svc.ExportJSONL(ctx, f, status)
	if err != nil {
		return err
	}
	log.Info("results exported", "path", exportPath, "records", written)
	return nil
}

// claimService is the part of the claims service the driver uses.
type claimService interface {
	Import(ctx context.Context, req transport.ImportClaimsRequest) (transport.ImportClaimsResponse, error)
	ExtractByNumber(ctx context.Context, claimNumber string) (transport.ClaimResponse, error)
}

// extractNumbers imports the claim numbers and extracts each one in turn,
// printing one line per claim.
func extractNumbers(ctx context.Context, w io.Writer, svc claimService, numbers []string) error {
	req := transport.ImportClaimsRequest{Claims: make([]transport.ImportClaim, 0, len(numbers))}
	for _, n := range numbers {
		req.Claims = append(req.Claims, transport.ImportClaim{ClaimNumber: n})
	}

	imported, err := svc.Import(ctx, req)
	if err != nil {
		return err
	}
	for _, rejected := range imported.Rejected {
		fmt.Fprintf(w, "%s\tskipped\n", rejected)
	}

	skip := make(map[string]struct{}, len(imported.Rejected))
	for _, rejected := range imported.Rejected {
		skip[rejected] = struct{}{}
	}

	seen := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		if _, rejected := skip[n]; rejected {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, err := svc.ExtractByNumber(ctx, n)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				fmt.Fprintf(w, "%s\tmissing\n", n)
				continue
			}
			return err
		}

		phone := "-"
		if resp.Phone != nil {
			phone = *resp.Phone
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", resp.ClaimNumber, resp.Status, phone)
	}
	return nil
}

// collectClaimNumbers merges the --claims list and the --file contents.
// Blank lines and lines starting with # are ignored.
func collectClaimNumbers(list, file string) ([]string, error) {
	var numbers []string
	for _, part := range strings.Split(list, ",") {
		if n := strings.TrimSpace(part); n != "" {
			numbers = append(numbers, n)
		}
	}

	if file == "" {
		return numbers, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		numbers = append(numbers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return numbers, nil
}
