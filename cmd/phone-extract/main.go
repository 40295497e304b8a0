// Command phone-extract runs phone extraction over local files without a
// database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"claim_contact_backend/internal/adapters"
	"claim_contact_backend/internal/extractcache"
	"claim_contact_backend/platform/config"
	"claim_contact_backend/platform/logger"

	"github.com/spf13/cobra"
)

var (
	verbose bool

	log       *logger.Logger
	extractor *extractcache.Memoized
	cleanup   = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "phone-extract",
	Short: "Extract the contact phone from claim record text",
	Long: `phone-extract finds the contact phone in claim record dumps.

Labels are tried in order: OBSERVACIONES MANUALES, DESCRIPCION, TELEF-1,
TELEF-2. The first mobile-capable number wins. Configuration is read from
the environment (.env is loaded when present).`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOffline()
		if err != nil {
			return err
		}
		env := cfg.Env
		if !verbose {
			env = "production"
		}
		log = logger.NewWithWriter(env, os.Stderr)
		extractor, cleanup = adapters.NewPhoneExtractor(cfg, log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.AddCommand(textCmd, jsonlCmd)
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
