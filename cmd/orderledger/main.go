package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orderledger",
	Short: "Append newly paid orders from the raw sheet to the processed ledger",
	Long: `orderledger reads the raw order export, drops orders already present in the
processed ledger, extracts manager, sale type, quantity and order bump from each
product description, resolves the product name through a classifier, and appends
the completed rows in one write.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "Process rows without appending to the ledger")
	syncCmd.Flags().Int("workers", 0, "Concurrent row workers (default WORKERS env)")
	syncCmd.Flags().String("report", "", "Write an xlsx report of processed and skipped rows")
	checkCmd.Flags().Bool("no-probe", false, "Skip the probe classification call")
	runsCmd.Flags().Int("limit", 20, "Number of runs to show")

	rootCmd.AddCommand(syncCmd, diffCmd, checkCmd, runsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	must(err)
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
