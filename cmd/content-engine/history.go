// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/content-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the generated-identifier ledger",
	Long: `History manages the SQLite ledger of previously generated identifiers
(e.g. song titles). The ledger is fed back into prompts on later runs to
steer the backend away from duplicates.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print recorded identifiers in generation order",
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded identifiers",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.PersistentFlags().String("history-db", "", "history ledger database path")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func openLedgerFromFlags(cmd *cobra.Command) (*history.Ledger, error) {
	path, _ := cmd.Flags().GetString("history-db")
	if path == "" {
		path = viper.GetString("history_db")
	}
	if path == "" {
		return nil, fmt.Errorf("no history database configured: set --history-db or history_db")
	}
	return history.OpenLedger(path)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	ledger, err := openLedgerFromFlags(cmd)
	if err != nil {
		return err
	}
	defer ledger.Close()

	values, err := ledger.Load(context.Background())
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Fprintln(os.Stdout, v)
	}
	fmt.Fprintf(os.Stdout, "\n%d identifier(s)\n", len(values))
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	ledger, err := openLedgerFromFlags(cmd)
	if err != nil {
		return err
	}
	defer ledger.Close()

	if err := ledger.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "history cleared")
	return nil
}
