package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"estatewatch/internal/visitor"
)

var visitorsCmd = &cobra.Command{
	Use:   "visitors",
	Short: "Manage visitor pre-authorizations",
	Long:  `List, verify, revoke and expire visitor records from the command line.`,
}

var listVisitorsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all visitor records, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		listVisitors(ctx)
	},
}

var verifyVisitorCmd = &cobra.Command{
	Use:   "verify <access-code>",
	Short: "Verify an access code the way the gate does",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		quietLogger()

		engine := visitor.NewEngine(provider)
		record, err := engine.Verify(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Denied: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Granted: %s (%s), visiting %s\n", record.Name, record.Status, record.VisitDate.Format("2006-01-02"))
	},
}

var revokeVisitorCmd = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Revoke a pre-authorization by record id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		quietLogger()

		store := cliSessionStore()
		role, ok := store.Role()
		if !ok {
			fmt.Fprintln(os.Stderr, "No role selected, run `estatewatch session set <role>` first")
			os.Exit(1)
		}

		engine := visitor.NewEngine(provider)
		if err := engine.Revoke(ctx, args[0], role.String(), role); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to revoke: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Revoked", args[0])
	},
}

var expireVisitorsCmd = &cobra.Command{
	Use:   "expire",
	Short: "Expire overdue pending pre-authorizations",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		quietLogger()

		engine := visitor.NewEngine(provider)
		count, err := engine.ExpireOverdue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Expired %d record(s)\n", count)
	},
}

// Reduce log noise for CLI commands
func quietLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	slog.SetDefault(logger)
}

func listVisitors(ctx context.Context) {
	quietLogger()

	records, err := provider.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list visitors: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No visitor records")
		return
	}

	// Print table header
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCODE\tSTATUS\tVISIT DATE\tAUTHORIZED BY")
	fmt.Fprintln(w, "--\t----\t----\t------\t----------\t-------------")

	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.AccessCode, r.Status,
			r.VisitDate.Format("2006-01-02"), r.AuthorizedBy)
	}

	w.Flush()
	fmt.Printf("\nTotal visitors: %d\n", len(records))
}

func init() {
	rootCmd.AddCommand(visitorsCmd)
	visitorsCmd.AddCommand(listVisitorsCmd)
	visitorsCmd.AddCommand(verifyVisitorCmd)
	visitorsCmd.AddCommand(revokeVisitorCmd)
	visitorsCmd.AddCommand(expireVisitorsCmd)
}
