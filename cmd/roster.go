package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"estatewatch/internal/access"
	"estatewatch/internal/storage"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Import estate resident rosters",
	Long:  `Read roster CSV exports from the configured roster folder and load them into the profile directory.`,
}

var rosterImportCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Import roster CSV files into the profile directory",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		quietLogger()

		files := args
		if len(files) == 0 {
			var err error
			files, err = access.FindRosterFiles(cfg.RosterFolder)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to find roster files: %v\n", err)
				os.Exit(1)
			}
			if len(files) == 0 {
				fmt.Printf("No roster CSV files found under %s\n", cfg.RosterFolder)
				return
			}
		}

		imported := 0
		for _, file := range files {
			entries, err := access.ReadRoster(file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", file, err)
				continue
			}

			for _, entry := range entries {
				err := provider.UpsertProfile(ctx, storage.Profile{
					Email: entry.Email,
					Role:  entry.Role.String(),
				})
				if err != nil {
					fmt.Fprintf(os.Stderr, "Failed to save %s: %v\n", entry.Email, err)
					continue
				}
				imported++
			}
			fmt.Printf("Imported %d entries from %s\n", len(entries), file)
		}

		fmt.Printf("\nTotal profiles imported: %d\n", imported)
	},
}

func init() {
	rootCmd.AddCommand(rosterCmd)
	rosterCmd.AddCommand(rosterImportCmd)
}
