package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"estatewatch/internal/auth"
)

const sessionFile = "./instance/session.json"

// cliSessionStore is the workstation-local role store used by the CLI.
// The server side uses signed session cookies instead.
func cliSessionStore() *auth.SessionStore {
	return auth.NewSessionStore(auth.NewFileBackend(sessionFile))
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the local CLI role session",
}

var sessionGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the currently selected role",
	Run: func(cmd *cobra.Command, args []string) {
		store := cliSessionStore()
		role, ok := store.Role()
		if !ok {
			fmt.Println("No role selected")
			return
		}
		fmt.Println(role)
		if store.Degraded() {
			fmt.Fprintln(os.Stderr, "Warning: session storage unavailable, role is in-memory only")
		}
	},
}

var sessionSetCmd = &cobra.Command{
	Use:   "set <role>",
	Short: "Select the role to act as",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		role, err := auth.ParseRole(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			fmt.Fprintln(os.Stderr, "Known roles:")
			for _, r := range auth.AllRoles {
				fmt.Fprintf(os.Stderr, "  %s\n", r)
			}
			os.Exit(1)
		}

		store := cliSessionStore()
		if err := store.SetRole(role); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set role: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Role set to", role)
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the selected role",
	Run: func(cmd *cobra.Command, args []string) {
		cliSessionStore().Clear()
		fmt.Println("Session cleared")
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionGetCmd)
	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}
