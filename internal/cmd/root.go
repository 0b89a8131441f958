package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ppfadmin",
	Short: "PPF Management System admin dashboard",
	Long: `ppfadmin serves the PPF Management System admin dashboard: login,
role-guarded screens for clients, roles and users, and an audit trail of the
changes made through it. All records live behind the PPF REST API.`,
	SilenceUsage: true,
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
