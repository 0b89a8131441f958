package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppfmanagement/admin-dashboard/internal/core/service"
)

var decodeTokenCmd = &cobra.Command{
	Use:   "decode-token [token]",
	Short: "Print the role and user claims of a bearer token",
	Long: `Decode a backend bearer token the way the route guard does: structurally,
without verifying the signature. The token is read from stdin when no argument
is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecodeToken,
}

func init() {
	rootCmd.AddCommand(decodeTokenCmd)
}

func runDecodeToken(cmd *cobra.Command, args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read token: %w", err)
		}
		token = line
	}

	claims, err := service.NewJWTClaimsDecoder().Decode(strings.TrimSpace(token))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{
		"roleId": claims.RoleID,
		"userId": claims.UserID,
		"email":  claims.Email,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
