package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/ministry-site/internal/auth"
)

// tokenCmd issues an HS256 bearer token
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the protected routes",
	Long: `Issue an HS256 bearer token signed with JWT_SECRET.

The secret is read from the JWT_SECRET environment variable unless --secret
is given.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().String("secret", "", "Signing secret (defaults to $JWT_SECRET)")
	tokenCmd.Flags().String("subject", "admin", "Token subject")
	tokenCmd.Flags().String("role", "editor", "Role claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	secret, _ := cmd.Flags().GetString("secret")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		return errors.New("no secret: set JWT_SECRET or pass --secret")
	}
	subject, _ := cmd.Flags().GetString("subject")
	role, _ := cmd.Flags().GetString("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	token, err := auth.NewVerifier(secret).Issue(subject, role, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
