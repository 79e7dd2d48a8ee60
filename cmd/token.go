package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nekoden/nekoden/internal/identity"
)

var (
	tokenUser string
	tokenName string
	tokenTTL  time.Duration
)

// Tokens are normally minted by the account service; this one exists for
// local testing against the configured secret.
var tokenCMD = &cobra.Command{
	Use:   "token",
	Short: "issue a signed bearer token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUser == "" {
			return fmt.Errorf("--user is required")
		}
		verifier, err := identity.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, nil)
		if err != nil {
			return err
		}
		token, err := verifier.Issue(tokenUser, tokenName, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCMD.Flags().StringVar(&tokenUser, "user", "", "user id placed in the sub claim")
	tokenCMD.Flags().StringVar(&tokenName, "name", "", "display name")
	tokenCMD.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCMD)
}
