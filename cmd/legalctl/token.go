package main

import (
	"github.com/spf13/cobra"

	"github.com/JaimeStill/legal-lab/internal/identity"
)

var tokenUser string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development bearer token",
	Long:  `Signs a token for --user with the configured auth secret. Requires auth.enabled.`,
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User id placed in the token subject")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	token, err := identity.New(&cfg.Auth, logger).Issue(tokenUser)
	if err != nil {
		return err
	}
	cmd.Println(token)
	return nil
}
