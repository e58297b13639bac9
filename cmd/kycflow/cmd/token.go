package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kycflow/kycflow/auth"
	"github.com/kycflow/kycflow/cmd/kycflow/cmd/config"
	"github.com/kycflow/kycflow/schema"
)

var tokenCmd = &cobra.Command{
	Use:   "token [target]",
	Short: "print an access token of a target",
	Long: `Acquires an access token with the client credentials grant and prints it.
The gateway target is used if no target is specified.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          token,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func token(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	name := schema.GatewayTargetName
	if len(args) > 0 {
		name = args[0]
	}
	t, ok := cfg.Target(name)
	if !ok {
		return fmt.Errorf("target %q is not configured", name)
	}
	c := &auth.ClientCredentials{
		Issuer:       t.IssuerURL(cfg.Auth.Issuer),
		Realm:        cfg.Auth.Realm,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
	}
	tok, err := c.Acquire(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok.Value)
	if !tok.ExpiresAt.IsZero() {
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", tok.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
