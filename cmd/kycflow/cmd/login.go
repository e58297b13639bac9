package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kycflow/kycflow"
	"github.com/kycflow/kycflow/cmd/kycflow/cmd/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "sign in to the portal and save the session",
	Long: `Signs in through the login page of the portal and saves the session to the storage state file.
Targets authenticated with a session reuse it while its cookies are valid.`,
	Args:          cobra.NoArgs,
	RunE:          login,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var loginForce bool

func init() {
	loginCmd.Flags().BoolVarP(&loginForce, "force", "f", false, "sign in even if a valid session is saved")
	rootCmd.AddCommand(loginCmd)
}

func login(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Login.URL == "" || cfg.Login.SuccessURL == "" {
		return fmt.Errorf("login.url and login.successURL are required")
	}
	p := kycflow.NewSessionProvider(cfg, loginForce, nil)
	state, err := p.Acquire(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "session with %d cookies is stored at %s\n", len(state.Cookies), p.Path)
	return nil
}
