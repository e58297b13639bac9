package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kycflow/kycflow"
	"github.com/kycflow/kycflow/cmd/kycflow/cmd/config"
)

var listCmd = &cobra.Command{
	Use:           "list [target...]",
	Short:         "list the targets to run",
	Long:          "Lists the targets to run with their creation mode, auth mode and scenarios.",
	RunE:          list,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func list(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r, err := kycflow.NewRunner(kycflow.WithConfig(cfg), kycflow.WithTargets(args...))
	if err != nil {
		return err
	}
	for _, t := range r.Targets() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tcreate=%s\tauth=%s\tscenarios=%s\n", t.Name, t.Create, t.Auth, strings.Join(t.Scenarios, ","))
	}
	return nil
}
