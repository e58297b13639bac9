package cmd

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/kycflow/kycflow/cmd/kycflow/cmd/config"
)

var dumpCmd = &cobra.Command{
	Use:           "dump",
	Short:         "dump the effective configuration",
	Long:          "Dumps the configuration after applying defaults and environment variables. Secrets are masked.",
	Args:          cobra.NoArgs,
	RunE:          dump,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func dump(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	b, err := yaml.MarshalWithOptions(cfg.Redacted(), yaml.IndentSequence(true))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}
