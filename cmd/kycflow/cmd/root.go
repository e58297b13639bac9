package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kycflow/kycflow/cmd/kycflow/cmd/config"
)

const appName = "kycflow"

func init() {
	rootCmd.PersistentFlags().StringVarP(&config.ConfigPath, "config", "c", "", `specify the configuration file path (default: kycflow.yaml if it exists)`)
	rootCmd.PersistentFlags().StringVarP(&config.Root, "root", "", "", `specify root directory (default value is the directory of configuration file)`)
	rootCmd.PersistentFlags().StringVarP(&config.EnvFile, "env-file", "", "", `specify the dotenv file (default: .env in the root directory)`)
}

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: fmt.Sprintf("%s runs end-to-end verification workflows against the KYC services.", appName),
}

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
