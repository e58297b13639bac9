package cmd

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kycflow/kycflow"
	"github.com/kycflow/kycflow/cmd/kycflow/cmd/config"
	"github.com/kycflow/kycflow/color"
	"github.com/kycflow/kycflow/context"
	"github.com/kycflow/kycflow/reporter"
)

// ErrTestFailed is the error returned when the test failed.
var ErrTestFailed = errors.New("test failed")

var (
	verbose     bool
	parallel    int
	reportJSON  string
	reportJUnit string
	forceLogin  bool
)

func init() {
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	runCmd.Flags().IntVarP(&parallel, "parallel", "", 0, "specify the number of scenarios to run in parallel (the default value is the number of logical CPUs usable by the current process)")
	runCmd.Flags().StringVar(&reportJSON, "report-json", "", "output JSON test report to specified file")
	runCmd.Flags().StringVar(&reportJUnit, "report-junit", "", "output JUnit XML test report to specified file")
	runCmd.Flags().BoolVar(&forceLogin, "force-login", false, "sign in again even if a valid session is saved")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [target...]",
	Short: "run verification scenarios",
	Long: `Runs the verification scenarios.

You can specify the names of the targets you want to run as arguments.
If you do not specify any arguments, it will run every target in the configuration file.`,
	RunE:          run,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI flags for report options (overrides config file settings)
	if cmd.Flags().Changed("report-json") {
		cfg.Output.Report.JSON.Filename = reportJSON
	}
	if cmd.Flags().Changed("report-junit") {
		cfg.Output.Report.JUnit.Filename = reportJUnit
	}

	r, err := kycflow.NewRunner(
		kycflow.WithConfig(cfg),
		kycflow.WithTargets(args...),
		kycflow.WithForceLogin(forceLogin),
	)
	if err != nil {
		return err
	}

	reporterOpts := []reporter.Option{
		reporter.WithWriter(cmd.OutOrStdout()),
	}
	if cfg.Output.Verbose || verbose {
		reporterOpts = append(reporterOpts, reporter.WithVerboseLog())
	}

	colorConfig := color.New()
	if cfg.Output.Colored != nil {
		colorConfig.SetEnabled(*cfg.Output.Colored)
	}
	reporterOpts = append(reporterOpts, reporter.WithColorConfig(colorConfig))

	if cfg.Output.Summary {
		reporterOpts = append(reporterOpts, reporter.WithTestSummary())
	}

	// the flag wins
	parallelNum := runtime.NumCPU()
	if cfg.Execution.Parallel > 0 {
		parallelNum = cfg.Execution.Parallel
	}
	if parallel > 0 {
		parallelNum = parallel
	}
	reporterOpts = append(reporterOpts, reporter.WithMaxParallel(parallelNum))

	var reportErr error
	success := reporter.Run(
		func(rptr reporter.Reporter) {
			ctx := context.New(rptr).
				WithRequestContext(cmd.Context()).
				WithColorConfig(colorConfig).
				WithVerbose(verbose)
			r.Run(ctx)
			// Generate report in Cleanup to ensure all parallel tests complete
			rptr.Cleanup(func() {
				reportErr = r.CreateTestReport(rptr)
			})
		},
		reporterOpts...,
	)
	if reportErr != nil {
		return fmt.Errorf("failed to create test reports: %w", reportErr)
	}
	if !success {
		return ErrTestFailed
	}
	return nil
}
