package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kycflow/kycflow/cmd/kycflow/cmd/config"
	"github.com/kycflow/kycflow/internal/twin"
)

var (
	twinAddr     string
	twinTokenTTL time.Duration
	twinQuiet    bool
)

func init() {
	twinCmd.Flags().StringVar(&twinAddr, "addr", "127.0.0.1:8080", "address to listen on")
	twinCmd.Flags().DurationVar(&twinTokenTTL, "token-ttl", 5*time.Minute, "lifetime of the issued tokens and sessions")
	twinCmd.Flags().BoolVarP(&twinQuiet, "quiet", "q", false, "disable request logging")
	rootCmd.AddCommand(twinCmd)
}

var twinCmd = &cobra.Command{
	Use:   "twin",
	Short: "serve an in-memory twin of the KYC services",
	Long: `Serves an in-memory twin of the gateway, the verification service, the case service and the login page.
The twin accepts the credentials of the configuration, so "kycflow run" can be pointed at it.`,
	Args:          cobra.NoArgs,
	RunE:          serveTwin,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func serveTwin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts := twin.Options{
		Realm:        cfg.Auth.Realm,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		PrivateKey:   cfg.Auth.PrivateKey,
		Username:     cfg.Login.Username,
		Password:     cfg.Login.Password,
		TokenTTL:     twinTokenTTL,
	}
	if !twinQuiet {
		opts.LogWriter = cmd.ErrOrStderr()
	}

	ln, err := net.Listen("tcp", twinAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	srv := &http.Server{
		Handler:           twin.New(opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	fmt.Fprintf(cmd.OutOrStdout(), "serving on http://%s\n", ln.Addr())

	eg, ctx := errgroup.WithContext(cmd.Context())
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
