package cli

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/spf13/cobra"
)

// options are the global flags shared by every subcommand.
type options struct {
	configFile string
	server     string
	timeout    time.Duration
	sessionDir string
	grpc       string
}

type appBuilder func(cmd *cobra.Command, o *options) (*App, error)

// NewRootCmd creates the root command of the gophauth CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(buildApp)
}

func newRootCmd(build appBuilder) *cobra.Command {
	o := &options{}
	var app *App

	cmd := &cobra.Command{
		Use:   "gophauth",
		Short: "gophauth - account and password reset client",
		Long: `gophauth talks to the gophauth HTTP API: create an account, log in,
show the current identity and run the forgot/reset password handshake.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := build(cmd, o)
			if err != nil {
				return err
			}
			app = a
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&o.configFile, "config", "", "config file path")
	cmd.PersistentFlags().StringVarP(&o.server, "server", "a", "", "server base URL")
	cmd.PersistentFlags().DurationVar(&o.timeout, "timeout", 0, "request timeout")
	cmd.PersistentFlags().StringVar(&o.sessionDir, "session-dir", "", "directory of the session database")
	cmd.PersistentFlags().StringVar(&o.grpc, "grpc", "", "talk gRPC to this address instead of HTTP")

	current := func() (*App, error) {
		if app == nil {
			return nil, errors.New("client is not initialised")
		}
		return app, nil
	}

	cmd.AddCommand(newSignupCmd(current))
	cmd.AddCommand(newLoginCmd(current))
	cmd.AddCommand(newMeCmd(current))
	cmd.AddCommand(newForgotCmd(current))
	cmd.AddCommand(newResetCmd(current))
	cmd.AddCommand(newLogoutCmd(current))
	cmd.AddCommand(newHealthCmd(current))

	return cmd
}

// buildApp layers config (defaults, JSON, env, then explicitly set flags),
// opens the session database and builds the HTTP or gRPC client.
func buildApp(cmd *cobra.Command, o *options) (*App, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = o.server
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = o.timeout
	}
	if flags.Changed("session-dir") {
		cfg.SessionDir = o.sessionDir
	}
	if flags.Changed("grpc") {
		cfg.GRPCAddress = o.grpc
	}

	dir := cfg.SessionDir
	if dir == "" {
		if dir, err = filex.SessionDir(); err != nil {
			return nil, err
		}
	}

	store, err := session.Open(cmd.Context(), dir)
	if err != nil {
		return nil, err
	}

	var api client.Client = client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
	if cfg.GRPCAddress != "" {
		gc, err := client.NewGRPCClient(cfg.GRPCAddress, cfg.RequestTimeout)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		api = gc
	}

	return NewApp(api, store, cmd.InOrStdin(), cmd.OutOrStdout()), nil
}
