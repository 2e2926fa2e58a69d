package cli

import (
	"github.com/spf13/cobra"
)

type appGetter func() (*App, error)

// withApp runs fn and closes the app afterwards, whatever fn returned.
func withApp(get appGetter, fn func(a *App) error) error {
	a, err := get()
	if err != nil {
		return err
	}
	err = fn(a)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func newSignupCmd(get appGetter) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new account",
		Long:  `Create a new account. The password is read from the terminal without echo.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(get, func(a *App) error {
				return a.Signup(cmd.Context(), email, name)
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	return cmd
}

func newLoginCmd(get appGetter) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(get, func(a *App) error {
				return a.Login(cmd.Context(), email)
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newMeCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(get, func(a *App) error {
				return a.Me(cmd.Context())
			})
		},
	}
}

func newForgotCmd(get appGetter) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot",
		Short: "Request a password reset link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(get, func(a *App) error {
				return a.Forgot(cmd.Context(), email)
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newResetCmd(get appGetter) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(get, func(a *App) error {
				return a.Reset(cmd.Context(), token)
			})
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "reset token from the link")
	return cmd
}

func newLogoutCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(get, func(a *App) error {
				return a.Logout(cmd.Context())
			})
		},
	}
}

func newHealthCmd(get appGetter) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(get, func(a *App) error {
				return a.Health(cmd.Context())
			})
		},
	}
}
