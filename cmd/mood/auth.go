package main

import (
	"context"
	"fmt"

	"moodtrack/internal/app"
	"moodtrack/internal/tracker"

	"github.com/spf13/cobra"
)

// credentialsFrom takes the email from --email or a prompt and always prompts for the password.
func credentialsFrom(cmd *cobra.Command) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		var err error
		if email, err = readLine(cmd, "Email: "); err != nil {
			return "", "", err
		}
	}
	password, err := readSecret(cmd, "Password: ")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentialsFrom(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			user, err := a.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentialsFrom(cmd)
		if err != nil {
			return err
		}
		again, err := readSecret(cmd, "Confirm password: ")
		if err != nil {
			return err
		}
		if again != password {
			return fmt.Errorf("passwords do not match")
		}
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			user, err := a.Register(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		})
	},
}

var loginGoogleCmd = &cobra.Command{
	Use:   "login-google",
	Short: "Sign in with a Google ID token",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		idToken, _ := flags.GetString("id-token")
		profile := tracker.Profile{}
		profile.Email, _ = flags.GetString("email")
		profile.Name, _ = flags.GetString("name")
		profile.Subject, _ = flags.GetString("sub")

		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			user, err := a.LoginWithGoogle(ctx, idToken, profile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			a.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.MoodApp) error {
			s := a.Session()
			if !s.IsAuthenticated() || s.User == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in (local data only).")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d)\n", s.User.Name, s.User.Email, s.User.ID)
			return nil
		})
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("email", "", "Account email")

	loginGoogleCmd.Flags().String("id-token", "", "Google ID token")
	loginGoogleCmd.Flags().String("email", "", "Google account email")
	loginGoogleCmd.Flags().String("name", "", "Display name")
	loginGoogleCmd.Flags().String("sub", "", "Google account subject id")
	loginGoogleCmd.MarkFlagRequired("id-token")
	loginGoogleCmd.MarkFlagRequired("email")
}
