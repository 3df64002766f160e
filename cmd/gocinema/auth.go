package main

import (
	"errors"
	"fmt"
	"os"

	goCinema "github.com/MrEthical07/goCinema"
	"github.com/MrEthical07/goCinema/token"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in against the auth provider and persist the session.

The password can also be supplied through GOCINEMA_PASSWORD.

Examples:
  gocinema login --email ada@example.com --password s3cret`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	Long: `Create an account. The form is validated locally before anything is sent.

When the provider requires email confirmation no session is started; confirm
the address and run 'gocinema login'.`,
	Args: cobra.NoArgs,
	RunE: runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (or GOCINEMA_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("email")

	signupCmd.Flags().String("email", "", "account email")
	signupCmd.Flags().String("password", "", "password, at least 6 characters")
	signupCmd.Flags().String("confirm", "", "password confirmation")
	signupCmd.Flags().String("first-name", "", "first name")
	signupCmd.Flags().String("last-name", "", "last name")

	logoutCmd.Flags().Bool("force", false, "clear the local session without contacting the provider")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("GOCINEMA_PASSWORD")
	}

	ctx := commandContext(cmd)
	a, err := getEngine(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.engine.Login(ctx, email, password)
	if err != nil {
		return describeAuthError("login failed", err)
	}
	return printAuthResult("Signed in", res)
}

func runSignup(cmd *cobra.Command, args []string) error {
	in := goCinema.SignupInput{}
	in.Email, _ = cmd.Flags().GetString("email")
	in.Password, _ = cmd.Flags().GetString("password")
	in.ConfirmPassword, _ = cmd.Flags().GetString("confirm")
	in.FirstName, _ = cmd.Flags().GetString("first-name")
	in.LastName, _ = cmd.Flags().GetString("last-name")

	ctx := commandContext(cmd)
	a, err := getEngine(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.engine.Signup(ctx, in)
	if err != nil {
		var verr *goCinema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%s: %s", verr.Field, verr.Msg)
		}
		return describeAuthError("signup failed", err)
	}
	if res.ConfirmationRequired {
		if jsonOut {
			return printJSON(map[string]interface{}{
				"confirmation_required": true,
				"email":                 in.Email,
			})
		}
		fmt.Printf("Account created. Check %s for a confirmation link, then run 'gocinema login'.\n", in.Email)
		return nil
	}
	return printAuthResult("Account created and signed in", res)
}

func runLogout(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	ctx := commandContext(cmd)
	a, err := getEngine(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if force {
		a.engine.ForceLogout()
	} else if err := a.engine.Logout(ctx); err != nil {
		return describeAuthError("logout failed (use --force to clear locally)", err)
	}

	if jsonOut {
		return printJSON(map[string]interface{}{"signed_out": true})
	}
	fmt.Println("Signed out")
	return nil
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a, err := getEngine(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.engine.RefreshSession(ctx)
	if err != nil {
		return describeAuthError("refresh failed", err)
	}
	return printAuthResult("Session refreshed", res)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := getEngine(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	st := a.engine.Session().State()
	ts := a.engine.TokenStatus()

	if jsonOut {
		out := map[string]interface{}{
			"view":              st.CurrentView,
			"authenticated":     ts.Authenticated,
			"expired":           ts.Expired,
			"remaining_seconds": ts.Remaining,
			"expires_at":        st.ExpiresAt,
		}
		if st.User != nil {
			out["user"] = st.User
		}
		return printJSON(out)
	}

	w := newTable()
	fmt.Fprintf(w, "View:\t%s\n", st.CurrentView)
	fmt.Fprintf(w, "Authenticated:\t%t\n", ts.Authenticated)
	if st.User != nil {
		fmt.Fprintf(w, "User:\t%s <%s>\n", st.User.DisplayName(), st.User.Email)
		fmt.Fprintf(w, "User ID:\t%s\n", st.User.ID)
	}
	if st.AccessToken != "" {
		expiry := ts.Display
		if ts.Expired {
			expiry += " (expired)"
		}
		fmt.Fprintf(w, "Token expires in:\t%s\n", expiry)
	}
	return w.Flush()
}

func printAuthResult(headline string, res *goCinema.AuthResult) error {
	if jsonOut {
		return printJSON(map[string]interface{}{
			"user":       res.User,
			"expires_at": res.ExpiresAt,
		})
	}
	fmt.Println(headline)
	if res.User != nil {
		fmt.Printf("  User:  %s <%s>\n", res.User.DisplayName(), res.User.Email)
	}
	if res.ExpiresAt > 0 {
		fmt.Printf("  Token: expires in %s\n", token.FormatRemaining(token.TimeUntilExpiry(res.ExpiresAt)))
	}
	return nil
}

// describeAuthError keeps the provider's message visible and points at the
// next step for session-level failures.
func describeAuthError(prefix string, err error) error {
	var authErr *goCinema.AuthError
	switch {
	case errors.Is(err, goCinema.ErrNotAuthenticated):
		return fmt.Errorf("%s: not signed in, run 'gocinema login'", prefix)
	case errors.Is(err, goCinema.ErrSessionExpired), errors.Is(err, goCinema.ErrNoRefreshToken):
		return fmt.Errorf("%s: session expired, run 'gocinema login'", prefix)
	case errors.As(err, &authErr):
		return fmt.Errorf("%s: %s", prefix, authErr.Msg)
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
