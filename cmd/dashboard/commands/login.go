package commands

import (
	"fmt"

	"github.com/jrsteele09/go-github-dashboard/dashboard"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/jrsteele09/go-github-dashboard/session"
	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in with GitHub",
		Long: `Prints the GitHub authorization URL and waits for the redirect on the
configured redirect URI, then exchanges the code through the proxy.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if err := a.session.Evaluate(ctx, oauth2.Callback{}); err != nil {
		return err
	}
	snap := a.session.Snapshot()
	if snap.State.Authorized() {
		fmt.Fprintf(out, "Already signed in as %s\n", signedInAs(snap))
		return nil
	}

	// listen before handing out the URL so the redirect cannot be missed
	l, err := a.startLogin()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Open this URL to sign in with GitHub:\n\n  %s\n\nWaiting for the redirect on %s ...\n", snap.AuthorizeURL, l.URL())

	cb, err := l.Wait(ctx)
	if err != nil {
		return err
	}
	if err := a.session.Evaluate(ctx, cb); err != nil {
		return err
	}

	snap = a.session.Snapshot()
	if !snap.State.Authorized() {
		return alertError(snap)
	}
	fmt.Fprintf(out, "Signed in as %s (%s)\n", signedInAs(snap), snap.State)
	return alertError(snap)
}

func signedInAs(snap session.Snapshot) string {
	return dashboard.Build(snap.Viewer, nil, nil, nowFunc()).Viewer.DisplayName()
}
