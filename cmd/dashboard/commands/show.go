package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/jrsteele09/go-github-dashboard/dashboard"
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/jrsteele09/go-github-dashboard/session"
	"github.com/jrsteele09/go-github-dashboard/tui"
	"github.com/spf13/cobra"
)

var nowFunc = time.Now

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the dashboard without the TUI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.session.Evaluate(ctx, oauth2.Callback{}); err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), a.session.Snapshot(), nowFunc())
		},
	}
}

func printSnapshot(w io.Writer, snap session.Snapshot, now time.Time) error {
	fmt.Fprintf(w, "Status: %s\n", snap.State)
	if snap.Alert != "" {
		fmt.Fprintf(w, "Alert: %s\n", snap.Alert)
	}

	switch snap.State {
	case session.NotAuthorized, session.Authenticating:
		fmt.Fprintln(w, "Not signed in, run `dashboard login`.")
		return nil
	case session.NoRepository:
		fmt.Fprintln(w, "No repository selected, run `dashboard select`.")
		return nil
	}

	view := dashboard.Build(snap.Viewer, snap.Owner, snap.Repository, now)
	fmt.Fprintf(w, "Viewer: %s\n", view.Viewer.DisplayName())
	if !view.Ready() {
		return nil
	}

	fmt.Fprintf(w, "\n%s\n", view.Repository)
	if view.Description != "" {
		fmt.Fprintln(w, view.Description)
	}
	if view.URL != "" {
		fmt.Fprintln(w, view.URL)
	}
	fmt.Fprintln(w)
	for _, c := range view.Cards {
		fmt.Fprintf(w, "%-18s %s\n", c.Title+":", c.Value)
	}

	fmt.Fprintf(w, "\nIssues (%d open)\n%s\n", view.OpenIssues, tui.Chart(view.Series.Issues, 80, 5))
	fmt.Fprintf(w, "\nPull Requests (%d open)\n%s\n", view.OpenPullRequests, tui.Chart(view.Series.PullRequests, 80, 5))
	return nil
}
