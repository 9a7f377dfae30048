package commands

import (
	"fmt"

	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/jrsteele09/go-github-dashboard/selection"
	"github.com/spf13/cobra"
)

// NewSelectCommand creates the select command
func NewSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select <Organization|User> <owner> [repository]",
		Short: "Choose the repository shown on the dashboard",
		Long: `Saves the repository shown on the dashboard.
With an owner only: lists the repositories of that owner
With owner and repository: stores the selection and loads it`,
		Args: cobra.RangeArgs(2, 3),
		RunE: runSelect,
	}
}

func runSelect(cmd *cobra.Command, args []string) error {
	typ, err := selection.ParseType(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.session.Evaluate(ctx, oauth2.Callback{}); err != nil {
		return err
	}
	if !a.session.Snapshot().State.Authorized() {
		return fmt.Errorf("not signed in, run `dashboard login` first")
	}

	out := cmd.OutOrStdout()
	if len(args) == 2 {
		names, err := a.session.Repositories(ctx, typ, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Repositories of %s:\n", args[1])
		for _, n := range names {
			fmt.Fprintf(out, "  %s\n", n)
		}
		return nil
	}

	sel := selection.Selector{Type: typ, Owner: args[1], Repository: args[2]}
	if err := a.session.SelectRepository(ctx, sel); err != nil {
		return err
	}
	snap := a.session.Snapshot()
	fmt.Fprintf(out, "Selected %s (%s)\n", sel, snap.State)
	return alertError(snap)
}
