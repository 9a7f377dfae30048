package commands

import (
	"github.com/jrsteele09/go-github-dashboard/oauth2"
	"github.com/jrsteele09/go-github-dashboard/tui"
	"github.com/spf13/cobra"
)

var configPath string

// NewRootCommand builds the dashboard command tree. Without a subcommand it
// runs the terminal dashboard.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "dashboard",
		Short: "GitHub repository dashboard",
		Long: `dashboard signs in with GitHub through the token exchange proxy and shows
stats and open issue and pull request history of the selected repository.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file overriding environment variables")

	root.AddCommand(NewLoginCommand())
	root.AddCommand(NewLogoutCommand())
	root.AddCommand(NewSelectCommand())
	root.AddCommand(NewShowCommand())
	return root
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(ctx, a.session, oauth2.Callback{}, a.waitForLogin)
}
