// Package main is the gitid command line entry point.
//
// gitid keeps two git identities, work and personal, and applies the right
// one per repository: it resolves a profile from where the repository lives,
// rewrites the origin remote to the profile's SSH host alias and writes the
// identity into the repo-local git config. Run without arguments inside a
// repository it binds that repository; subcommands cover setup, status, key
// generation, the managed SSH config and cloning.
package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gitid/internal/doctor"
	"gitid/internal/gitrepo"
	"gitid/internal/logging"
	"gitid/internal/profile"
	"gitid/internal/reconcile"
	"gitid/internal/remote"
	"gitid/internal/tui/chooser"
	"gitid/internal/tui/setupmenu"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gitid",
	Short: "Switch git identities per repository",
	Long: `gitid binds repositories to one of two git identities, work or personal.

Run inside a repository it resolves the profile from the repository's
location, rewrites the origin remote to the profile's SSH host alias and
sets user.name, user.email and core.sshCommand in the repo-local config.
Re-running is always safe; an already bound repository is left untouched.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ask, _ := cmd.Flags().GetBool("ask")
		folder, _ := cmd.Flags().GetString("folder")
		return bindCurrentRepository(ask, folder)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("folder", "", "treat this folder as the work folder for this run only")
	rootCmd.Flags().Bool("ask", false, "choose the profile interactively instead of by location")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, chooser.ErrCancelled) {
			printError("%v", err)
		}
		os.Exit(1)
	}
}

// bindCurrentRepository is the default action: reconcile the repository
// containing the working directory against the resolved (or interactively
// chosen) profile.
func bindCurrentRepository(ask bool, folderOverride string) error {
	logger := logging.GetDefault()

	store, err := loadStore(logger)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot determine working directory: %w", err)
	}
	resolved := profile.Resolve(cwd, store, folderOverride)

	repo, err := gitrepo.Open(cwd, logger)
	if err != nil {
		return err
	}

	engine := reconcile.NewEngine(store, repo, logger)

	choose := reconcile.Fixed(resolved)
	if ask {
		choose = chooser.Interactive(store, resolved, logger)
	}

	// Classification and rewriting work on the scp-style form; https
	// remotes are converted at this boundary.
	url, err := repo.RemoteURL(gitrepo.DefaultRemote)
	if err != nil {
		return err
	}

	res, err := engine.ReconcileURL(remote.NormalizeScheme(url), choose)
	if err != nil {
		return err
	}

	reportResult(res)
	return nil
}

// loadStore loads the persisted configuration, running first-time setup when
// none exists yet. External binaries are checked once here so every command
// fails fast on a broken environment.
func loadStore(logger *logging.AppLogger) (*profile.Store, error) {
	if err := doctor.CheckDependencies(); err != nil {
		return nil, err
	}

	if profile.IsFirstRun() {
		printWarning("No configuration found, starting first-time setup")
		if err := runSetupWizard(nil, logger); err != nil {
			return nil, err
		}
	}

	return profile.Load()
}

// runSetupWizard runs the interactive setup, optionally prefilled from an
// existing store when reconfiguring.
func runSetupWizard(existing *profile.Store, logger *logging.AppLogger) error {
	menu := setupmenu.NewSetupModel(existing, logger)
	program := tea.NewProgram(menu, tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	m := final.(*setupmenu.SetupModel)
	if m.Cancelled {
		return fmt.Errorf("setup cancelled by user")
	}
	if m.State() != setupmenu.SetupStateComplete {
		return fmt.Errorf("setup did not complete")
	}
	return nil
}

func reportResult(res reconcile.Result) {
	switch res.Outcome {
	case reconcile.OutcomeUnchanged:
		printSuccess("Repository already bound to the %s profile", res.ProfileApplied)
	case reconcile.OutcomeBound:
		printSuccess("Repository bound to the %s profile", res.ProfileApplied)
		printStatus("Remote", "%s", res.NewURL)
	case reconcile.OutcomeSwitched:
		printSuccess("Repository switched to the %s profile", res.ProfileApplied)
		printStatus("Remote", "%s → %s", res.OldURL, res.NewURL)
	default:
		printWarning("Remote %s is not managed by gitid, left alone", res.OldURL)
	}
}
