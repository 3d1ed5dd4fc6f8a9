package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gitid/internal/doctor"
	"gitid/internal/gitrepo"
	"gitid/internal/keys"
	"gitid/internal/logging"
	"gitid/internal/profile"
	"gitid/internal/reconcile"
	"gitid/internal/remote"
	"gitid/internal/sshconf"
	"gitid/internal/tui/chooser"
)

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved profile and the current repository's binding",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetDefault()
		folder, _ := cmd.Flags().GetString("folder")

		store, err := loadStore(logger)
		if err != nil {
			return err
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}

		resolved := profile.Resolve(cwd, store, folder)
		printStatus("Config", "%s", profile.ConfigPath())
		if store.RootFolder != "" {
			printStatus("Work folder", "%s", store.RootFolder)
		} else {
			printStatus("Work folder", "(not set)")
		}
		printStatus("Resolved profile", "%s", resolved)

		repo, err := gitrepo.Open(cwd, logger)
		if err != nil {
			if errors.Is(err, gitrepo.ErrNotARepository) {
				printStatus("Repository", "(not inside one)")
				return nil
			}
			return err
		}
		printStatus("Repository", "%s", repo.Root())

		url, err := repo.RemoteURL(gitrepo.DefaultRemote)
		if err != nil {
			if errors.Is(err, gitrepo.ErrNoRemote) {
				printStatus("Remote", "(none)")
				return nil
			}
			return err
		}
		printStatus("Remote", "%s", url)

		cls := remote.Classify(remote.NormalizeScheme(url), store)
		switch cls.Binding {
		case remote.Bound:
			printStatus("Binding", "bound to %s", cls.Profile)
		case remote.BareUpstream:
			printStatus("Binding", "bare upstream, run gitid to bind")
		default:
			printStatus("Binding", "unrecognized host, not managed")
		}

		name, _ := repo.ConfigGet("user.name")
		email, _ := repo.ConfigGet("user.email")
		if name == "" && email == "" {
			printStatus("Identity", "(not set in this repository)")
		} else {
			printStatus("Identity", "%s <%s>", name, email)
		}

		sshPath, err := sshconf.DefaultPath()
		if err != nil {
			return err
		}
		drifts, err := sshconf.Inspect(store, sshPath)
		if err != nil {
			return err
		}
		stale := 0
		for _, d := range drifts {
			if !d.InSync() {
				stale++
			}
		}
		if stale == 0 {
			printStatus("SSH config", "in sync")
		} else {
			printStatus("SSH config", "%d host(s) out of sync, run gitid ssh-config --apply", stale)
		}
		return nil
	},
}

// --- switch ---

var switchCmd = &cobra.Command{
	Use:   "switch <work|personal>",
	Short: "Bind the current repository to a specific profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetDefault()
		target := strings.ToLower(strings.TrimSpace(args[0]))
		if target != profile.Work && target != profile.Personal {
			return fmt.Errorf("unknown profile %q, expected %q or %q", args[0], profile.Work, profile.Personal)
		}

		store, err := loadStore(logger)
		if err != nil {
			return err
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}
		repo, err := gitrepo.Open(cwd, logger)
		if err != nil {
			return err
		}

		engine := reconcile.NewEngine(store, repo, logger)
		url, err := repo.RemoteURL(gitrepo.DefaultRemote)
		if err != nil {
			return err
		}

		res, err := engine.ReconcileURL(remote.NormalizeScheme(url), reconcile.Fixed(target))
		if err != nil {
			return err
		}
		reportResult(res)
		return nil
	},
}

// --- fix-remote ---

var fixRemoteCmd = &cobra.Command{
	Use:   "fix-remote",
	Short: "Rewrite an https origin remote to the bound SSH form",
	Long: `Rewrite the origin remote from https to the scp-style SSH form and bind
it to the resolved profile. Remotes pointing at unrecognized hosts are
left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetDefault()
		folder, _ := cmd.Flags().GetString("folder")
		ask, _ := cmd.Flags().GetBool("ask")

		store, err := loadStore(logger)
		if err != nil {
			return err
		}

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine working directory: %w", err)
		}
		repo, err := gitrepo.Open(cwd, logger)
		if err != nil {
			return err
		}

		url, err := repo.RemoteURL(gitrepo.DefaultRemote)
		if err != nil {
			return err
		}

		normalized := remote.NormalizeScheme(url)
		if normalized != url {
			printStep("Converting %s to SSH form", url)
		}

		engine := reconcile.NewEngine(store, repo, logger)
		resolved := profile.Resolve(cwd, store, folder)
		choose := reconcile.Fixed(resolved)
		if ask {
			choose = chooser.Interactive(store, resolved, logger)
		}
		res, err := engine.ReconcileURL(normalized, choose)
		if err != nil {
			return err
		}
		reportResult(res)
		return nil
	},
}

// --- clone ---

var cloneCmd = &cobra.Command{
	Use:   "clone <url> [directory]",
	Short: "Clone a repository with the right profile already applied",
	Long: `Clone a repository, rewriting the URL to the profile's SSH host alias and
applying the profile's identity inside the fresh clone. The profile is
resolved from the destination directory unless --profile is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetDefault()
		explicit, _ := cmd.Flags().GetString("profile")
		folder, _ := cmd.Flags().GetString("folder")

		store, err := loadStore(logger)
		if err != nil {
			return err
		}

		url := remote.NormalizeScheme(args[0])
		dir := ""
		if len(args) == 2 {
			dir = args[1]
		} else {
			dir = repositoryName(url)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("invalid destination %q: %w", dir, err)
		}

		cls := remote.Classify(url, store)
		if cls.Binding == remote.Unrecognized {
			// Not ours to manage: clone as-is, apply no identity.
			printWarning("Host not managed by any profile, cloning unchanged")
			_, err := gitrepo.Clone(args[0], abs, profile.Profile{}, logger)
			return err
		}

		target := explicit
		if target == "" {
			target = profile.Resolve(abs, store, folder)
		}
		p, ok := store.Get(target)
		if !ok {
			return fmt.Errorf("unknown profile %q, expected %q or %q", target, profile.Work, profile.Personal)
		}
		if !p.Configured() {
			return fmt.Errorf("profile %q has no git identity configured - run setup first", target)
		}

		bound, err := remote.Rewrite(url, target, store)
		if err != nil {
			return err
		}

		printStep("Cloning with the %s profile", target)
		if _, err := gitrepo.Clone(bound, abs, p, logger); err != nil {
			return err
		}
		printSuccess("Cloned into %s", abs)
		printStatus("Remote", "%s", bound)
		return nil
	},
}

// repositoryName derives the destination directory from a clone URL, the
// same way git does: last path segment without the .git suffix.
func repositoryName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	if i := strings.LastIndexAny(trimmed, ":/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return "repository"
	}
	return trimmed
}

// --- setup ---

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the interactive setup wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetDefault()

		// Prefill from the existing configuration when re-running.
		existing, err := profile.Load()
		if err != nil && !errors.Is(err, profile.ErrNotConfigured) {
			return err
		}

		if err := runSetupWizard(existing, logger); err != nil {
			return err
		}
		printSuccess("Configuration saved to %s", profile.ConfigPath())
		return nil
	},
}

// --- keygen ---

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the per-profile SSH keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetDefault()
		force, _ := cmd.Flags().GetBool("force")
		only, _ := cmd.Flags().GetString("profile")

		store, err := loadStore(logger)
		if err != nil {
			return err
		}

		generated := 0
		for _, p := range store.Profiles() {
			if only != "" && p.Name != only {
				continue
			}
			path, created, err := keys.Generate(p, force, logger)
			if err != nil {
				return fmt.Errorf("generating key for %s: %w", p.Name, err)
			}
			if created {
				printSuccess("Generated %s key at %s", p.Name, path)
				generated++
			} else {
				printStatus(p.Name, "key already exists at %s", path)
			}
		}

		if generated > 0 {
			printStep("Run 'gitid ssh-config --apply' so the host aliases use the new keys")
		}
		return nil
	},
}

// --- ssh-config ---

var sshConfigCmd = &cobra.Command{
	Use:   "ssh-config",
	Short: "Print or apply the managed SSH client config",
	Long: `Render the SSH config stanzas that make the profile host aliases work.
By default the rendered file is printed; --apply writes it to the managed
file under ~/.ssh, which your ~/.ssh/config should Include.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetDefault()
		apply, _ := cmd.Flags().GetBool("apply")
		include, _ := cmd.Flags().GetBool("include")

		store, err := loadStore(logger)
		if err != nil {
			return err
		}

		path, err := sshconf.DefaultPath()
		if err != nil {
			return err
		}

		if include {
			fmt.Println(sshconf.IncludeLine(path))
			return nil
		}

		if apply {
			if err := sshconf.Write(store, path, logger); err != nil {
				return err
			}
			printSuccess("SSH config written to %s", path)
			printStep("Ensure ~/.ssh/config contains: %s", sshconf.IncludeLine(path))
			return nil
		}

		fmt.Print(sshconf.Render(store))
		return nil
	},
}

// --- doctor ---

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment gitid depends on",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := profile.Load()
		if err != nil && !errors.Is(err, profile.ErrNotConfigured) {
			return err
		}

		sshPath, err := sshconf.DefaultPath()
		if err != nil {
			return err
		}

		report := doctor.Examine(store, sshPath)
		for _, c := range report.Checks {
			if c.OK {
				fmt.Printf("  %s %s  %s\n", colorize(colorGreen, "✓"), c.Name, c.Detail)
			} else {
				fmt.Printf("  %s %s  %s\n", colorize(colorRed, "✗"), c.Name, c.Detail)
			}
		}

		if !report.Healthy() {
			return fmt.Errorf("environment is not healthy")
		}
		printSuccess("Everything looks good")
		return nil
	},
}

func init() {
	statusCmd.Flags().String("folder", "", "treat this folder as the work folder for this run only")
	fixRemoteCmd.Flags().String("folder", "", "treat this folder as the work folder for this run only")
	fixRemoteCmd.Flags().Bool("ask", false, "choose the profile interactively instead of by location")
	cloneCmd.Flags().String("profile", "", "profile to clone with instead of resolving by location")
	cloneCmd.Flags().String("folder", "", "treat this folder as the work folder for this run only")
	keygenCmd.Flags().Bool("force", false, "overwrite existing keys")
	keygenCmd.Flags().String("profile", "", "generate only this profile's key")
	sshConfigCmd.Flags().Bool("apply", false, "write the managed SSH config file")
	sshConfigCmd.Flags().Bool("include", false, "print the Include line for ~/.ssh/config")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(fixRemoteCmd)
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(sshConfigCmd)
	rootCmd.AddCommand(doctorCmd)
}
