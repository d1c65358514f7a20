package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"crate2bib/internal/config"
	"crate2bib/internal/logging"
	"crate2bib/internal/resolver"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the state shared by every subcommand once the persistent
// flags have been applied.
type app struct {
	configPath string
	logLevel   string
	userAgent  string
	noCache    bool

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command { return newRootCmdWith(&app{}) }

func newRootCmdWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "crate2bib",
		Short:         "Create BibLaTeX entries for Rust crates",
		Long:          "Creates BibLaTeX entries given a crate name and an optional semver requirement.\nEntries come from crates.io and from CITATION.cff or citation.bib files in the crate's repository.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	// Persistent flags -> Config
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", os.Getenv("CRATE2BIB_CONFIG"), "Config file (.yaml, .json or .toml); defaults to CRATE2BIB_CONFIG")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error|off (overrides config)")
	pf.StringVar(&a.userAgent, "user-agent", "", "User agent sent to crates.io (overrides config)")
	pf.BoolVar(&a.noCache, "no-cache", false, "Disable the on-disk crates.io response cache")

	root.AddCommand(newGetCmd(a), newDepsCmd(a), newServeCmd(a), newVersionCmd(), newCompletionCmd(root))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("user-agent") && a.userAgent != "" {
		cfg.UserAgent = a.userAgent
	}
	if a.noCache {
		cfg.NoCache = true
		cfg.CachePath = ""
	}
	a.cfg = cfg
	a.log = logging.New(logging.Options{
		App:   "crate2bib",
		Level: cfg.LogLevel,
		Out:   cmd.ErrOrStderr(),
	})
	return nil
}

// module builds an uninitialized resolver from the effective configuration.
func (a *app) module() *resolver.Module {
	return resolver.New(resolver.Config{
		UserAgent:    a.cfg.UserAgent,
		CratesIOURL:  a.cfg.CratesIOURL,
		GitHubRawURL: a.cfg.GitHubRawURL,
		Branch:       a.cfg.Branch,
		Filenames:    a.cfg.Filenames,
		Interval:     a.cfg.RequestInterval(),
		CachePath:    a.cfg.CachePath,
		CacheTTL:     a.cfg.CacheTTL(),
		Logger:       a.log,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "crate2bib", version)
			return nil
		},
	}
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	noSetup := func(cmd *cobra.Command, args []string) error { return nil }
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell", PersistentPreRunE: noSetup}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}})
	return completionCmd
}
