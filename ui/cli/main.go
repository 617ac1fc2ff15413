// Copyright (c) 2026 Protomap Team
// Protomap - schema-aware object mapper
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root cobra command, loads configuration and opens the
// configured store before any subcommand runs.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/protomap/buildvars"
	"github.com/toeirei/protomap/internal/config"
	"github.com/toeirei/protomap/internal/i18n"
	"github.com/toeirei/protomap/internal/logging"
	"github.com/toeirei/protomap/internal/mapper"
	"github.com/toeirei/protomap/internal/store"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var (
	verbose   bool
	appConfig config.Config
	appStore  store.Store
	appMapper *mapper.Mapper
)

// storeFactory opens the store named by the config. Tests replace it.
var storeFactory = openStore

func openStore(c config.StoreConfig) (store.Store, error) {
	var st store.Store
	switch c.Type {
	case "memory":
		st = store.NewMemoryStore()
	default:
		bs, err := store.NewStoreFromDSN(c.Type, c.Dsn)
		if err != nil {
			return nil, err
		}
		st = bs
	}
	d, err := c.TimeoutDuration()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return store.WithTimeout(st, d), nil
}

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := config.Defaults()
	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, configPath)
	// A missing file is expected on first run; persist the defaults for the user.
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		} else if p, perr := config.GetConfigPath(false); perr == nil {
			logging.Debugf("%s", i18n.T("config.default_written", p))
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if appConfig.Store.Type == "" {
		appConfig.Store.Type = defaults["store.type"].(string)
	}
	if appConfig.Store.Dsn == "" {
		appConfig.Store.Dsn = defaults["store.dsn"].(string)
	}
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}

	logging.SetDebug(verbose || appConfig.Debug)
	store.SetDebug(verbose)
	i18n.Init(appConfig.Language)

	closeServices()
	st, err := storeFactory(appConfig.Store)
	if err != nil {
		return errors.New(i18n.T("config.error_init_store", err))
	}
	appStore = st
	appMapper = mapper.New(st)
	return nil
}

// closeServices releases the store opened by setupDefaultServices.
func closeServices() {
	if appStore != nil {
		if err := appStore.Close(); err != nil {
			logging.Errorf("closing store: %v", err)
		}
	}
	appStore = nil
	appMapper = nil
}

// Execute runs the CLI entrypoint. The root main package should call this
// function and handle process exit.
func Execute() error {
	defer closeServices()
	return NewRootCmd().Execute()
}

func applyDefaultFlags(cmd *cobra.Command) {
	// NewRootCmd may run several times in one process (tests), so never
	// redefine a flag.
	if cmd.PersistentFlags().Lookup("store.type") == nil {
		cmd.PersistentFlags().String("store.type", "sqlite", `Store type ("memory", "sqlite", "postgres", "mysql")`)
	}
	if cmd.PersistentFlags().Lookup("store.dsn") == nil {
		cmd.PersistentFlags().String("store.dsn", "./protomap.db", "Store connection string (DSN)")
	}
	if cmd.PersistentFlags().Lookup("store.timeout") == nil {
		cmd.PersistentFlags().String("store.timeout", "5s", "Timeout for every store call (0 disables)")
	}
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates a fresh root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protomap",
		Short: i18n.T("cli.short"),
		Long: `protomap stores typed objects in a key-value store. Object types are
described by prototypes kept in the store's "prototypes" bucket; every
object type gets a bucket of its own, keyed by the object's serial.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupDefaultServices(cmd, args)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeServices()
		},
	}
	cmd.Version = compositeVersion()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `CLI language ("en", "de")`)
	applyDefaultFlags(cmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		// No store is needed to print the version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "version: %s\n", v)
			_, _ = fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}

	cmd.AddCommand(
		newPingCmd(),
		newTypesCmd(),
		newSchemaCmd(),
		newNewCmd(),
		newAddCmd(),
		newUpdateCmd(),
		newGetCmd(),
		newListCmd(),
		newDeleteCmd(),
		newExportCmd(),
		versionCmd,
	)
	return cmd
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/protomap" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
