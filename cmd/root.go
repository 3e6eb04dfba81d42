package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loog-project/diffy/internal/service"
	bboltStore "github.com/loog-project/diffy/internal/store/bbolt"
	"github.com/loog-project/diffy/internal/util"
)

var (
	// persistent flags
	cfgFile          string
	storeFile        string
	enableDebugMode  bool
	truncateDebugLog bool

	// shared local flags
	noDurableSync bool
	disableCache  bool
	filterExpr    string
)

var rootCmd = &cobra.Command{
	Use:   "diffy",
	Short: "Structural diffs and revision history for JSON and YAML documents",
	Long: `Diffy computes minimal structural patches between JSON or YAML documents
and records every change of a document as a revision. You can explore
those revisions on the command line or in a Terminal UI.`,
	SilenceUsage: true,
}

var setupLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
	Timestamp().
	Logger()

// closeLog closes the debug log file, if any.
var closeLog = func() {}

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	cobra.OnInitialize(initConfig)

	// global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.diffy.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeFile, "store", "diffy.db",
		"Path to the revision store")
	rootCmd.PersistentFlags().BoolVar(&enableDebugMode, "debug", false,
		"Enable debug mode, which will print additional information to the debug.log file")
	rootCmd.PersistentFlags().BoolVar(&truncateDebugLog, "truncate-debug", false,
		"Truncate the debug.log file on startup, if it exists")

	// allow some flags to be set via environment variables / config file
	mustBind("store",
		viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store")))
	mustBind("debug",
		viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")))
	mustBind("truncate-debug",
		viper.BindPFlag("truncate-debug", rootCmd.PersistentFlags().Lookup("truncate-debug")))

	rootCmd.PersistentPostRun = func(*cobra.Command, []string) {
		closeLog()
	}
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".diffy")
	}

	viper.SetEnvPrefix("diffy")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		setupLog.Info().Msgf("Using config file: %s", viper.ConfigFileUsed())
	}
}

// setupLogging points the global logger at debug.log in debug mode. Without
// debug mode, commands drawing a TUI log nothing and all others log to stderr.
func setupLogging(tui bool) {
	if !viper.GetBool("debug") {
		if tui {
			// by default, we shouldn't log anything as this would break our TUI.
			log.Logger = zerolog.Nop()
		} else {
			log.Logger = setupLog.Level(zerolog.InfoLevel)
		}
		return
	}

	fileMode := os.O_CREATE | os.O_WRONLY
	if viper.GetBool("truncate-debug") {
		fileMode |= os.O_TRUNC
	} else {
		fileMode |= os.O_APPEND
	}
	logFile, err := os.OpenFile("debug.log", fileMode, 0o644)
	if err != nil {
		setupLog.Fatal().Err(err).Msg("Error opening debug log file")
	}
	closeLog = func() {
		if err := logFile.Close(); err != nil {
			setupLog.Error().Err(err).Msg("Error closing debug log file")
		}
	}

	log.Logger = zerolog.New(logFile).With().
		Timestamp().
		Caller().
		Logger().
		Level(zerolog.DebugLevel)
}

// addStoreFlags registers the flags of commands committing revisions.
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "All()",
		"Filter expression to select which documents to store (default: all documents)")
	cmd.Flags().BoolVar(&noDurableSync, "no-durable-sync", false,
		"Skip fsync on every commit to improve throughput (unsafe on crashes)")
	cmd.Flags().BoolVar(&disableCache, "disable-cache", false,
		"Disable in-memory cache layer for the latest document states")

	// the flags are shared between commands, so bind the ones of the running command
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		for _, name := range []string{"filter", "no-durable-sync", "disable-cache"} {
			mustBind(name, viper.BindPFlag(name, cmd.Flags().Lookup(name)))
		}
	}
}

// openService opens the revision store and wraps it in a tracker service.
// With [withFilter] unset, all documents are accepted.
func openService(withFilter bool) (*service.TrackerService, error) {
	var prog *vm.Program
	if withFilter {
		expression := viper.GetString("filter")
		log.Debug().Str("expression", expression).Msg("Compiling filter expression...")

		var err error
		prog, err = util.CompileFilter(expression)
		if err != nil {
			return nil, err
		}
	}

	path := viper.GetString("store")
	log.Debug().Str("store-file", path).Msg("Preparing revision store...")
	ds, err := bboltStore.New(path, nil, !viper.GetBool("no-durable-sync"))
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return service.NewTrackerService(ds, !viper.GetBool("disable-cache"), prog), nil
}

func mustBind(flagName string, err error) {
	if err != nil {
		log.Fatal().Err(err).Msgf("Failed to bind flag %s", flagName)
	}
}
