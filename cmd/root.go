package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// persistent flags
	cfgFile         string
	enableDebugMode bool
	debugLogFile    string
	dbPath          string
	noColor         bool
)

var rootCmd = &cobra.Command{
	Use:   "docdiff",
	Short: "Document differ producing MongoDB-style $set/$unset updates",
	Long: `docdiff computes the minimal $set / $unset update that turns one JSON, YAML
or MessagePack document into another. It can also record documents in a local
revision store, keeping snapshots plus updates, and restore any revision.`,
	SilenceUsage: true,
}

var setupLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
	Timestamp().
	Caller().
	Logger()

// debugLogCloser is the open --log-file, if any.
var debugLogCloser io.Closer

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	cobra.OnInitialize(initConfig)

	// global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.docdiff.yaml)")
	rootCmd.PersistentFlags().BoolVar(&enableDebugMode, "debug", false,
		"Enable debug logging to stderr or the --log-file")
	rootCmd.PersistentFlags().StringVar(&debugLogFile, "log-file", "",
		"Write debug logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "docdiff.db",
		"Path to the revision store used by commit, show, log and ls")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colors in the pretty and lines formats")

	// allow some flags to be set via environment variables / config file
	mustBind("debug",
		viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")))
	mustBind("log-file",
		viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file")))
	mustBind("db",
		viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db")))
	mustBind("no-color",
		viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color")))
}

func Execute() {
	err := rootCmd.Execute()
	if debugLogCloser != nil {
		_ = debugLogCloser.Close()
	}
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
		viper.SetConfigName(".docdiff")
	}

	viper.SetEnvPrefix("DOCDIFF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	configErr := viper.ReadInConfig()

	setupLogger()
	if configErr == nil {
		log.Debug().Msgf("Using config file: %s", viper.ConfigFileUsed())
	}
}

func setupLogger() {
	if !viper.GetBool("debug") {
		// the diff goes to stdout, so stay quiet by default
		log.Logger = zerolog.Nop()
		return
	}

	var out io.Writer = os.Stderr
	if path := viper.GetString("log-file"); path != "" {
		logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			setupLog.Fatal().Err(err).Msg("Error opening debug log file")
		}
		debugLogCloser = logFile
		out = logFile
	}
	log.Logger = zerolog.New(out).With().
		Timestamp().
		Caller().
		Logger().
		Level(zerolog.DebugLevel)
}

func mustBind(flagName string, err error) {
	if err != nil {
		setupLog.Fatal().Err(err).Msgf("Failed to bind flag %s", flagName)
	}
}
