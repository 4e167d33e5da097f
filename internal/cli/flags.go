package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/dirmirror/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"log at debug level",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"only report skipped entries and errors",
	)
}

// MirrorFlags holds the flags shared by the mirror commands
type MirrorFlags struct {
	Source     string
	Dest       string
	Interval   int
	BufferSize int
	Watch      bool
	Output     string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
	NoLog     bool
	// compare only
	DiffReport string
	DiffFormat string
}

var mirrorFlags MirrorFlags

// addPairFlags adds the required source and destination flags
func addPairFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&mirrorFlags.Source, "source", "s", "", "source directory path (required)")
	cmd.Flags().StringVarP(&mirrorFlags.Dest, "dest", "d", "", "destination directory path (required)")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("dest")
}

// addOutputFlags adds flags overriding the output and logging configuration
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&mirrorFlags.BufferSize, "buffer-size", 0, "content comparison buffer in bytes (default from config)")
	cmd.Flags().StringVarP(&mirrorFlags.Output, "output", "o", "", "output format: human, json (default from config)")

	// Logging flags
	cmd.Flags().StringVar(&mirrorFlags.LogFile, "log-file", "", "rotating log file (default from config)")
	cmd.Flags().StringVar(&mirrorFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&mirrorFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&mirrorFlags.NoLog, "no-log", false, "disable the log file")
}
