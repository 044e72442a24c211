package main

import (
	"fmt"
	"os"

	"github.com/aretw0/tendril/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tendril",
	Short: "Tendril runs XML scripts made of pluggable tags",
	Long: `Tendril compiles XML documents into scripts whose namespaced elements are
tags from pluggable libraries, and runs them against variables to produce markup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "Directory containing the tendril project")
	flags.String("config", "", "Config file (default <dir>/tendril.yaml)")
	flags.String("source", "", "Script source: file, loam or redis (overrides config)")
	flags.Bool("strict", false, "Fail on namespaced tags no library provides")
	flags.Bool("debug", false, "Log every tag execution to stderr")
	flags.String("vars", "", "YAML or JSON file with variables")
	flags.StringArrayP("set", "s", nil, "Variable as name=value (repeatable)")
}

// openProject builds a project from the persistent flags.
func openProject(cmd *cobra.Command, metrics bool) (*cli.Project, error) {
	flags := cmd.Flags()
	opts := cli.Options{Metrics: metrics}
	opts.Dir, _ = flags.GetString("dir")
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Source, _ = flags.GetString("source")
	opts.Debug, _ = flags.GetBool("debug")
	opts.VarsFile, _ = flags.GetString("vars")
	opts.Vars, _ = flags.GetStringArray("set")
	if flags.Changed("strict") {
		strict, _ := flags.GetBool("strict")
		opts.Strict = &strict
	}
	return cli.Open(opts)
}
