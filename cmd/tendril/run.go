package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/cli"
	"github.com/aretw0/tendril/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a script and print its output",
	Long: `Runs the script with the project variables and writes the output to stdout.
With --watch the script runs again whenever the scripts change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd, false)
		if err != nil {
			return err
		}

		opts := cli.RunOptions{}
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Render, _ = cmd.Flags().GetBool("render")
		opts.Style, _ = cmd.Flags().GetString("style")
		watchMode, _ := cmd.Flags().GetBool("watch")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watchMode {
			if !opts.JSON {
				tui.PrintBanner(os.Stderr)
				p.Logger.Info("tendril", "version", tendril.Version)
			}
			return cli.RunWatch(ctx, p, args[0], opts, os.Stdout)
		}
		return cli.Execute(ctx, p, args[0], opts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Write output events as NDJSON")
	runCmd.Flags().Bool("render", false, "Render the text output as markdown")
	runCmd.Flags().String("style", "", "Markdown style for --render (dark, light, notty)")
	runCmd.Flags().BoolP("watch", "w", false, "Run again on every change (development mode)")
}
