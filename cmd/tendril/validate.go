package main

import (
	"fmt"

	"github.com/aretw0/tendril/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [script...]",
	Short: "Compile scripts and report syntax errors",
	Long:  `Compiles the given scripts, or every script the source lists, without running them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd, false)
		if err != nil {
			return err
		}
		n, err := cli.Validate(cmd.Context(), p, args)
		if err != nil {
			return fmt.Errorf("validation failed:\n%w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d script(s) valid\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
