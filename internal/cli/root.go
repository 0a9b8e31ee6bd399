// Package cli implements the soactl command line.
package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

type app struct {
	v   *viper.Viper
	cfg *Config
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "soactl",
		Short: "Inspect structure-of-arrays containers",
		Long: color.CyanString(`soactl - structure-of-arrays container driver

Builds containers from sample record batches and prints their views,
dense field arrays and storage layout.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			file, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			a.cfg, err = loadConfig(a.v, file)
			return err
		},
	}

	if err := bindFlags(a.v, rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newDemoCommand(a))
	rootCmd.AddCommand(newLayoutCommand(a))

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "soactl version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
