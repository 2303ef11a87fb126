package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFlag    string
	configFlag string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "blogctl [command] [flags]",
	Short:         "blogctl: operator tools for the blog API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&envFlag, "env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	RootCmd.PersistentFlags().StringVar(&configFlag, "config", "./config.toml", "path for the TOML config file")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
