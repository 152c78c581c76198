// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ushiradineth/koano/internal/app"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "koano",
	Short: "Calendar grid engine",
	Long:  `koano is the interactive time-grid engine of the koano calendar: a gateway serving the paged day grid, pointer-driven event editing, and optimistic persistence against the event backend.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cfgFile)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export the loaded event window as iCalendar",
	Long: `Fetch the configured event window from the backend and write it as
an iCalendar (.ics) file. Writes to stdout when FILE is omitted or "-".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "-"
		if len(args) > 0 {
			path = args[0]
		}
		return app.ExportICS(cfgFile, path)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		app.PrintVersion()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validation error: %w", err)
		}
		fmt.Println("Configuration is valid")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration (sensitive values masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg.PrintMasked()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")

	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
