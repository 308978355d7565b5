//
// Copyright (C) 2025 contentflow.  All rights reserved.
//
// contentflow is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/contentflow/contentflow/log"
)

var rootCmd = &cobra.Command{
	Use:   "contentflow",
	Short: "contentflow runs the interactive content production workflow",
	Long: `contentflow plans, generates, reviews and publishes social media content
through a resumable workflow driven by human approval at each stage.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		log.SetLevel(level)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}
