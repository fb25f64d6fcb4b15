package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/andrewarrow/scenecast/internal/scenarios"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "scenecast",
	Short: "Record a browser scenario and compose it into a narrated demo video",
	Long: `scenecast drives a headless browser through a recorded scenario script,
capturing frames and narration as it goes, then composites the result -
title slides, cursor motion, transitions, and a single voiceover track -
into a finished video file.`,
}

// Execute runs the root command, exiting the process with status 1 on any
// failure (spec §6: "Exit code 0 on success, 1 on any failure").
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scenecast: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a scenecast.yaml config file")
	rootCmd.AddCommand(composeCmd)
}
