package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bevy",
	Short: "Bevy is a hierarchical state machine runtime",
	Long: `Bevy runs dependency graphs of application states: primary states you set
directly, sub states activated by conditions on their parent, and computed
states derived from other states. Changes are requested at any time and
applied in deterministic passes.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("manifest", "", "Path to a state manifest (YAML or JSON); empty uses the built-in demo graph")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}
