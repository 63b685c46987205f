package main

import (
	"fmt"
	"strings"

	"github.com/Git0Shuai/bevy"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bevy",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bevy version %s\n", strings.TrimSpace(bevy.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
