package main

import (
	"fmt"
	"os"

	"github.com/Git0Shuai/bevy/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [manifest]",
	Short: "Check a state manifest for consistency",
	Long:  `Parses a manifest and reports duplicate names, dangling references, dependency cycles and malformed values.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Manifest is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("manifest")
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no manifest given: pass a path or --manifest")
	}

	m, err := schema.Load(path)
	if err != nil {
		return err
	}
	return m.Validate()
}
