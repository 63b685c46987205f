package main

import (
	"fmt"
	"os"

	"github.com/Git0Shuai/bevy/internal/presentation/graph"
	"github.com/Git0Shuai/bevy/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [manifest]",
	Short: "Export the state graph visualization",
	Long: `Builds the state graph and outputs its dependency structure.

Formats:
- mermaid (default): a Mermaid diagram (graph TD) for embedding in docs.
- markdown: a report with a state table and the diagram, rendered in place
  when stdout is a terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifestPath, _ := cmd.Flags().GetString("manifest")
		if !cmd.Flags().Changed("manifest") && len(args) > 0 {
			manifestPath = args[0]
		}
		format, _ := cmd.Flags().GetString("format")

		app, err := buildApp(manifestPath)
		if err != nil {
			fmt.Printf("Error building graph: %v\n", err)
			os.Exit(1)
		}

		switch format {
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(app.Descriptors(), overlay(app)))
		case "markdown":
			report := graph.GenerateMarkdown(app.Descriptors(), overlay(app))
			if term.IsTerminal(int(os.Stdout.Fd())) {
				render := tui.NewRenderer()
				if out, err := render(report); err == nil {
					fmt.Print(out)
					return
				}
			}
			fmt.Print(report)
		default:
			fmt.Printf("Unknown format: %s. Supported: mermaid, markdown\n", format)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("format", "mermaid", "Output format: 'mermaid' or 'markdown'")
}
