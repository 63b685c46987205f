package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Git0Shuai/bevy"
	"github.com/Git0Shuai/bevy/internal/presentation/graph"
	"github.com/Git0Shuai/bevy/internal/presentation/tui"
	"github.com/Git0Shuai/bevy/pkg/adapters/memory"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an interactive state machine session",
	Long: `Starts an interactive session against the built-in demo graph (or a manifest)
where you queue state requests and advance passes by hand.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifestPath, _ := cmd.Flags().GetString("manifest")
		debug, _ := cmd.Flags().GetBool("debug")
		if err := runDemo(cmd.Context(), manifestPath, debug); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(ctx context.Context, manifestPath string, debug bool) error {
	// The session keeps its whole transition history for the journal command.
	journal := memory.NewJournal()
	app, err := buildApp(manifestPath,
		bevy.WithLogger(createLogger(debug)),
		bevy.WithJournal(journal),
	)
	if err != nil {
		return err
	}

	// Banner and prompts only when a human is attached.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		tui.PrintBanner()
		fmt.Println("Type 'help' for commands.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "set":
			if len(fields) != 3 {
				fmt.Println("usage: set <state> <value>")
				continue
			}
			if err := app.RequestByName(fields[1], fields[2]); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("Queued %s = %s (applies on next tick)\n", fields[1], fields[2])
		case "tick":
			if err := app.Tick(ctx); err != nil {
				fmt.Printf("Tick finished with errors: %v\n", err)
			}
			records := app.Records()
			if len(records) == 0 {
				fmt.Printf("Pass %d: no transitions\n", app.PassCount())
				continue
			}
			for _, r := range records {
				fmt.Println(r)
			}
		case "state":
			printStates(app)
		case "graph":
			fmt.Print(graph.GenerateMermaid(app.Descriptors(), overlay(app)))
		case "journal":
			limit := 10
			if len(fields) == 2 {
				n, err := strconv.Atoi(fields[1])
				if err != nil || n < 1 {
					fmt.Println("usage: journal [count]")
					continue
				}
				limit = n
			}
			records, err := journal.List(ctx, limit)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if len(records) == 0 {
				fmt.Println("No transitions recorded yet.")
				continue
			}
			for _, r := range records {
				fmt.Println(r)
			}
		case "help":
			printHelp()
		case "exit", "quit":
			fmt.Println("Bye!")
			return scanner.Err()
		default:
			fmt.Printf("Unknown command %q. Type 'help' for commands.\n", fields[0])
		}
	}
	return scanner.Err()
}

func printStates(app *bevy.App) {
	for _, d := range app.Descriptors() {
		value := "<absent>"
		if v, ok := app.Value(d.Name); ok {
			value = v
		}
		fmt.Printf("%-12s %-9s %s\n", d.Name, d.Variant, value)
	}
}

func overlay(app *bevy.App) *graph.Overlay {
	values := make(map[string]string)
	for _, d := range app.Descriptors() {
		if v, ok := app.Value(d.Name); ok {
			values[d.Name] = v
		}
	}
	return &graph.Overlay{Values: values}
}

func printHelp() {
	fmt.Println(`Commands:
  set <state> <value>  queue a value change for a primary state
  tick                 run one pass and print its transitions
  state                print every state and its current value
  graph                print the dependency graph as Mermaid
  journal [count]      print the most recent transitions (default 10)
  quit                 leave the session`)
}
