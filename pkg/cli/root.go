package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string, out io.Writer) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command
func NewRootCommand() *Command {
	root := &Command{
		Name:        "storedash-cli",
		Description: "storedash - merchant dashboard support CLI",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("storedash-cli", flag.ExitOnError),
	}

	// Add subcommands
	root.Subcommands["plans"] = newPlansCommand()
	root.Subcommands["quota"] = newQuotaCommand()
	root.Subcommands["summary"] = newSummaryCommand()
	root.Subcommands["deeplink"] = newDeepLinkCommand()

	return root
}

// Execute runs the command with the process arguments
func (c *Command) Execute() error {
	return c.ExecuteArgs(os.Args[1:], os.Stdout)
}

// ExecuteArgs runs the command with args, writing output to out
func (c *Command) ExecuteArgs(args []string, out io.Writer) error {
	if len(args) == 0 {
		return c.usage(out)
	}

	// Check for help flag
	if args[0] == "-h" || args[0] == "--help" {
		return c.usage(out)
	}

	// Check for subcommand
	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:], out)
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage(out io.Writer) error {
	fmt.Fprintf(out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
