package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/nextcommerce/storedash/pkg/quota"
)

func newQuotaCommand() *Command {
	cmd := &Command{
		Name:        "quota",
		Description: "Evaluate an account's order allowance",
		Flags:       flag.NewFlagSet("quota", flag.ContinueOnError),
		Run:         runQuota,
	}

	cmd.Flags.Int("used", 0, "Orders used")
	cmd.Flags.Int("limit", 150, "Order limit")
	cmd.Flags.Bool("paid", false, "Account is on a paid plan")
	cmd.Flags.Bool("json", false, "Print JSON")

	return cmd
}

func runQuota(args []string, out io.Writer) error {
	cmd := newQuotaCommand()
	cmd.Flags.SetOutput(out)
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	used, err := strconv.Atoi(cmd.Flags.Lookup("used").Value.String())
	if err != nil {
		return fmt.Errorf("invalid --used: %w", err)
	}
	limit, err := strconv.Atoi(cmd.Flags.Lookup("limit").Value.String())
	if err != nil {
		return fmt.Errorf("invalid --limit: %w", err)
	}
	paid := cmd.Flags.Lookup("paid").Value.String() == "true"

	state := quota.Evaluate(used, limit, paid)
	if cmd.Flags.Lookup("json").Value.String() == "true" {
		return writeJSON(out, state)
	}

	fmt.Fprintf(out, "Plan:      %s\n", state.Plan)
	fmt.Fprintf(out, "Usage:     %d/%d (%.1f%%)\n", state.Used, state.Limit, state.Ratio)
	fmt.Fprintf(out, "Remaining: %d\n", state.Remaining)
	if state.Degenerate {
		fmt.Fprintln(out, "Warning:   account has no order limit configured")
	}
	if state.LimitReached {
		fmt.Fprintf(out, "Limit reached, upgrade at %s\n", state.UpgradeURL)
	}
	return nil
}
