package cli

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nextcommerce/storedash/pkg/plans"
)

func newPlansCommand() *Command {
	cmd := &Command{
		Name:        "plans",
		Description: "List the upgrade plans",
		Flags:       flag.NewFlagSet("plans", flag.ContinueOnError),
		Run:         runPlans,
	}

	cmd.Flags.Bool("json", false, "Print JSON instead of a table")

	return cmd
}

func runPlans(args []string, out io.Writer) error {
	cmd := newPlansCommand()
	cmd.Flags.SetOutput(out)
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	list := plans.DefaultCatalog().List()
	if cmd.Flags.Lookup("json").Value.String() == "true" {
		return writeJSON(out, list)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tORDERS\tBADGE")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%s\n", p.ID, p.Title, p.PriceDisplay, p.Currency, p.OrderLimit, p.Badge)
	}
	return tw.Flush()
}
