package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/nextcommerce/storedash/pkg/money"
	"github.com/nextcommerce/storedash/pkg/orders"
)

func newSummaryCommand() *Command {
	cmd := &Command{
		Name:        "summary",
		Description: "Summarize an exported order list",
		Flags:       flag.NewFlagSet("summary", flag.ContinueOnError),
		Run:         runSummary,
	}

	cmd.Flags.String("file", "-", "Orders JSON file, - for stdin")
	cmd.Flags.Int("products", 0, "Product count of the store")
	cmd.Flags.Bool("json", false, "Print JSON")

	return cmd
}

// summaryOutput is the JSON form of the summary command
type summaryOutput struct {
	Stats   orders.Stats       `json:"stats"`
	Summary orders.Aggregation `json:"summary"`
}

func runSummary(args []string, out io.Writer) error {
	cmd := newSummaryCommand()
	cmd.Flags.SetOutput(out)
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	products, err := strconv.Atoi(cmd.Flags.Lookup("products").Value.String())
	if err != nil {
		return fmt.Errorf("invalid --products: %w", err)
	}

	list, err := readOrders(cmd.Flags.Lookup("file").Value.String())
	if err != nil {
		return err
	}

	result := summaryOutput{
		Stats:   orders.Summarize(list, products),
		Summary: orders.Aggregate(list, orders.SummaryClassifier()),
	}
	if cmd.Flags.Lookup("json").Value.String() == "true" {
		return writeJSON(out, result)
	}

	fmt.Fprintf(out, "Sold products: %d\n", result.Stats.SoldProducts)
	fmt.Fprintf(out, "New orders:    %d\n", result.Stats.NewOrders)
	fmt.Fprintf(out, "Earnings:      %s\n\n", result.Stats.EarningsDisplay)

	if result.Summary.Empty() {
		fmt.Fprintln(out, "No orders yet")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tCOUNT\tVALUE\tSHARE")
	for _, b := range result.Summary.Buckets {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.1f%%\n", b.Label, b.Count, money.Format(b.Value), b.Percentage)
	}
	fmt.Fprintf(tw, "Total\t%d\t\t\n", result.Summary.GrandTotal)
	return tw.Flush()
}

func readOrders(path string) ([]orders.Order, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open orders file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var list []orders.Order
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return list, nil
}
