package cli

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/nextcommerce/storedash/pkg/plans"
	"github.com/nextcommerce/storedash/pkg/upgrade"
)

func newDeepLinkCommand() *Command {
	cmd := &Command{
		Name:        "deeplink",
		Description: "Print the payment receipt messaging link for a plan",
		Flags:       flag.NewFlagSet("deeplink", flag.ContinueOnError),
		Run:         runDeepLink,
	}

	cmd.Flags.String("plan", "", "Plan ID")
	cmd.Flags.String("phone", "", "Receiving phone number in international format")

	return cmd
}

func runDeepLink(args []string, out io.Writer) error {
	cmd := newDeepLinkCommand()
	cmd.Flags.SetOutput(out)
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	planID := cmd.Flags.Lookup("plan").Value.String()
	phone := cmd.Flags.Lookup("phone").Value.String()
	if planID == "" || phone == "" {
		return fmt.Errorf("plan and phone are required")
	}

	catalog := plans.DefaultCatalog()
	plan, err := catalog.Get(planID)
	if err != nil {
		return err
	}

	summary := upgrade.Describe(catalog, upgrade.NewIntent(plan, time.Now()))
	fmt.Fprintln(out, upgrade.PaymentDeepLink(phone, summary))
	return nil
}
