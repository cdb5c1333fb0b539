package reviewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/nextcommerce/storedash/pkg/async"
	"github.com/nextcommerce/storedash/pkg/money"
	"github.com/nextcommerce/storedash/pkg/notify"
	"github.com/nextcommerce/storedash/pkg/plans"
	"github.com/nextcommerce/storedash/pkg/subscriptions"
)

// DefaultLookback bounds how far back pending requests are collected
const DefaultLookback = 30 * 24 * time.Hour

const (
	sendWorkers = 4
	sendTimeout = 30 * time.Second
)

// PendingLister returns requests awaiting review
type PendingLister interface {
	ListPending(ctx context.Context, since time.Time) ([]subscriptions.Request, error)
}

// Notifier delivers the digest
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Entry is one pending request as shown to reviewers
type Entry struct {
	ID           string
	UserName     string
	Plan         string
	Orders       string
	PriceDisplay string
	ProofURL     string
	SubmittedAt  time.Time
}

// Digest is the set of pending requests in one window
type Digest struct {
	Since        time.Time
	GeneratedAt  time.Time
	Entries      []Entry
	Total        decimal.Decimal
	TotalDisplay string
	Currency     string
}

// Empty reports whether nothing is pending
func (d Digest) Empty() bool {
	return len(d.Entries) == 0
}

// Subject is the email subject line
func (d Digest) Subject() string {
	if len(d.Entries) == 1 {
		return "1 pending subscription request"
	}
	return fmt.Sprintf("%d pending subscription requests", len(d.Entries))
}

// Job collects pending requests and mails them to the reviewers
type Job struct {
	lister     PendingLister
	notifier   Notifier
	recipients []string
	lookback   time.Duration
	logger     *logrus.Logger
	now        func() time.Time
}

// NewJob creates a digest job. A zero lookback uses DefaultLookback.
func NewJob(lister PendingLister, notifier Notifier, recipients []string, lookback time.Duration, logger *logrus.Logger) *Job {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Job{
		lister:     lister,
		notifier:   notifier,
		recipients: recipients,
		lookback:   lookback,
		logger:     logger,
		now:        time.Now,
	}
}

// Build collects the current digest
func (j *Job) Build(ctx context.Context) (Digest, error) {
	now := j.now().UTC()
	since := now.Add(-j.lookback)

	requests, err := j.lister.ListPending(ctx, since)
	if err != nil {
		return Digest{}, fmt.Errorf("failed to list pending requests: %w", err)
	}

	d := Digest{
		Since:       since,
		GeneratedAt: now,
		Total:       decimal.Zero,
		Currency:    plans.Currency,
	}
	for _, r := range requests {
		price := decimal.NewFromInt(r.Price)
		d.Total = d.Total.Add(price)
		d.Entries = append(d.Entries, Entry{
			ID:           r.ID,
			UserName:     r.UserName,
			Plan:         r.OfferTitle,
			Orders:       r.Orders,
			PriceDisplay: money.Format(price),
			ProofURL:     r.PaymentProofURL,
			SubmittedAt:  r.Date,
		})
	}
	d.TotalDisplay = money.Format(d.Total)
	return d, nil
}

// Run builds the digest and mails it. Nothing is sent when no request is pending.
func (j *Job) Run(ctx context.Context) error {
	start := j.now()
	d, err := j.Build(ctx)
	if err != nil {
		return err
	}

	log := j.logger.WithFields(logrus.Fields{
		"pending":    len(d.Entries),
		"recipients": len(j.recipients),
	})
	if d.Empty() {
		log.Info("no pending subscription requests")
		return nil
	}

	text, html, err := Render(d)
	if err != nil {
		return err
	}
	// One message per reviewer so a rejected address does not block the rest
	errs := async.Batch(ctx, j.recipients, sendWorkers, "review digest", sendTimeout,
		func(ctx context.Context, to string) error {
			return j.notifier.Send(ctx, notify.Message{To: []string{to}, Subject: d.Subject(), Text: text, HTML: html})
		})
	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.WithError(err).WithField("failed", len(errs)).Error("failed to send review digest")
		return err
	}

	log.WithField("duration", j.now().Sub(start)).Info("review digest sent")
	return nil
}

var textDigest = template.Must(template.New("digest").Parse(
	`{{len .Entries}} subscription request(s) waiting for review since {{.Since.Format "2006-01-02"}}.
{{range .Entries}}
- {{.UserName}}: {{.Plan}} ({{.Orders}} orders), {{.PriceDisplay}} {{$.Currency}}, submitted {{.SubmittedAt.Format "2006-01-02 15:04"}}
  proof: {{.ProofURL}}
{{end}}
Total: {{.TotalDisplay}} {{.Currency}}
`))

var htmlDigest = htmltemplate.Must(htmltemplate.New("digest").Parse(
	`<p>{{len .Entries}} subscription request(s) waiting for review since {{.Since.Format "2006-01-02"}}.</p>
<table>
<tr><th>Merchant</th><th>Plan</th><th>Orders</th><th>Price</th><th>Submitted</th><th>Proof</th></tr>
{{range .Entries}}<tr><td>{{.UserName}}</td><td>{{.Plan}}</td><td>{{.Orders}}</td><td>{{.PriceDisplay}} {{$.Currency}}</td><td>{{.SubmittedAt.Format "2006-01-02 15:04"}}</td><td><a href="{{.ProofURL}}">receipt</a></td></tr>
{{end}}</table>
<p>Total: {{.TotalDisplay}} {{.Currency}}</p>
`))

// Render produces the plain text and HTML bodies of d
func Render(d Digest) (string, string, error) {
	var text, html bytes.Buffer
	if err := textDigest.Execute(&text, d); err != nil {
		return "", "", fmt.Errorf("failed to render digest: %w", err)
	}
	if err := htmlDigest.Execute(&html, d); err != nil {
		return "", "", fmt.Errorf("failed to render digest: %w", err)
	}
	return text.String(), html.String(), nil
}
