package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/nextcommerce/storedash/pkg/config"
	"github.com/nextcommerce/storedash/pkg/notify"
	"github.com/nextcommerce/storedash/pkg/reviewer"
	"github.com/nextcommerce/storedash/pkg/storage"
	"github.com/nextcommerce/storedash/pkg/subscriptions"
)

var (
	runOnce  = flag.Bool("run-once", false, "Send the digest once and exit")
	lookback = flag.Duration("lookback", reviewer.DefaultLookback, "Include pending requests submitted within this window")
	dryRun   = flag.Bool("dry-run", false, "Print the digest instead of mailing it")
)

// stdoutNotifier prints the digest for dry runs
type stdoutNotifier struct {
	logger *logrus.Logger
}

func (n stdoutNotifier) Send(_ context.Context, msg notify.Message) error {
	n.logger.WithField("to", msg.To).Info(msg.Subject)
	_, err := os.Stdout.WriteString(msg.Text)
	return err
}

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.Submission.Mode != "sql" {
		logger.Fatal("The review digest reads the local database; set STOREDASH_SUBMISSION_MODE=sql")
	}

	db, err := storage.OpenDB(cfg.Storage)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	var notifier reviewer.Notifier = stdoutNotifier{logger: logger}
	if !*dryRun {
		if cfg.Reviewer.SMTPHost == "" || len(cfg.Reviewer.Recipients) == 0 {
			logger.Fatal("SMTP host and reviewer recipients are required")
		}
		notifier = notify.NewMailer(cfg.Reviewer.SMTPHost, cfg.Reviewer.SMTPPort, cfg.Reviewer.SMTPUser, cfg.Reviewer.SMTPPass, cfg.Reviewer.From)
	}

	job := reviewer.NewJob(subscriptions.NewSQLStore(db, nil), notifier, cfg.Reviewer.Recipients, *lookback, logger)

	if *runOnce {
		if err := job.Run(context.Background()); err != nil {
			logger.WithError(err).Fatal("Review digest failed")
		}
		return
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.Reviewer.Schedule, func() {
		if err := job.Run(context.Background()); err != nil {
			logger.WithError(err).Error("Review digest failed")
		}
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to schedule review digest")
	}

	c.Start()
	logger.WithField("schedule", cfg.Reviewer.Schedule).Info("storedash reviewer started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down gracefully...")

	ctx := c.Stop()
	<-ctx.Done()
	logger.Info("Reviewer stopped")
}
