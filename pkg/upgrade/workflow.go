package upgrade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/money"
	"github.com/nextcommerce/storedash/pkg/observability"
	"github.com/nextcommerce/storedash/pkg/plans"
	"github.com/nextcommerce/storedash/pkg/proof"
	"github.com/nextcommerce/storedash/pkg/subscriptions"
)

// Config tunes the workflow
type Config struct {
	IntentTTL        time.Duration
	SessionTTL       time.Duration
	LockTTL          time.Duration
	OperationTimeout time.Duration
	Payment          PaymentInfo
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		IntentTTL:        24 * time.Hour,
		SessionTTL:       72 * time.Hour,
		LockTTL:          2 * time.Minute,
		OperationTimeout: 60 * time.Second,
	}
}

// Workflow drives a merchant from plan selection to a submitted
// subscription request
type Workflow struct {
	catalog   *plans.Catalog
	store     Store
	uploader  proof.Uploader
	submitter subscriptions.Submitter
	cfg       Config
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewWorkflow wires a workflow. metrics may be nil.
func NewWorkflow(catalog *plans.Catalog, store Store, uploader proof.Uploader, submitter subscriptions.Submitter, cfg Config, metrics *observability.Metrics) *Workflow {
	return &Workflow{
		catalog:   catalog,
		store:     store,
		uploader:  uploader,
		submitter: submitter,
		cfg:       cfg,
		metrics:   metrics,
		now:       time.Now,
	}
}

// SelectPlan records the merchant's choice, replacing any earlier one
func (w *Workflow) SelectPlan(ctx context.Context, merchant *auth.Merchant, planID string) (Intent, error) {
	plan, err := w.catalog.Get(planID)
	if err != nil {
		return Intent{}, err
	}

	intent := NewIntent(plan, w.now())
	if err := intent.Validate(); err != nil {
		return Intent{}, err
	}
	if err := w.store.PutIntent(ctx, merchant.ID, intent, w.cfg.IntentTTL); err != nil {
		return Intent{}, err
	}

	w.recordTransition(StateBrowsing, StatePlanSelected)
	observability.FromContext(ctx).WithField("plan_id", plan.ID).Info("plan selected")
	return intent, nil
}

// LoadCheckout consumes the pending plan selection and opens a checkout
// session. Without a new selection an open session is resumed; with neither,
// ErrNoIntent is returned. While an upload or submission is outstanding it
// returns ErrInFlight and leaves the selection in place.
func (w *Workflow) LoadCheckout(ctx context.Context, merchant *auth.Merchant) (*Checkout, error) {
	logger := observability.FromContext(ctx)

	unlock, err := w.store.Lock(ctx, merchant.ID, w.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	intent, found, err := w.store.TakeIntent(ctx, merchant.ID)
	if err != nil && !errors.Is(err, errCorruptIntent) {
		return nil, err
	}
	if err != nil {
		logger.WithError(err).Warn("discarding unreadable plan intent")
		found = false
	}
	if found {
		if verr := intent.Validate(); verr != nil {
			logger.WithError(verr).Warn("discarding invalid plan intent")
			found = false
		}
	}

	if found {
		now := w.now()
		session := &Session{
			MerchantID: merchant.ID,
			Intent:     intent,
			State:      StatePlanSelected,
			OpenedAt:   now,
			UpdatedAt:  now,
		}
		if err := w.advance(session, StateCheckoutLoaded); err != nil {
			return nil, err
		}
		if err := w.store.PutSession(ctx, session, w.cfg.SessionTTL); err != nil {
			return nil, err
		}
		return w.checkout(session), nil
	}

	session, ok, err := w.store.GetSession(ctx, merchant.ID)
	if err != nil {
		return nil, err
	}
	if !ok || session.State.Terminal() {
		if w.metrics != nil {
			w.metrics.CheckoutRedirectsTotal.Inc()
		}
		return nil, ErrNoIntent
	}
	return w.checkout(session), nil
}

// Current returns the merchant's open session
func (w *Workflow) Current(ctx context.Context, merchant *auth.Merchant) (*Session, error) {
	session, ok, err := w.store.GetSession(ctx, merchant.ID)
	if err != nil {
		return nil, err
	}
	if !ok || session.State.Terminal() {
		return nil, ErrNoIntent
	}
	return session, nil
}

// CaptureProof uploads the payment receipt and attaches its URL to the
// session. A failed upload leaves the session untouched.
//
// The operation is not cancelled when ctx is: it runs on a detached context
// bounded by the configured timeout.
func (w *Workflow) CaptureProof(ctx context.Context, merchant *auth.Merchant, img proof.Image) (*Session, error) {
	ctx, cancel := w.detach(ctx)
	defer cancel()

	unlock, err := w.store.Lock(ctx, merchant.ID, w.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := w.Current(ctx, merchant)
	if err != nil {
		return nil, err
	}
	if !CanTransition(session.State, StateProofCaptured) {
		return nil, &TransitionError{From: session.State, To: StateProofCaptured}
	}

	url, err := w.uploader.Upload(ctx, img)
	if err != nil {
		observability.FromContext(ctx).WithError(err).Warn("payment proof upload failed")
		if !errors.Is(err, proof.ErrUpload) {
			err = fmt.Errorf("%w: %v", proof.ErrUpload, err)
		}
		return nil, err
	}

	if err := w.ensureCurrent(ctx, session); err != nil {
		return nil, err
	}

	session.ProofURL = url
	session.LastError = ""
	if err := w.advance(session, StateProofCaptured); err != nil {
		return nil, err
	}
	if err := w.store.PutSession(ctx, session, w.cfg.SessionTTL); err != nil {
		return nil, err
	}
	return session, nil
}

// Submit sends the subscription request for the captured proof. On success
// the session is closed; on failure it returns to ProofCaptured with the
// proof kept so the merchant can retry.
func (w *Workflow) Submit(ctx context.Context, merchant *auth.Merchant) (subscriptions.Ack, error) {
	ctx, cancel := w.detach(ctx)
	defer cancel()

	unlock, err := w.store.Lock(ctx, merchant.ID, w.cfg.LockTTL)
	if err != nil {
		return subscriptions.Ack{}, err
	}
	defer unlock()

	session, err := w.Current(ctx, merchant)
	if err != nil {
		return subscriptions.Ack{}, err
	}
	if !CanTransition(session.State, StateSubmitted) || session.ProofURL == "" {
		return subscriptions.Ack{}, &TransitionError{From: session.State, To: StateSubmitted}
	}

	req := w.buildRequest(merchant, session)
	if err := req.Validate(); err != nil {
		return subscriptions.Ack{}, err
	}

	logger := observability.FromContext(ctx).WithField("plan_id", session.Intent.PlanID)
	ack, err := w.submitter.Submit(ctx, req)
	if err != nil {
		logger.WithError(err).Error("subscription request submission failed")
		if !errors.Is(err, subscriptions.ErrSubmission) {
			err = fmt.Errorf("%w: %v", subscriptions.ErrSubmission, err)
		}
		w.markFailed(ctx, session, err)
		return subscriptions.Ack{}, err
	}

	if err := w.advance(session, StateSubmitted); err != nil {
		return subscriptions.Ack{}, err
	}
	// Submitted is stored first so a failed delete still blocks a second submission
	if err := w.store.PutSession(ctx, session, w.cfg.SessionTTL); err != nil {
		logger.WithError(err).Warn("failed to record submitted checkout session")
	}
	if err := w.store.DeleteSession(ctx, merchant.ID); err != nil {
		logger.WithError(err).Warn("failed to close checkout session")
	}
	logger.WithField("request_id", ack.ID).Info("subscription request submitted")
	return ack, nil
}

// ensureCurrent fails with a TransitionError when the stored session is no
// longer the one session was read from
func (w *Workflow) ensureCurrent(ctx context.Context, session *Session) error {
	stored, ok, err := w.store.GetSession(ctx, session.MerchantID)
	if err != nil {
		return err
	}
	if !ok || !stored.OpenedAt.Equal(session.OpenedAt) || stored.Intent.PlanID != session.Intent.PlanID || stored.State != session.State {
		state := StateBrowsing
		if ok {
			state = stored.State
		}
		return &TransitionError{From: state, To: StateProofCaptured}
	}
	return nil
}

// markFailed records the failed submission and returns the session to
// ProofCaptured
func (w *Workflow) markFailed(ctx context.Context, session *Session, cause error) {
	if err := w.advance(session, StateSubmitFailed); err != nil {
		return
	}
	session.LastError = cause.Error()
	if err := w.advance(session, StateProofCaptured); err != nil {
		return
	}
	if err := w.store.PutSession(ctx, session, w.cfg.SessionTTL); err != nil {
		observability.FromContext(ctx).WithError(err).Warn("failed to save session after submission failure")
	}
}

func (w *Workflow) buildRequest(merchant *auth.Merchant, session *Session) subscriptions.Request {
	title, _ := w.catalog.Describe(session.Intent.PlanID)
	return subscriptions.Request{
		UserID:          merchant.ID,
		UserName:        merchant.DisplayName(),
		Price:           money.WholeUnits(session.Intent.Price),
		Orders:          session.Intent.Orders(),
		OfferTitle:      title,
		PaymentProofURL: session.ProofURL,
		Status:          subscriptions.StatusPending,
		Date:            w.now().UTC(),
	}
}

func (w *Workflow) checkout(session *Session) *Checkout {
	summary := w.Summary(session.Intent)
	return &Checkout{
		Session:  session,
		Summary:  summary,
		Payment:  w.cfg.Payment,
		DeepLink: PaymentDeepLink(w.cfg.Payment.Phone, summary),
	}
}

// Summary describes intent for the checkout page
func (w *Workflow) Summary(intent Intent) Summary {
	return Describe(w.catalog, intent)
}

// Describe builds the checkout summary of intent from catalog. Plans no
// longer in the catalog are shown under their ID.
func Describe(catalog *plans.Catalog, intent Intent) Summary {
	title, description := catalog.Describe(intent.PlanID)
	display := intent.PriceDisplay
	if display == "" {
		display = plans.FormatPrice(intent.Price)
	}
	return Summary{
		PlanID:       intent.PlanID,
		Title:        title,
		Description:  description,
		Orders:       intent.Orders(),
		Price:        intent.Price,
		PriceDisplay: display,
		Currency:     plans.Currency,
		Term:         "per month",
	}
}

func (w *Workflow) advance(session *Session, to State) error {
	from := session.State
	if err := checkTransition(from, to); err != nil {
		return err
	}
	session.State = to
	session.UpdatedAt = w.now()
	w.recordTransition(from, to)
	return nil
}

func (w *Workflow) recordTransition(from, to State) {
	if w.metrics != nil {
		w.metrics.WorkflowTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	}
}

// detach keeps request values but drops cancellation, bounded by the
// operation timeout
func (w *Workflow) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), w.cfg.OperationTimeout)
}
