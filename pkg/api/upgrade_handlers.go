package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nextcommerce/storedash/pkg/auth"
	"github.com/nextcommerce/storedash/pkg/httputil"
	"github.com/nextcommerce/storedash/pkg/middleware"
	"github.com/nextcommerce/storedash/pkg/proof"
	"github.com/nextcommerce/storedash/pkg/upgrade"
	"github.com/nextcommerce/storedash/pkg/validation"
)

// DefaultMaxProofBytes caps payment proof uploads
const DefaultMaxProofBytes = 10 << 20

// ProofField is the multipart field carrying the receipt image
const ProofField = "proof"

// multipartOverhead allows for boundaries and headers around the file part
const multipartOverhead = 64 << 10

// UpgradeHandlers drive the plan upgrade checkout
type UpgradeHandlers struct {
	workflow      *upgrade.Workflow
	limit         *middleware.RateLimitMiddleware
	maxProofBytes int64
}

// NewUpgradeHandlers creates a new upgrade handlers instance. limit may be nil.
func NewUpgradeHandlers(workflow *upgrade.Workflow, limit *middleware.RateLimitMiddleware, maxProofBytes int64) *UpgradeHandlers {
	if maxProofBytes <= 0 {
		maxProofBytes = DefaultMaxProofBytes
	}
	return &UpgradeHandlers{workflow: workflow, limit: limit, maxProofBytes: maxProofBytes}
}

// RegisterRoutes registers upgrade routes
func (h *UpgradeHandlers) RegisterRoutes(r *mux.Router) {
	r.Handle("/upgrade/intent", h.limited(h.selectPlan)).Methods("POST")
	r.HandleFunc("/upgrade/checkout", h.getCheckout).Methods("GET")
	r.Handle("/upgrade/checkout/proof", h.limited(h.uploadProof)).Methods("POST")
	r.Handle("/upgrade/checkout/confirm", h.limited(h.confirm)).Methods("POST")
}

func (h *UpgradeHandlers) limited(fn http.HandlerFunc) http.Handler {
	if h.limit == nil {
		return fn
	}
	return h.limit.Handler(fn)
}

// SelectPlanRequest is the body of POST /api/v1/upgrade/intent
type SelectPlanRequest struct {
	PlanID string `json:"plan_id" validate:"required,max=64"`
}

// merchantOrError returns the authenticated merchant or writes 401
func merchantOrError(w http.ResponseWriter, r *http.Request) (*auth.Merchant, bool) {
	merchant := auth.FromContext(r.Context())
	if merchant == nil {
		httputil.WriteUnauthorized(w, "authentication required")
		return nil, false
	}
	return merchant, true
}

// selectPlan handles POST /api/v1/upgrade/intent
func (h *UpgradeHandlers) selectPlan(w http.ResponseWriter, r *http.Request) {
	merchant, ok := merchantOrError(w, r)
	if !ok {
		return
	}

	var req SelectPlanRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	intent, err := h.workflow.SelectPlan(r.Context(), merchant, req.PlanID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteCreated(w, intent)
}

// getCheckout handles GET /api/v1/upgrade/checkout
func (h *UpgradeHandlers) getCheckout(w http.ResponseWriter, r *http.Request) {
	merchant, ok := merchantOrError(w, r)
	if !ok {
		return
	}

	checkout, err := h.workflow.LoadCheckout(r.Context(), merchant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, checkout)
}

// uploadProof handles POST /api/v1/upgrade/checkout/proof
// Expects a multipart form with the receipt image in the "proof" field.
func (h *UpgradeHandlers) uploadProof(w http.ResponseWriter, r *http.Request) {
	merchant, ok := merchantOrError(w, r)
	if !ok {
		return
	}

	img, err := h.readProof(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteErrorMessage(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("payment proof must be at most %d bytes", h.maxProofBytes))
			return
		}
		writeError(w, r, err)
		return
	}

	session, err := h.workflow.CaptureProof(r.Context(), merchant, img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, session)
}

func (h *UpgradeHandlers) readProof(w http.ResponseWriter, r *http.Request) (proof.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxProofBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxProofBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return proof.Image{}, err
		}
		return proof.Image{}, fmt.Errorf("%w: %v", proof.ErrInvalidImage, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(ProofField)
	if err != nil {
		return proof.Image{}, fmt.Errorf("%w: missing %q file", proof.ErrInvalidImage, ProofField)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxProofBytes+1))
	if err != nil {
		return proof.Image{}, fmt.Errorf("%w: %v", proof.ErrInvalidImage, err)
	}
	return proof.NewImage(data, header.Filename, h.maxProofBytes)
}

// confirm handles POST /api/v1/upgrade/checkout/confirm
func (h *UpgradeHandlers) confirm(w http.ResponseWriter, r *http.Request) {
	merchant, ok := merchantOrError(w, r)
	if !ok {
		return
	}

	ack, err := h.workflow.Submit(r.Context(), merchant)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteCreated(w, ack)
}
