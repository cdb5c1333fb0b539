package api

import (
	"errors"
	"net/http"

	"github.com/nextcommerce/storedash/pkg/httputil"
	"github.com/nextcommerce/storedash/pkg/observability"
	"github.com/nextcommerce/storedash/pkg/plans"
	"github.com/nextcommerce/storedash/pkg/proof"
	"github.com/nextcommerce/storedash/pkg/quota"
	"github.com/nextcommerce/storedash/pkg/storeapi"
	"github.com/nextcommerce/storedash/pkg/subscriptions"
	"github.com/nextcommerce/storedash/pkg/upgrade"
	"github.com/nextcommerce/storedash/pkg/validation"
)

// writeError maps a domain error to its HTTP response
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validation.ValidationError
	switch {
	case errors.As(err, &ve):
		httputil.WriteDetailedError(w, http.StatusBadRequest, "validation failed", ve.Errors)
	case errors.Is(err, proof.ErrInvalidImage):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, upgrade.ErrNoIntent):
		httputil.WriteRedirect(w, http.StatusConflict, err.Error(), quota.UpgradePath)
	case errors.Is(err, upgrade.ErrInFlight), errors.Is(err, upgrade.ErrInvalidTransition):
		httputil.WriteConflict(w, err.Error())
	case errors.Is(err, plans.ErrPlanNotFound), errors.Is(err, storeapi.ErrNotFound):
		httputil.WriteNotFound(w, err.Error())
	case errors.Is(err, proof.ErrUpload):
		observability.FromContext(r.Context()).WithError(err).Warn("proof upload failed")
		httputil.WriteBadGateway(w, "payment proof upload failed, please retry")
	case errors.Is(err, subscriptions.ErrSubmission):
		observability.FromContext(r.Context()).WithError(err).Warn("submission failed")
		httputil.WriteBadGateway(w, "subscription request could not be sent, please retry")
	case errors.Is(err, storeapi.ErrUpstream):
		observability.FromContext(r.Context()).WithError(err).Warn("store API unavailable")
		httputil.WriteBadGateway(w, "store data is temporarily unavailable")
	default:
		observability.FromContext(r.Context()).WithError(err).Error("request failed")
		httputil.WriteInternalError(w)
	}
}
