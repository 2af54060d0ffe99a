package handlers

import (
	"errors"
	"net/http"

	"github.com/yungbote/nsg-intelligence-backend/internal/modules/calibration"
	"github.com/yungbote/nsg-intelligence-backend/internal/modules/gate"
	"github.com/yungbote/nsg-intelligence-backend/internal/platform/apierr"
	"github.com/yungbote/nsg-intelligence-backend/internal/services"
)

// toAPIError maps service and state-machine errors onto HTTP statuses.
func toAPIError(err error) *apierr.Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrUnauthenticated):
		return apierr.New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, services.ErrNoSession):
		return apierr.New(http.StatusNotFound, "no_session", err)
	case errors.Is(err, calibration.ErrBusy):
		return apierr.New(http.StatusConflict, "submission_in_flight", err)
	case errors.Is(err, calibration.ErrAwaitingConfirmation):
		return apierr.New(http.StatusConflict, "awaiting_confirmation", err)
	case errors.Is(err, calibration.ErrAlreadyConfirmed):
		return apierr.New(http.StatusConflict, "already_confirmed", err)
	case errors.Is(err, calibration.ErrNotAtTerminal):
		return apierr.New(http.StatusConflict, "not_at_final_step", err)
	case errors.Is(err, calibration.ErrStaleAnswer):
		return apierr.New(http.StatusConflict, "stale_answer", err)
	case errors.Is(err, calibration.ErrEmptyAnswer),
		errors.Is(err, calibration.ErrUnknownOption),
		errors.Is(err, calibration.ErrUnknownStep):
		return apierr.New(http.StatusBadRequest, "invalid_answer", err)
	case errors.Is(err, calibration.ErrUnknownField),
		errors.Is(err, calibration.ErrInvalidValue):
		return apierr.New(http.StatusBadRequest, "invalid_preferences", err)
	case errors.Is(err, calibration.ErrIncomplete):
		return apierr.New(http.StatusUnprocessableEntity, "incomplete_preferences", err)
	case errors.Is(err, services.ErrPersistFailed):
		return apierr.New(http.StatusBadGateway, "persist_failed", err)
	case errors.Is(err, services.ErrVerificationFailed):
		return apierr.New(http.StatusConflict, "verification_failed", err)
	case errors.Is(err, gate.ErrNotUnlocked):
		return apierr.New(http.StatusConflict, "recalibration_unavailable", err)
	case errors.Is(err, gate.ErrNotConfirmed):
		return apierr.New(http.StatusForbidden, "onboarding_required", err)
	default:
		return apierr.From(err, "internal_error")
	}
}
