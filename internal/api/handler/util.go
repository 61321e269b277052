package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/velozpay/ledger/internal/api/problem"
	"github.com/velozpay/ledger/internal/domain"
)

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an RFC 7807 error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

// RespondLedgerError maps domain errors onto HTTP statuses and problem types.
func RespondLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		RespondError(w, r, http.StatusBadRequest, "ledger/invalid-amount", err.Error())
	case errors.Is(err, domain.ErrSameAccountTransfer):
		RespondError(w, r, http.StatusBadRequest, "ledger/same-account-transfer", err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		RespondError(w, r, http.StatusNotFound, "ledger/account-not-found", err.Error())
	case errors.Is(err, domain.ErrOperationNotFound):
		RespondError(w, r, http.StatusNotFound, "ledger/operation-not-found", err.Error())
	case errors.Is(err, domain.ErrClientNotFound):
		RespondError(w, r, http.StatusNotFound, "ledger/client-not-found", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		RespondError(w, r, http.StatusUnprocessableEntity, "ledger/insufficient-funds", err.Error())
	case errors.Is(err, domain.ErrInsufficientReserved):
		RespondError(w, r, http.StatusUnprocessableEntity, "ledger/insufficient-reserved", err.Error())
	case errors.Is(err, domain.ErrInactiveAccount):
		RespondError(w, r, http.StatusUnprocessableEntity, "ledger/inactive-account", err.Error())
	case errors.Is(err, domain.ErrUnrevertibleOperation):
		RespondError(w, r, http.StatusUnprocessableEntity, "ledger/unrevertible-operation", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		RespondError(w, r, http.StatusConflict, "ledger/invalid-transition", err.Error())
	case errors.Is(err, domain.ErrPublicationExhausted):
		RespondError(w, r, http.StatusBadGateway, "ledger/publication-exhausted", err.Error())
	default:
		RespondError(w, r, http.StatusInternalServerError, "internal-server-error", "unexpected server error")
	}
}
