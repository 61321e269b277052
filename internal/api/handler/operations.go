package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velozpay/ledger/internal/domain"
	"github.com/velozpay/ledger/internal/ledger"
)

// OperationHandler exposes the ledger operations over HTTP.
type OperationHandler struct {
	svc *ledger.Service
}

func NewOperationHandler(svc *ledger.Service) *OperationHandler {
	return &OperationHandler{svc: svc}
}

type operationRequest struct {
	AccountID   string          `json:"account_id"`
	OperationID string          `json:"operation_id"`
	Amount      decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	OperationID          string          `json:"operation_id"`
	Amount               decimal.Decimal `json:"amount"`
}

type revertRequest struct {
	AccountID   string `json:"account_id"`
	OperationID string `json:"operation_id"`
}

type operationResponse struct {
	ID          string     `json:"id"`
	AccountID   string     `json:"account_id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Amount      string     `json:"amount"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func newOperationResponse(op *domain.Operation) operationResponse {
	return operationResponse{
		ID:          op.ID.String(),
		AccountID:   op.AccountID.String(),
		Type:        string(op.Type),
		Status:      string(op.Status),
		Amount:      op.Amount.String(),
		CreatedAt:   op.CreatedAt,
		CompletedAt: op.CompletedAt,
	}
}

func (h *OperationHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.svc.Credit)
}

func (h *OperationHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.svc.Debit)
}

func (h *OperationHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.svc.Reserve)
}

func (h *OperationHandler) Capture(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.svc.Capture)
}

func (h *OperationHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.svc.Release)
}

func (h *OperationHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var body transferRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	sourceID, err := uuid.Parse(body.SourceAccountID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "Invalid source_account_id")
		return
	}
	destinationID, err := uuid.Parse(body.DestinationAccountID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "Invalid destination_account_id")
		return
	}
	operationID, err := parseOperationID(body.OperationID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "Invalid operation_id")
		return
	}

	op, err := h.svc.Transfer(r.Context(), ledger.TransferRequest{
		SourceAccountID:      sourceID,
		DestinationAccountID: destinationID,
		OperationID:          operationID,
		Amount:               body.Amount,
	})
	if err != nil {
		RespondLedgerError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusCreated, newOperationResponse(op))
}

func (h *OperationHandler) Revert(w http.ResponseWriter, r *http.Request) {
	var body revertRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	accountID, err := uuid.Parse(body.AccountID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "Invalid account_id")
		return
	}
	operationID, err := uuid.Parse(body.OperationID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "Invalid operation_id")
		return
	}

	op, err := h.svc.Revert(r.Context(), ledger.RevertRequest{
		AccountID:   accountID,
		OperationID: operationID,
	})
	if err != nil {
		RespondLedgerError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, newOperationResponse(op))
}

func (h *OperationHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	operationID, err := uuid.Parse(urlParam(r, "operationID"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "Invalid operation id")
		return
	}

	op, err := h.svc.Operation(r.Context(), operationID)
	if err != nil {
		RespondLedgerError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, newOperationResponse(op))
}

func (h *OperationHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(urlParam(r, "accountID"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "Invalid account id")
		return
	}

	account, err := h.svc.Account(r.Context(), accountID)
	if err != nil {
		RespondLedgerError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *OperationHandler) handle(w http.ResponseWriter, r *http.Request, call func(ctx context.Context, req ledger.Request) (*domain.Operation, error)) {
	var body operationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	accountID, err := uuid.Parse(body.AccountID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "Invalid account_id")
		return
	}
	operationID, err := parseOperationID(body.OperationID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-field", "Invalid operation_id")
		return
	}

	op, err := call(r.Context(), ledger.Request{
		AccountID:   accountID,
		OperationID: operationID,
		Amount:      body.Amount,
	})
	if err != nil {
		RespondLedgerError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusCreated, newOperationResponse(op))
}

func parseOperationID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(raw)
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
