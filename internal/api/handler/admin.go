package handler

import (
	"net/http"
	"time"

	"github.com/velozpay/ledger/internal/domain"
	"github.com/velozpay/ledger/internal/ledger"
)

// AdminHandler exposes read-only listings for back-office tooling.
type AdminHandler struct {
	store ledger.AdminStore
}

func NewAdminHandler(store ledger.AdminStore) *AdminHandler {
	return &AdminHandler{store: store}
}

type clientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type accountResponse struct {
	ID              string    `json:"id"`
	ClientID        string    `json:"client_id"`
	Balance         string    `json:"balance"`
	ReservedBalance string    `json:"reserved_balance"`
	CreditLimit     string    `json:"credit_limit"`
	Available       string    `json:"available"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

func newAccountResponse(account *domain.Account) accountResponse {
	return accountResponse{
		ID:              account.ID.String(),
		ClientID:        account.ClientID.String(),
		Balance:         account.Balance.String(),
		ReservedBalance: account.ReservedBalance.String(),
		CreditLimit:     account.CreditLimit.String(),
		Available:       account.Available().String(),
		Status:          string(account.Status),
		CreatedAt:       account.CreatedAt,
	}
}

func (h *AdminHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.ListClients(r.Context())
	if err != nil {
		RespondLedgerError(w, r, err)
		return
	}

	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, clientResponse{
			ID:        c.ID.String(),
			Name:      c.Name,
			CreatedAt: c.CreatedAt,
		})
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"clients": out})
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListAccounts(r.Context())
	if err != nil {
		RespondLedgerError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, newAccountResponse(a))
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"accounts": out})
}

func (h *AdminHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	operations, err := h.store.ListOperations(r.Context())
	if err != nil {
		RespondLedgerError(w, r, err)
		return
	}

	out := make([]operationResponse, 0, len(operations))
	for _, op := range operations {
		out = append(out, newOperationResponse(op))
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"operations": out})
}
