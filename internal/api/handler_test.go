package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velozpay/ledger/internal/api"
	"github.com/velozpay/ledger/internal/api/middleware"
	"github.com/velozpay/ledger/internal/config"
	"github.com/velozpay/ledger/internal/domain"
	"github.com/velozpay/ledger/internal/events"
	"github.com/velozpay/ledger/internal/ledger"
	"github.com/velozpay/ledger/internal/lock"
	"github.com/velozpay/ledger/internal/repository"
	"go.uber.org/zap"
)

const (
	testJWTSecret   = "test-secret-0123456789-test-secret"
	testJWTIssuer   = "velozpay-ledger-test"
	testJWTAudience = "ledger-api-test"
)

func TestMain(m *testing.M) {
	middleware.SetJWTSecret(testJWTSecret)
	middleware.SetJWTValidation(testJWTIssuer, testJWTAudience)
	os.Exit(m.Run())
}

type testEnv struct {
	store   *repository.MemoryStore
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := ledger.NewService(
		store.Accounts(),
		store.Operations(),
		lock.NewRegistry(),
		events.NewRetryPublisher(events.NewInMemoryPublisher(), zap.NewNop()).WithBaseDelay(time.Millisecond),
		zap.NewNop(),
	)

	cfg := &config.Config{PublicRateLimitRPS: 10000}
	router := api.NewRouter(cfg, zap.NewNop(), nil, nil, svc, store, nil)
	return &testEnv{store: store, handler: router.Routes()}
}

func (e *testEnv) addAccount(t *testing.T, balance int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	client := domain.NewClient("HTTP Client")
	require.NoError(t, e.store.AddClient(ctx, client))

	account := domain.NewAccount(client.ID, decimal.NewFromInt(1000))
	account.Balance = decimal.NewFromInt(balance)
	require.NoError(t, e.store.AddAccount(ctx, account))
	return account.ID
}

func (e *testEnv) post(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func adminToken(t *testing.T) string {
	t.Helper()
	userID := uuid.NewString()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    "admin",
		"sub":     userID,
		"iss":     testJWTIssuer,
		"aud":     testJWTAudience,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func TestCreditEndpoint(t *testing.T) {
	env := newTestEnv(t)
	accountID := env.addAccount(t, 100)

	w := env.post(t, "/v1/operations/credit", map[string]interface{}{
		"account_id":   accountID.String(),
		"operation_id": uuid.NewString(),
		"amount":       "50",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "credit", resp["type"])
	assert.Equal(t, "COMPLETED", resp["status"])
	assert.Equal(t, "50", resp["amount"])
}

func TestDebitEndpointInsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	accountID := env.addAccount(t, 100)

	w := env.post(t, "/v1/operations/debit", map[string]interface{}{
		"account_id": accountID.String(),
		"amount":     "5000",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient-funds")
}

func TestOperationEndpointInvalidBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/operations/credit", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOperationEndpointUnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	w := env.post(t, "/v1/operations/credit", map[string]interface{}{
		"account_id": uuid.NewString(),
		"amount":     "10",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransferEndpoint(t *testing.T) {
	env := newTestEnv(t)
	sourceID := env.addAccount(t, 1000)
	destinationID := env.addAccount(t, 0)

	w := env.post(t, "/v1/operations/transfer", map[string]interface{}{
		"source_account_id":      sourceID.String(),
		"destination_account_id": destinationID.String(),
		"amount":                 "250",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	source, err := env.store.Accounts().Get(context.Background(), sourceID)
	require.NoError(t, err)
	assert.True(t, source.Balance.Equal(decimal.NewFromInt(750)))
}

func TestTransferEndpointSameAccount(t *testing.T) {
	env := newTestEnv(t)
	accountID := env.addAccount(t, 1000)

	w := env.post(t, "/v1/operations/transfer", map[string]interface{}{
		"source_account_id":      accountID.String(),
		"destination_account_id": accountID.String(),
		"amount":                 "10",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "same-account-transfer")
}

func TestRevertEndpoint(t *testing.T) {
	env := newTestEnv(t)
	accountID := env.addAccount(t, 100)
	operationID := uuid.NewString()

	w := env.post(t, "/v1/operations/credit", map[string]interface{}{
		"account_id":   accountID.String(),
		"operation_id": operationID,
		"amount":       "50",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.post(t, "/v1/operations/revert", map[string]interface{}{
		"account_id":   accountID.String(),
		"operation_id": operationID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REVERTED", resp["status"])
}

func TestGetOperationEndpoint(t *testing.T) {
	env := newTestEnv(t)
	accountID := env.addAccount(t, 100)
	operationID := uuid.NewString()

	w := env.post(t, "/v1/operations/credit", map[string]interface{}{
		"account_id":   accountID.String(),
		"operation_id": operationID,
		"amount":       "25",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.get(t, "/v1/operations/"+operationID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), operationID)
}

func TestGetAccountEndpoint(t *testing.T) {
	env := newTestEnv(t)
	accountID := env.addAccount(t, 100)

	w := env.get(t, "/v1/accounts/"+accountID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "100", resp["balance"])
	assert.Equal(t, "1100", resp["available"])
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/v1/admin/accounts", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminListAccounts(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, 100)
	env.addAccount(t, 200)

	w := env.get(t, "/v1/admin/accounts", adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Accounts []map[string]interface{} `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Accounts, 2)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/healthz/live", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.get(t, "/healthz/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOpenAPIEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "VelozPay Ledger API")
}
