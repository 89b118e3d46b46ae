package api

import (
	"bytes"
	"distributor/domain"
	"distributor/usecase"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLedger struct {
	balance  *big.Int
	failWith error
}

func (ledger *stubLedger) Transfer(to string, amount *big.Int) error {
	return ledger.failWith
}

func (ledger *stubLedger) TransferFrom(from, to string, amount *big.Int) error {
	return ledger.failWith
}

func (ledger *stubLedger) BalanceOf(owner string) (*big.Int, error) {
	if ledger.balance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(ledger.balance), nil
}

type stubPoolStore struct{}

func (store *stubPoolStore) Save(state *domain.AccrualState, participants ...*domain.ParticipantState) error {
	return nil
}

func (store *stubPoolStore) FindState() (*domain.AccrualState, error) {
	return nil, nil
}

func (store *stubPoolStore) FindAllParticipants() ([]*domain.ParticipantState, error) {
	return nil, nil
}

type stubBadgeStore struct {
	classes map[string]*domain.BadgeClass
}

func (store *stubBadgeStore) Find(name string) (*domain.BadgeClass, error) {
	return store.classes[name], nil
}

func (store *stubBadgeStore) Upsert(name string, stakeCost *big.Int) (*domain.BadgeClass, error) {
	class := &domain.BadgeClass{Name: name, StakeCost: new(big.Int).Set(stakeCost)}
	store.classes[name] = class
	return class, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	pool := usecase.NewPoolInteractor(
		&stubLedger{},
		&stubLedger{balance: big.NewInt(2_000_000_000)},
		nil,
		&stubPoolStore{},
		"owner",
		"custody",
		"authority",
		"registry",
		1_210_000*time.Second)
	require.NoError(t, pool.Load())

	badge := usecase.NewBadgeInteractor(pool, &stubBadgeStore{classes: make(map[string]*domain.BadgeClass)}, "owner", "registry")

	router := mux.NewRouter()
	New(pool, badge).Mount(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(encoded))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStakeEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/pool/stakes", map[string]string{
		"participant": "alice",
		"amount":      "100",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status domain.ParticipantStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, big.NewInt(100), status.StakedBalance)
}

func TestStakeEndpointUnparsableAmount(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/pool/stakes", map[string]string{
		"participant": "alice",
		"amount":      "lots",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWithdrawEndpointInsufficientBalance(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/pool/withdrawals", map[string]string{
		"participant": "alice",
		"amount":      "100",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestNotifyRewardEndpointUnauthorized(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/pool/reward-notifications", map[string]string{
		"caller": "mallory",
		"amount": "1000000",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNotifyRewardEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/pool/reward-notifications", map[string]string{
		"caller": "authority",
		"amount": "1210000000",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status domain.PoolStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, domain.PoolStateActive, status.State)
	assert.Equal(t, big.NewInt(1000), status.RewardRate)
}

func TestGetPoolEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/pool")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status domain.PoolStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, domain.PoolStateIdle, status.State)
}

func TestBadgeTransferEndpointUnknownClass(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/pool/badge-transfers", map[string]string{
		"class": "gold",
		"from":  "alice",
		"to":    "bob",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetBadgeClassEndpoint(t *testing.T) {
	server := newTestServer(t)

	request, err := http.NewRequest(http.MethodPut, server.URL+"/pool/badge-classes/gold",
		bytes.NewReader([]byte(`{"caller":"owner","stake_cost":"40"}`)))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var class domain.BadgeClass
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&class))
	assert.Equal(t, "gold", class.Name)
	assert.Equal(t, big.NewInt(40), class.StakeCost)
}

func TestSetFundingAuthorityEndpoint(t *testing.T) {
	server := newTestServer(t)

	request, err := http.NewRequest(http.MethodPut, server.URL+"/pool/config/funding-authority",
		bytes.NewReader([]byte(`{"caller":"mallory","address":"mallory"}`)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	request, err = http.NewRequest(http.MethodPut, server.URL+"/pool/config/funding-authority",
		bytes.NewReader([]byte(`{"caller":"owner","address":"treasury"}`)))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(request)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
