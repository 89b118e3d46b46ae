package api

import (
	"distributor/domain"
	"distributor/interface/exporter"
	"distributor/usecase"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// PoolAPI exposes the staking controller's operations over HTTP. Callers
// identify themselves in the request body; verifying those identities
// cryptographically is the job of the gateway in front of this service.
type PoolAPI struct {
	pool  *usecase.PoolInteractor
	badge *usecase.BadgeInteractor
}

func New(pool *usecase.PoolInteractor, badge *usecase.BadgeInteractor) *PoolAPI {
	return &PoolAPI{
		pool:  pool,
		badge: badge,
	}
}

type stakeRequest struct {
	Participant string `json:"participant"`
	Amount      string `json:"amount"`
}

type claimRequest struct {
	Participant string `json:"participant"`
}

type claimResponse struct {
	Participant string `json:"participant"`
	Reward      string `json:"reward"`
}

type notifyRequest struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

type stakeTransferRequest struct {
	Caller string `json:"caller"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type badgeClassRequest struct {
	Caller    string `json:"caller"`
	StakeCost string `json:"stake_cost"`
}

type addressRequest struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

func decodeBody(req *http.Request, obj interface{}) error {
	if err := json.NewDecoder(req.Body).Decode(obj); err != nil {
		return BadRequest(errors.WithMessage(err, "body"))
	}
	return nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, BadRequest(errors.Errorf("unparsable amount %q", value))
	}
	return amount, nil
}

// operationError maps the domain error kinds onto HTTP statuses.
func operationError(err error) error {
	if err == nil {
		return nil
	}

	exporter.IncErrorCount()
	switch errors.Cause(err) {
	case domain.ErrorUnauthorized:
		return Forbidden(err)
	case domain.ErrorInvalidAmount, usecase.ErrorIncompleteTransfer:
		return BadRequest(err)
	case domain.ErrorInsufficientBalance, domain.ErrorInsufficientFunding:
		return HTTPError(err, http.StatusConflict)
	case domain.ErrorCollaboratorFailure:
		return HTTPError(err, http.StatusBadGateway)
	case domain.ErrorUninitialized:
		return HTTPError(err, http.StatusServiceUnavailable)
	case usecase.ErrorUnknownBadgeClass:
		return HTTPError(err, http.StatusNotFound)
	default:
		return err
	}
}

func (a *PoolAPI) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body stakeRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return err
	}

	if err := a.pool.Stake(body.Participant, amount); err != nil {
		return operationError(err)
	}
	return WriteJSON(w, a.pool.ParticipantStatus(body.Participant))
}

func (a *PoolAPI) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body stakeRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return err
	}

	if err := a.pool.Withdraw(body.Participant, amount); err != nil {
		return operationError(err)
	}
	return WriteJSON(w, a.pool.ParticipantStatus(body.Participant))
}

func (a *PoolAPI) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body claimRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	reward, err := a.pool.ClaimReward(body.Participant)
	if err != nil {
		return operationError(err)
	}
	return WriteJSON(w, claimResponse{Participant: body.Participant, Reward: reward.String()})
}

func (a *PoolAPI) handleNotifyReward(w http.ResponseWriter, req *http.Request) error {
	var body notifyRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return err
	}

	if err := a.pool.NotifyRewardAmount(body.Caller, amount); err != nil {
		return operationError(err)
	}
	return WriteJSON(w, a.pool.Status())
}

func (a *PoolAPI) handleTransferStake(w http.ResponseWriter, req *http.Request) error {
	var body stakeTransferRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		return err
	}

	if err := a.pool.TransferStake(body.Caller, body.From, body.To, amount); err != nil {
		return operationError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *PoolAPI) handleBadgeTransfer(w http.ResponseWriter, req *http.Request) error {
	var body domain.BadgeTransfer
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	if err := a.badge.HandleTransfer(&body); err != nil {
		return operationError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *PoolAPI) handleSetBadgeClass(w http.ResponseWriter, req *http.Request) error {
	var body badgeClassRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}
	stakeCost, err := parseAmount(body.StakeCost)
	if err != nil {
		return err
	}

	class, err := a.badge.SetStakeCost(body.Caller, mux.Vars(req)["name"], stakeCost)
	if err != nil {
		return operationError(err)
	}
	return WriteJSON(w, class)
}

func (a *PoolAPI) handleSetFundingAuthority(w http.ResponseWriter, req *http.Request) error {
	var body addressRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	if err := a.pool.SetFundingAuthority(body.Caller, body.Address); err != nil {
		return operationError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *PoolAPI) handleSetBadgeRegistry(w http.ResponseWriter, req *http.Request) error {
	var body addressRequest
	if err := decodeBody(req, &body); err != nil {
		return err
	}

	if err := a.pool.SetBadgeRegistry(body.Caller, body.Address); err != nil {
		return operationError(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (a *PoolAPI) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	return WriteJSON(w, a.pool.Status())
}

func (a *PoolAPI) handleGetParticipant(w http.ResponseWriter, req *http.Request) error {
	return WriteJSON(w, a.pool.ParticipantStatus(mux.Vars(req)["address"]))
}

func (a *PoolAPI) Mount(router *mux.Router) {
	sub := router.PathPrefix("/pool").Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(wrapHandlerFunc(a.handleGetPool))
	sub.Path("/participants/{address}").Methods(http.MethodGet).HandlerFunc(wrapHandlerFunc(a.handleGetParticipant))
	sub.Path("/stakes").Methods(http.MethodPost).HandlerFunc(wrapHandlerFunc(a.handleStake))
	sub.Path("/withdrawals").Methods(http.MethodPost).HandlerFunc(wrapHandlerFunc(a.handleWithdraw))
	sub.Path("/claims").Methods(http.MethodPost).HandlerFunc(wrapHandlerFunc(a.handleClaim))
	sub.Path("/reward-notifications").Methods(http.MethodPost).HandlerFunc(wrapHandlerFunc(a.handleNotifyReward))
	sub.Path("/stake-transfers").Methods(http.MethodPost).HandlerFunc(wrapHandlerFunc(a.handleTransferStake))
	sub.Path("/badge-transfers").Methods(http.MethodPost).HandlerFunc(wrapHandlerFunc(a.handleBadgeTransfer))
	sub.Path("/badge-classes/{name}").Methods(http.MethodPut).HandlerFunc(wrapHandlerFunc(a.handleSetBadgeClass))
	sub.Path("/config/funding-authority").Methods(http.MethodPut).HandlerFunc(wrapHandlerFunc(a.handleSetFundingAuthority))
	sub.Path("/config/badge-registry").Methods(http.MethodPut).HandlerFunc(wrapHandlerFunc(a.handleSetBadgeRegistry))
}
