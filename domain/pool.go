package domain

import (
	"fmt"
	"math/big"
)

const (
	PoolStateUninitialized = "uninitialized"
	PoolStateIdle          = "idle"
	PoolStateActive        = "active"
	PoolStateExpired       = "expired"
)

var (
	ErrorUnauthorized        = fmt.Errorf("caller is not permitted to perform this operation")
	ErrorInvalidAmount       = fmt.Errorf("amount must be a positive value")
	ErrorInsufficientBalance = fmt.Errorf("amount exceeds the available staked balance")
	ErrorInsufficientFunding = fmt.Errorf("reward obligation exceeds tokens held in custody")
	ErrorCollaboratorFailure = fmt.Errorf("external transfer request did not complete")
	ErrorUninitialized       = fmt.Errorf("pool state is not loaded yet")
)

// PoolStatus is the read-only view of the pool exposed to callers.
type PoolStatus struct {
	State          string   `json:"state"`
	RewardRate     *big.Int `json:"reward_rate"`
	PeriodFinish   int64    `json:"period_finish"`
	RewardPerToken *big.Int `json:"reward_per_token"`
	TotalStaked    *big.Int `json:"total_staked"`
	Participants   int      `json:"participants"`
}

// ParticipantStatus reports a participant's balance together with the reward
// claimable at the time of the query.
type ParticipantStatus struct {
	Address       string   `json:"address"`
	StakedBalance *big.Int `json:"staked_balance"`
	Earned        *big.Int `json:"earned"`
}
