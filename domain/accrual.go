package domain

import (
	"math/big"
)

// Scale is the fixed-point scale for reward-per-token values. Intermediate
// products of stake, rate and Scale are kept in big.Int, so the scaled
// multiplication cannot overflow.
var Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// AccrualState is the global side of the reward bookkeeping. There is exactly
// one instance per pool, owned by the pool interactor.
type AccrualState struct {
	RewardRate           *big.Int `json:"reward_rate"`
	PeriodFinish         int64    `json:"period_finish"`
	LastUpdateTime       int64    `json:"last_update_time"`
	RewardPerTokenStored *big.Int `json:"reward_per_token_stored"`
	TotalStaked          *big.Int `json:"total_staked"`
}

// ParticipantState is created lazily on first stake and never deleted; a zero
// staked balance is a valid steady state.
type ParticipantState struct {
	Address            string   `json:"address"`
	StakedBalance      *big.Int `json:"staked_balance"`
	RewardPerTokenPaid *big.Int `json:"reward_per_token_paid"`
	AccruedRewards     *big.Int `json:"accrued_rewards"`
}

// AccrualBook keeps the time-weighted reward-per-staked-unit curve and the
// per-participant snapshots against it. It does no locking and makes no
// external calls; callers serialize all mutations.
type AccrualBook struct {
	Global       *AccrualState
	Participants map[string]*ParticipantState
}

func NewAccrualBook() *AccrualBook {
	return &AccrualBook{
		Global: &AccrualState{
			RewardRate:           big.NewInt(0),
			RewardPerTokenStored: big.NewInt(0),
			TotalStaked:          big.NewInt(0),
		},
		Participants: make(map[string]*ParticipantState),
	}
}

func NewParticipantState(address string) *ParticipantState {
	return &ParticipantState{
		Address:            address,
		StakedBalance:      big.NewInt(0),
		RewardPerTokenPaid: big.NewInt(0),
		AccruedRewards:     big.NewInt(0),
	}
}

// Participant returns the state for an address, creating it on first use.
func (book *AccrualBook) Participant(address string) *ParticipantState {
	p, exist := book.Participants[address]
	if !exist {
		p = NewParticipantState(address)
		book.Participants[address] = p
	}
	return p
}

// lastTimeApplicable clamps a timestamp to the funded period, so that a late
// checkpoint never accrues past the period's end. A now before the previous
// checkpoint yields zero elapsed time.
func (book *AccrualBook) lastTimeApplicable(now int64) int64 {
	if book.Global.PeriodFinish < now {
		return book.Global.PeriodFinish
	}
	return now
}

// RewardPerTokenAt returns the cumulative reward per staked unit at the given
// time, scaled by Scale. While nothing is staked the stored value is returned
// unchanged, so the interval's would-be reward is simply never minted into
// the curve.
func (book *AccrualBook) RewardPerTokenAt(now int64) *big.Int {
	g := book.Global
	if g.TotalStaked.Sign() == 0 {
		return new(big.Int).Set(g.RewardPerTokenStored)
	}

	elapsed := book.lastTimeApplicable(now) - g.LastUpdateTime
	if elapsed <= 0 {
		return new(big.Int).Set(g.RewardPerTokenStored)
	}

	accrued := new(big.Int).Mul(big.NewInt(elapsed), g.RewardRate)
	accrued.Mul(accrued, Scale)
	accrued.Quo(accrued, g.TotalStaked)
	return accrued.Add(accrued, g.RewardPerTokenStored)
}

// EarnedAt returns the reward a participant could claim at the given time.
// Pure; an unknown address earns zero. Division truncates toward zero, so a
// participant may lose at most one unit of precision per checkpoint.
func (book *AccrualBook) EarnedAt(now int64, address string) *big.Int {
	p, exist := book.Participants[address]
	if !exist {
		return big.NewInt(0)
	}

	delta := book.RewardPerTokenAt(now)
	delta.Sub(delta, p.RewardPerTokenPaid)
	delta.Mul(delta, p.StakedBalance)
	delta.Quo(delta, Scale)
	return delta.Add(delta, p.AccruedRewards)
}

// CheckpointAt freezes accrual up to now. It must run before any mutation of
// the reward rate, the total staked supply, or a participant's balance, so
// that the arithmetic between checkpoints sees a constant rate and supply.
// Pass an empty address to checkpoint the global curve only.
func (book *AccrualBook) CheckpointAt(now int64, address string) {
	g := book.Global
	g.RewardPerTokenStored = book.RewardPerTokenAt(now)
	// Never move the checkpoint backwards; a rewinding clock would otherwise
	// re-accrue an interval that is already folded into the stored curve.
	if t := book.lastTimeApplicable(now); t > g.LastUpdateTime {
		g.LastUpdateTime = t
	}

	if address == "" {
		return
	}

	p := book.Participant(address)
	p.AccruedRewards = book.EarnedAt(now, address)
	p.RewardPerTokenPaid = new(big.Int).Set(g.RewardPerTokenStored)
}
