package usecase

import (
	"distributor/domain"
	"distributor/domain/util"
	"distributor/interface/exporter"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// PoolStore persists the durable footprint of the pool: the singleton accrual
// state row plus one row per participant.
type PoolStore interface {
	Save(state *domain.AccrualState, participants ...*domain.ParticipantState) error
	FindState() (*domain.AccrualState, error)
	FindAllParticipants() ([]*domain.ParticipantState, error)
}

// PoolInteractor is the staking controller. It wraps the accrual book,
// performs the balance bookkeeping, and delegates token movement to the
// base/reward token ledgers. All mutating operations run under one write
// lock, so no operation can observe another between checkpoint and mutation.
type PoolInteractor struct {
	mutex sync.RWMutex
	book  *domain.AccrualBook

	duration int64 // reward period length in seconds

	ownerAddress     string
	custodyAddress   string
	fundingAuthority string
	badgeRegistry    string

	baseToken      domain.TokenLedger
	rewardToken    domain.TokenLedger
	badgeNotifier  domain.BadgeRegistry
	poolRepository PoolStore

	now func() int64

	loaded bool
}

func NewPoolInteractor(baseToken domain.TokenLedger,
	rewardToken domain.TokenLedger,
	badgeNotifier domain.BadgeRegistry,
	poolRepository PoolStore,
	ownerAddress string,
	custodyAddress string,
	fundingAuthority string,
	badgeRegistry string,
	rewardDuration time.Duration) *PoolInteractor {
	interactor := &PoolInteractor{
		book:             domain.NewAccrualBook(),
		duration:         int64(rewardDuration / time.Second),
		ownerAddress:     ownerAddress,
		custodyAddress:   custodyAddress,
		fundingAuthority: fundingAuthority,
		badgeRegistry:    badgeRegistry,
		baseToken:        baseToken,
		rewardToken:      rewardToken,
		badgeNotifier:    badgeNotifier,
		poolRepository:   poolRepository,
		now:              func() int64 { return time.Now().Unix() },
	}

	return interactor
}

// Load restores the accrual book from the repository. Until it has run, every
// operation is rejected with ErrorUninitialized.
func (interactor *PoolInteractor) Load() error {
	interactor.mutex.Lock()
	defer interactor.mutex.Unlock()

	state, err := interactor.poolRepository.FindState()
	if err != nil {
		log.Printf("🔴 loading accrual state - %v\n", err.Error())
		return err
	}

	if state != nil {
		interactor.book.Global = state

		participants, err := interactor.poolRepository.FindAllParticipants()
		if err != nil {
			log.Printf("🔴 loading participants - %v\n", err.Error())
			return err
		}
		for _, p := range participants {
			interactor.book.Participants[p.Address] = p
		}
	}

	interactor.loaded = true
	return nil
}

// Stake pulls amount base tokens from the participant into custody and adds
// them to the staked balance. The pull is requested before any balance is
// mutated, so a failed transfer leaves no state change behind.
func (interactor *PoolInteractor) Stake(participant string, amount *big.Int) error {
	if !isPositive(amount) {
		return domain.ErrorInvalidAmount
	}

	interactor.mutex.Lock()
	defer interactor.mutex.Unlock()

	if !interactor.loaded {
		return domain.ErrorUninitialized
	}

	now := interactor.now()
	interactor.book.CheckpointAt(now, participant)

	if err := interactor.baseToken.TransferFrom(participant, interactor.custodyAddress, amount); err != nil {
		log.Printf("🔴 staking [wallet: %v] - %v\n", participant, err.Error())
		return errors.WithMessage(err, "pulling stake into custody")
	}

	p := interactor.book.Participant(participant)
	p.StakedBalance = new(big.Int).Add(p.StakedBalance, amount)
	g := interactor.book.Global
	g.TotalStaked = new(big.Int).Add(g.TotalStaked, amount)

	log.Printf("staked %v [wallet: %v]\n", util.TokenString(amount), participant)
	interactor.persist(p)
	return nil
}

// Withdraw returns amount base tokens from custody to the participant. The
// badge registry is notified afterwards so it can re-evaluate any stake
// requirement still backing the participant's badges; that notification is
// advisory and does not undo the withdrawal.
func (interactor *PoolInteractor) Withdraw(participant string, amount *big.Int) error {
	if !isPositive(amount) {
		return domain.ErrorInvalidAmount
	}

	interactor.mutex.Lock()
	defer interactor.mutex.Unlock()

	if !interactor.loaded {
		return domain.ErrorUninitialized
	}

	p, exist := interactor.book.Participants[participant]
	if !exist || p.StakedBalance.Cmp(amount) < 0 {
		return domain.ErrorInsufficientBalance
	}

	now := interactor.now()
	interactor.book.CheckpointAt(now, participant)

	if err := interactor.baseToken.Transfer(participant, amount); err != nil {
		log.Printf("🔴 withdrawing [wallet: %v] - %v\n", participant, err.Error())
		return errors.WithMessage(err, "pushing stake back to participant")
	}

	p.StakedBalance = new(big.Int).Sub(p.StakedBalance, amount)
	g := interactor.book.Global
	g.TotalStaked = new(big.Int).Sub(g.TotalStaked, amount)

	log.Printf("withdrawn %v [wallet: %v]\n", util.TokenString(amount), participant)
	interactor.persist(p)

	if interactor.badgeNotifier != nil {
		if err := interactor.badgeNotifier.OnStakeChanged(participant, new(big.Int).Set(p.StakedBalance)); err != nil {
			exporter.IncErrorCount()
			log.Printf("🔴 notifying badge registry [wallet: %v] - %v\n", participant, err.Error())
		}
	}

	return nil
}

// ClaimReward pays out the participant's accrued reward and resets it to
// zero. Claiming with nothing earned is a no-op returning a zero amount.
func (interactor *PoolInteractor) ClaimReward(participant string) (*big.Int, error) {
	interactor.mutex.Lock()
	defer interactor.mutex.Unlock()

	if !interactor.loaded {
		return nil, domain.ErrorUninitialized
	}

	p, exist := interactor.book.Participants[participant]
	if !exist {
		return big.NewInt(0), nil
	}

	now := interactor.now()
	interactor.book.CheckpointAt(now, participant)

	reward := new(big.Int).Set(p.AccruedRewards)
	if reward.Sign() == 0 {
		log.Printf("🔵 claiming [wallet: %v] - nothing earned yet\n", participant)
		return big.NewInt(0), nil
	}

	if err := interactor.rewardToken.Transfer(participant, reward); err != nil {
		log.Printf("🔴 claiming [wallet: %v] - %v\n", participant, err.Error())
		return nil, errors.WithMessage(err, "paying out reward")
	}

	p.AccruedRewards = big.NewInt(0)

	log.Printf("claimed %v [wallet: %v]\n", util.RewardString(reward), participant)
	interactor.persist(p)
	return reward, nil
}

// NotifyRewardAmount opens a reward period of the configured duration. Called
// mid-period, the unspent remainder of the current period is folded into the
// new rate, so a top-up never discards already-funded reward. The implied
// obligation is checked against the reward tokens actually held in custody.
func (interactor *PoolInteractor) NotifyRewardAmount(caller string, amount *big.Int) error {
	interactor.mutex.Lock()
	defer interactor.mutex.Unlock()

	if !interactor.loaded {
		return domain.ErrorUninitialized
	}
	if caller == "" || caller != interactor.fundingAuthority {
		return domain.ErrorUnauthorized
	}
	if !isPositive(amount) {
		return domain.ErrorInvalidAmount
	}

	now := interactor.now()
	g := interactor.book.Global

	rate := new(big.Int)
	if now >= g.PeriodFinish {
		rate.Quo(amount, big.NewInt(interactor.duration))
	} else {
		remaining := new(big.Int).Mul(big.NewInt(g.PeriodFinish-now), g.RewardRate)
		rate.Add(amount, remaining)
		rate.Quo(rate, big.NewInt(interactor.duration))
	}

	// The funding guard: the period's full obligation must already sit in
	// custody, otherwise claims would silently become unpayable later.
	balance, err := interactor.rewardToken.BalanceOf(interactor.custodyAddress)
	if err != nil {
		log.Printf("🔴 funding - getting custody balance - %v\n", err.Error())
		return errors.WithMessage(err, "checking custody balance")
	}
	obligation := new(big.Int).Mul(rate, big.NewInt(interactor.duration))
	if obligation.Cmp(balance) > 0 {
		return domain.ErrorInsufficientFunding
	}

	interactor.book.CheckpointAt(now, "")
	g.RewardRate = rate
	g.LastUpdateTime = now
	g.PeriodFinish = now + interactor.duration

	log.Printf("funded %v, new rate %v, period ends at %v\n",
		util.RewardString(amount), util.RateString(rate), g.PeriodFinish)
	interactor.persist()
	return nil
}

// TransferStake moves staked balance between two participants without going
// through withdraw/stake. It is the badge registry's rebalancing hook on
// badge ownership change: no tokens move and the total staked supply is
// unchanged, but both participants are checkpointed first.
func (interactor *PoolInteractor) TransferStake(caller, from, to string, amount *big.Int) error {
	interactor.mutex.Lock()
	defer interactor.mutex.Unlock()

	if !interactor.loaded {
		return domain.ErrorUninitialized
	}
	if caller == "" || caller != interactor.badgeRegistry {
		return domain.ErrorUnauthorized
	}
	if !isPositive(amount) {
		return domain.ErrorInvalidAmount
	}

	sender, exist := interactor.book.Participants[from]
	if !exist || sender.StakedBalance.Cmp(amount) < 0 {
		return domain.ErrorInsufficientBalance
	}

	now := interactor.now()
	interactor.book.CheckpointAt(now, from)
	interactor.book.CheckpointAt(now, to)
	receiver := interactor.book.Participant(to)

	sender.StakedBalance = new(big.Int).Sub(sender.StakedBalance, amount)
	receiver.StakedBalance = new(big.Int).Add(receiver.StakedBalance, amount)

	log.Printf("stake moved %v [%v -> %v]\n", util.TokenString(amount), from, to)
	interactor.persist(sender, receiver)
	return nil
}

// SetFundingAuthority updates the identity permitted to fund reward periods.
// Owner only.
func (interactor *PoolInteractor) SetFundingAuthority(caller, address string) error {
	interactor.mutex.Lock()
	defer interactor.mutex.Unlock()

	if caller == "" || caller != interactor.ownerAddress {
		return domain.ErrorUnauthorized
	}
	interactor.fundingAuthority = address
	return nil
}

// SetBadgeRegistry updates the identity permitted to rebalance stake on
// badge transfers. Owner only.
func (interactor *PoolInteractor) SetBadgeRegistry(caller, address string) error {
	interactor.mutex.Lock()
	defer interactor.mutex.Unlock()

	if caller == "" || caller != interactor.ownerAddress {
		return domain.ErrorUnauthorized
	}
	interactor.badgeRegistry = address
	return nil
}

// Earned returns the reward claimable by the participant right now.
func (interactor *PoolInteractor) Earned(participant string) *big.Int {
	interactor.mutex.RLock()
	defer interactor.mutex.RUnlock()

	return interactor.book.EarnedAt(interactor.now(), participant)
}

func (interactor *PoolInteractor) StakedBalanceOf(participant string) *big.Int {
	interactor.mutex.RLock()
	defer interactor.mutex.RUnlock()

	p, exist := interactor.book.Participants[participant]
	if !exist {
		return big.NewInt(0)
	}
	return new(big.Int).Set(p.StakedBalance)
}

func (interactor *PoolInteractor) TotalStaked() *big.Int {
	interactor.mutex.RLock()
	defer interactor.mutex.RUnlock()

	return new(big.Int).Set(interactor.book.Global.TotalStaked)
}

// Status reports the pool state machine and the global accrual figures.
func (interactor *PoolInteractor) Status() *domain.PoolStatus {
	interactor.mutex.RLock()
	defer interactor.mutex.RUnlock()

	now := interactor.now()
	g := interactor.book.Global

	state := domain.PoolStateUninitialized
	switch {
	case !interactor.loaded:
	case g.RewardRate.Sign() == 0:
		state = domain.PoolStateIdle
	case now < g.PeriodFinish:
		state = domain.PoolStateActive
	default:
		state = domain.PoolStateExpired
	}

	return &domain.PoolStatus{
		State:          state,
		RewardRate:     new(big.Int).Set(g.RewardRate),
		PeriodFinish:   g.PeriodFinish,
		RewardPerToken: interactor.book.RewardPerTokenAt(now),
		TotalStaked:    new(big.Int).Set(g.TotalStaked),
		Participants:   len(interactor.book.Participants),
	}
}

func (interactor *PoolInteractor) ParticipantStatus(participant string) *domain.ParticipantStatus {
	interactor.mutex.RLock()
	defer interactor.mutex.RUnlock()

	status := &domain.ParticipantStatus{
		Address:       participant,
		StakedBalance: big.NewInt(0),
		Earned:        interactor.book.EarnedAt(interactor.now(), participant),
	}
	if p, exist := interactor.book.Participants[participant]; exist {
		status.StakedBalance = new(big.Int).Set(p.StakedBalance)
	}
	return status
}

// Snapshot persists the whole book. Scheduled periodically, it also repairs
// any write-behind persist that failed after a committed operation.
func (interactor *PoolInteractor) Snapshot() error {
	interactor.mutex.RLock()
	defer interactor.mutex.RUnlock()

	if !interactor.loaded {
		return domain.ErrorUninitialized
	}

	participants := make([]*domain.ParticipantState, 0, len(interactor.book.Participants))
	for _, p := range interactor.book.Participants {
		participants = append(participants, p)
	}

	err := interactor.poolRepository.Save(interactor.book.Global, participants...)
	if err != nil {
		exporter.IncErrorCount()
		log.Printf("🔴 snapshotting pool - %v\n", err.Error())
	}
	return err
}

// persist writes the committed state behind the operation. The in-memory
// book stays authoritative; a failed write is counted and left for the next
// snapshot to repair.
func (interactor *PoolInteractor) persist(participants ...*domain.ParticipantState) {
	err := interactor.poolRepository.Save(interactor.book.Global, participants...)
	if err != nil {
		exporter.IncErrorCount()
		log.Printf("🔴 persisting pool state - %v\n", err.Error())
	}
}

func isPositive(amount *big.Int) bool {
	return amount != nil && amount.Sign() > 0
}
