package usecase

import (
	"distributor/domain"
	"fmt"
	"log"
	"math/big"
)

var (
	ErrorUnknownBadgeClass  = fmt.Errorf("no stake cost is defined for this badge class")
	ErrorIncompleteTransfer = fmt.Errorf("badge transfer needs a class and both holders")
)

// BadgeClassStore persists the per-class stake cost table consulted on badge
// ownership changes.
type BadgeClassStore interface {
	Find(name string) (*domain.BadgeClass, error)
	Upsert(name string, stakeCost *big.Int) (*domain.BadgeClass, error)
}

// BadgeInteractor receives badge ownership-change notifications from the
// badge ledger and rebalances staked amounts between the old and the new
// holder through the pool's internal transfer path.
type BadgeInteractor struct {
	pool            *PoolInteractor
	badgeRepository BadgeClassStore
	ownerAddress    string
	registryAddress string
}

func NewBadgeInteractor(pool *PoolInteractor,
	badgeRepository BadgeClassStore,
	ownerAddress string,
	registryAddress string) *BadgeInteractor {
	interactor := &BadgeInteractor{
		pool:            pool,
		badgeRepository: badgeRepository,
		ownerAddress:    ownerAddress,
		registryAddress: registryAddress,
	}
	return interactor
}

// HandleTransfer looks up the stake cost of the transferred badge's class and
// moves that amount of staked balance from the previous holder to the new
// one. A class with a zero cost needs no rebalancing.
func (interactor *BadgeInteractor) HandleTransfer(transfer *domain.BadgeTransfer) error {
	if transfer.Class == "" || transfer.From == "" || transfer.To == "" {
		return ErrorIncompleteTransfer
	}

	class, err := interactor.badgeRepository.Find(transfer.Class)
	if err != nil {
		log.Printf("🔴 loading badge class %v - %v\n", transfer.Class, err.Error())
		return err
	}
	if class == nil {
		return ErrorUnknownBadgeClass
	}

	if class.StakeCost.Sign() == 0 {
		log.Printf("🔵 badge moved [%v -> %v] - class %v carries no stake\n",
			transfer.From, transfer.To, transfer.Class)
		return nil
	}

	err = interactor.pool.TransferStake(interactor.registryAddress, transfer.From, transfer.To, class.StakeCost)
	if err != nil {
		log.Printf("🔴 rebalancing stake for badge class %v - %v\n", transfer.Class, err.Error())
		return err
	}

	log.Printf("badge moved [%v -> %v], %v stake follows\n", transfer.From, transfer.To, class.StakeCost)
	return nil
}

// SetStakeCost defines or updates a class's stake cost. Owner only.
func (interactor *BadgeInteractor) SetStakeCost(caller, class string, stakeCost *big.Int) (*domain.BadgeClass, error) {
	if caller == "" || caller != interactor.ownerAddress {
		return nil, domain.ErrorUnauthorized
	}
	if stakeCost == nil || stakeCost.Sign() < 0 {
		return nil, domain.ErrorInvalidAmount
	}

	return interactor.badgeRepository.Upsert(class, stakeCost)
}
