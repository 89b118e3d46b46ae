package domain

import "math/big"

// TokenLedger is the fungible-balance collaborator holding the base and
// reward tokens. Every call crosses a service boundary and may fail; a
// failure aborts the pool operation that requested it.
type TokenLedger interface {
	// Transfer pushes tokens out of the custody account.
	Transfer(to string, amount *big.Int) error
	// TransferFrom pulls tokens a participant has approved into custody.
	TransferFrom(from, to string, amount *big.Int) error
	BalanceOf(owner string) (*big.Int, error)
}

// BadgeRegistry is the membership-badge collaborator. It is notified after a
// withdrawal so it can re-evaluate the stake requirement backing any badge
// the participant holds.
type BadgeRegistry interface {
	OnStakeChanged(participant string, staked *big.Int) error
}

// BadgeClass maps a badge class to the staked amount that must follow the
// badge when its ownership changes.
type BadgeClass struct {
	Name      string   `json:"name"`
	StakeCost *big.Int `json:"stake_cost"`
}

// BadgeTransfer is an ownership-change notification received from the badge
// ledger.
type BadgeTransfer struct {
	Class string `json:"class"`
	From  string `json:"from"`
	To    string `json:"to"`
}
