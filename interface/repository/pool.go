package repository

import (
	"distributor/domain"
	"math/big"

	"github.com/behrang/sqlbatch"
	"github.com/pkg/errors"
)

const (
	sqlStateUpsert = `
	insert into accrual_state as s (
			id, reward_rate, period_finish, last_update_time, reward_per_token_stored, total_staked
		)
		values (
			1, $1::numeric, $2, $3, $4::numeric, $5::numeric
		)
	on conflict (id) do
		update set
			reward_rate = $1::numeric,
			period_finish = $2,
			last_update_time = $3,
			reward_per_token_stored = $4::numeric,
			total_staked = $5::numeric
`

	sqlStateFind = `
	select
		reward_rate::text, period_finish, last_update_time, reward_per_token_stored::text, total_staked::text
	from accrual_state
	where id = 1
`

	sqlParticipantUpsert = `
	insert into participants as p (
			address, staked_balance, reward_per_token_paid, accrued_rewards
		)
		values (
			$1, $2::numeric, $3::numeric, $4::numeric
		)
	on conflict (address) do
		update set
			staked_balance = $2::numeric,
			reward_per_token_paid = $3::numeric,
			accrued_rewards = $4::numeric
`

	sqlParticipantFind = `
	select
		address, staked_balance::text, reward_per_token_paid::text, accrued_rewards::text
	from participants
	where address = $1
`

	sqlParticipantFindAll = `
	select
		address, staked_balance::text, reward_per_token_paid::text, accrued_rewards::text
	from participants
`
)

type PoolRepository struct {
	batchHandler BatchHandler
}

func NewPoolRepository(db BatchHandler) *PoolRepository {
	return &PoolRepository{batchHandler: db}
}

func parseNumeric(value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, errors.Errorf("unparsable numeric column value %q", value)
	}
	return parsed, nil
}

func readState(scan func(...interface{}) error) (interface{}, error) {
	s := domain.AccrualState{}
	var rate, perToken, total string
	err := scan(
		&rate, &s.PeriodFinish, &s.LastUpdateTime, &perToken, &total,
	)
	if err != nil {
		return &s, err
	}
	if s.RewardRate, err = parseNumeric(rate); err != nil {
		return &s, err
	}
	if s.RewardPerTokenStored, err = parseNumeric(perToken); err != nil {
		return &s, err
	}
	s.TotalStaked, err = parseNumeric(total)
	return &s, err
}

func readParticipant(scan func(...interface{}) error) (interface{}, error) {
	p := domain.ParticipantState{}
	var staked, paid, accrued string
	err := scan(
		&p.Address, &staked, &paid, &accrued,
	)
	if err != nil {
		return &p, err
	}
	if p.StakedBalance, err = parseNumeric(staked); err != nil {
		return &p, err
	}
	if p.RewardPerTokenPaid, err = parseNumeric(paid); err != nil {
		return &p, err
	}
	p.AccruedRewards, err = parseNumeric(accrued)
	return &p, err
}

func readAllParticipants(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	result, err := readParticipant(scan)
	list := memo.([]*domain.ParticipantState)
	if err != nil {
		return list, err
	}
	list = append(list, result.(*domain.ParticipantState))
	return list, nil
}

// Save writes the global accrual state together with the given participant
// rows in a single transaction, so a committed operation lands durably as a
// whole or not at all.
func (repo *PoolRepository) Save(state *domain.AccrualState, participants ...*domain.ParticipantState) error {
	commands := make([]sqlbatch.Command, 0, len(participants)+1)
	commands = append(commands, sqlbatch.Command{
		Query: sqlStateUpsert,
		Args: []interface{}{
			state.RewardRate.String(), state.PeriodFinish, state.LastUpdateTime,
			state.RewardPerTokenStored.String(), state.TotalStaked.String(),
		},
		Affect: 1,
	})
	for _, p := range participants {
		commands = append(commands, sqlbatch.Command{
			Query: sqlParticipantUpsert,
			Args: []interface{}{
				p.Address, p.StakedBalance.String(), p.RewardPerTokenPaid.String(), p.AccruedRewards.String(),
			},
			Affect: 1,
		})
	}

	_, err := repo.batchHandler.Batch(&BatchOptionNormal, commands)
	return err
}

// FindState returns nil without error when no state row has been written yet.
func (repo *PoolRepository) FindState() (*domain.AccrualState, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlStateFind,
			ReadOne: readState,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.AccrualState)
	return result, nil
}

func (repo *PoolRepository) FindParticipant(address string) (*domain.ParticipantState, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlParticipantFind,
			Args:    []interface{}{address},
			ReadOne: readParticipant,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.ParticipantState)
	return result, nil
}

func (repo *PoolRepository) FindAllParticipants() ([]*domain.ParticipantState, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlParticipantFindAll,
			Init:    make([]*domain.ParticipantState, 0),
			ReadAll: readAllParticipants,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].([]*domain.ParticipantState)
	return result, nil
}
