package repository

import (
	"distributor/domain"
	"math/big"

	"github.com/behrang/sqlbatch"
)

const (
	sqlBadgeClassUpsert = `
	insert into badge_classes as b (
			name, stake_cost
		)
		values (
			$1, $2::numeric
		)
	on conflict (name) do
		update set
			stake_cost = $2::numeric
`

	sqlBadgeClassFind = `
	select
		name, stake_cost::text
	from badge_classes
	where name = $1
`
)

type BadgeRepository struct {
	batchHandler BatchHandler
}

func NewBadgeRepository(db BatchHandler) *BadgeRepository {
	return &BadgeRepository{batchHandler: db}
}

func readBadgeClass(scan func(...interface{}) error) (interface{}, error) {
	c := domain.BadgeClass{}
	var cost string
	err := scan(
		&c.Name, &cost,
	)
	if err != nil {
		return &c, err
	}
	c.StakeCost, err = parseNumeric(cost)
	return &c, err
}

func (repo *BadgeRepository) Upsert(name string, stakeCost *big.Int) (*domain.BadgeClass, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query: sqlBadgeClassUpsert,
			Args: []interface{}{
				name, stakeCost.String(),
			},
			Affect: 1,
		},
		{
			Query:   sqlBadgeClassFind,
			Args:    []interface{}{name},
			ReadOne: readBadgeClass,
		},
	})
	if err != nil {
		return nil, err
	}

	result, _ := results[1].(*domain.BadgeClass)
	return result, nil
}

func (repo *BadgeRepository) Find(name string) (*domain.BadgeClass, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlBadgeClassFind,
			Args:    []interface{}{name},
			ReadOne: readBadgeClass,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.BadgeClass)
	return result, nil
}
