package cmd

import (
	"distributor/domain"
	"distributor/interface/api"
	"distributor/interface/ledgerclient"
	"distributor/interface/repository"
	"distributor/usecase"
	"log"

	"distributor/infrastructure/dbhandler"
)

func defaultDependencyInject() {
	dbHandler, err := dbhandler.New(domain.GetDbUri())
	if err != nil {
		log.Fatal(err)
	}

	poolRepository := repository.NewPoolRepository(dbHandler)
	badgeRepository := repository.NewBadgeRepository(dbHandler)

	baseToken := ledgerclient.NewTokenClient(domain.GetBaseTokenUrl(), domain.GetCustodyAddress())
	rewardToken := ledgerclient.NewTokenClient(domain.GetRewardTokenUrl(), domain.GetCustodyAddress())
	badgeNotifier := ledgerclient.NewBadgeClient(domain.GetBadgeRegistryUrl())

	poolInteractor = usecase.NewPoolInteractor(
		baseToken,
		rewardToken,
		badgeNotifier,
		poolRepository,
		domain.GetOwnerAddress(),
		domain.GetCustodyAddress(),
		domain.GetFundingAuthority(),
		domain.GetBadgeRegistry(),
		domain.GetRewardDuration())
	badgeInteractor = usecase.NewBadgeInteractor(
		poolInteractor,
		badgeRepository,
		domain.GetOwnerAddress(),
		domain.GetBadgeRegistry())
	poolAPI = api.New(poolInteractor, badgeInteractor)
}

var poolInteractor *usecase.PoolInteractor
var badgeInteractor *usecase.BadgeInteractor
var poolAPI *api.PoolAPI
