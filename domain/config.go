package domain

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrorNoOwnerAddress          = fmt.Errorf("no owner address is defined")
	ErrorNoCustodyAddress        = fmt.Errorf("no custody address is defined")
	ErrorInvalidRewardDuration   = fmt.Errorf("invalid reward period duration")
	ErrorInvalidSnapshotInterval = fmt.Errorf("invalid time interval for snapshot process")
	ErrorInvalidRefreshInterval  = fmt.Errorf("invalid time interval for metric refresh process")
)

var (
	TrailingSlashRE = regexp.MustCompile("/+$")
)

var (
	dbUri string

	ownerAddress     string
	custodyAddress   string
	fundingAuthority string
	badgeRegistry    string

	baseTokenUrl     string
	rewardTokenUrl   string
	badgeRegistryUrl string
	listenAddress    string

	rewardDuration   time.Duration
	snapshotInterval time.Duration
	refreshInterval  time.Duration
)

func ReadConfig(filePath string) {
	viper.SetConfigFile(filePath)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("⚠️ Failed reading config file: %v\n", err.Error())
	}

	err := initializeVariables()
	if err != nil {
		log.Fatalf("Configuration error - %v\n", err.Error())
	}
}

// This method processes the configuration parameters and keeps the processed
// values in some variables for later accesses rapidly.
func initializeVariables() error {
	var err error

	// Database stuff
	dbUri = TrailingSlashRE.ReplaceAllString(viper.GetString("service_db_uri"), "")

	// Identity stuff
	ownerAddress = strings.TrimSpace(viper.GetString("owner_address"))
	if ownerAddress == "" {
		return ErrorNoOwnerAddress
	}

	custodyAddress = strings.TrimSpace(viper.GetString("custody_address"))
	if custodyAddress == "" {
		return ErrorNoCustodyAddress
	}

	// The funding authority and the badge registry may be wired later through
	// the owner-only setters, so both are allowed to start out empty.
	fundingAuthority = strings.TrimSpace(viper.GetString("funding_authority"))
	badgeRegistry = strings.TrimSpace(viper.GetString("badge_registry"))

	// Collaborator endpoints
	baseTokenUrl = TrailingSlashRE.ReplaceAllString(strings.TrimSpace(viper.GetString("base_token_url")), "")
	rewardTokenUrl = TrailingSlashRE.ReplaceAllString(strings.TrimSpace(viper.GetString("reward_token_url")), "")
	badgeRegistryUrl = TrailingSlashRE.ReplaceAllString(strings.TrimSpace(viper.GetString("badge_registry_url")), "")

	listenAddress = strings.TrimSpace(viper.GetString("listen_address"))
	if listenAddress == "" {
		listenAddress = ":8080"
	}

	//---------------------------------------------------------------
	// reward period duration
	strValue := viper.GetString("reward_duration")
	rewardDuration, err = time.ParseDuration(strValue)
	if err != nil || rewardDuration <= 0 {
		return ErrorInvalidRewardDuration
	}

	//---------------------------------------------------------------
	// snapshot interval
	strValue = viper.GetString("snapshot_interval")
	snapshotInterval, err = time.ParseDuration(strValue)
	if err != nil {
		return ErrorInvalidSnapshotInterval
	}

	//---------------------------------------------------------------
	// metric refresh interval
	strValue = viper.GetString("refresh_interval")
	refreshInterval, err = time.ParseDuration(strValue)
	if err != nil {
		return ErrorInvalidRefreshInterval
	}

	return nil
}

//-------------------------------------------------------------------
// Normal configuration values

func GetDbUri() string {
	return dbUri
}

func GetOwnerAddress() string {
	return ownerAddress
}

func GetCustodyAddress() string {
	return custodyAddress
}

func GetFundingAuthority() string {
	return fundingAuthority
}

func GetBadgeRegistry() string {
	return badgeRegistry
}

func GetBaseTokenUrl() string {
	return baseTokenUrl
}

func GetRewardTokenUrl() string {
	return rewardTokenUrl
}

func GetBadgeRegistryUrl() string {
	return badgeRegistryUrl
}

func GetListenAddress() string {
	return listenAddress
}

func GetRewardDuration() time.Duration {
	return rewardDuration
}

func GetSnapshotInterval() time.Duration {
	return snapshotInterval
}

func GetRefreshInterval() time.Duration {
	return refreshInterval
}
