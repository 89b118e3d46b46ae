package util

import (
	"fmt"
	"math/big"

	"github.com/dustin/go-humanize"
)

func TokenString(amount *big.Int) string {
	return fmt.Sprintf("%v Token", humanize.BigComma(new(big.Int).Set(amount)))
}

func RewardString(amount *big.Int) string {
	return fmt.Sprintf("%v Reward", humanize.BigComma(new(big.Int).Set(amount)))
}

func RateString(rate *big.Int) string {
	return fmt.Sprintf("%v Reward/s", humanize.BigComma(new(big.Int).Set(rate)))
}
