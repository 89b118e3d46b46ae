package exporter

import (
	"distributor/domain"
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	METRIC_ERROR_COUNT   = "error_count"
	METRIC_TOTAL_STAKED  = "total_staked"
	METRIC_REWARD_RATE   = "reward_rate"
	METRIC_PERIOD_FINISH = "period_finish_seconds"
	METRIC_PARTICIPANTS  = "participant_count"
)

var (
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
)

func Init() {

	// --- Static Metrics: the metrics which are not depended on running configuration

	// Create metric spaces
	counters = make(map[string]prometheus.Counter)
	gauges = make(map[string]prometheus.Gauge)

	// Register metrics
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "staking",
		Subsystem: "distributor",
		Name:      METRIC_ERROR_COUNT,
		Help:      "Counts the number of failed operations and collaborator calls",
	})
	prometheus.MustRegister(counter)
	counters[METRIC_ERROR_COUNT] = counter

	for name, help := range map[string]string{
		METRIC_TOTAL_STAKED:  "Sum of all participants' staked balances",
		METRIC_REWARD_RATE:   "Reward units accrued per second in the current period",
		METRIC_PERIOD_FINISH: "Unix timestamp at which the funded reward period ends",
		METRIC_PARTICIPANTS:  "Number of participant records in the accrual book",
	} {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "staking",
			Subsystem: "distributor",
			Name:      name,
			Help:      help,
		})
		prometheus.MustRegister(gauge)
		gauges[name] = gauge
	}
}

func GetCounter(name string) prometheus.Counter {
	return counters[name]
}

func IncErrorCount() {
	if counter, exist := counters[METRIC_ERROR_COUNT]; exist {
		counter.Inc()
	}
}

// Refresh publishes the pool's current figures. Precision loss in the
// big.Int to float conversion only affects the exported metric.
func Refresh(status *domain.PoolStatus) {
	setGauge(METRIC_TOTAL_STAKED, bigFloat(status.TotalStaked))
	setGauge(METRIC_REWARD_RATE, bigFloat(status.RewardRate))
	setGauge(METRIC_PERIOD_FINISH, float64(status.PeriodFinish))
	setGauge(METRIC_PARTICIPANTS, float64(status.Participants))
}

func setGauge(name string, value float64) {
	if gauge, exist := gauges[name]; exist {
		gauge.Set(value)
	}
}

func bigFloat(value *big.Int) float64 {
	f, _ := new(big.Float).SetInt(value).Float64()
	return f
}
