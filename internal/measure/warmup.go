package measure

import "time"

// Warmup floors by per-call cost. Cheap calls need many more untimed runs
// before the loop reaches steady state.
const (
	WarmupSubMicro  = 500
	WarmupSubMilli  = 100
	WarmupExpensive = 10
)

// RecommendWarmup picks a warmup count from the cost of one call. It never
// returns zero.
func RecommendWarmup(cost time.Duration) int {
	switch {
	case cost < time.Microsecond:
		return WarmupSubMicro
	case cost < time.Millisecond:
		return WarmupSubMilli
	default:
		return WarmupExpensive
	}
}
