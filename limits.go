package pager

const (
	MaxLimit     = 100
	DefaultLimit = 10
)

// IsNormalizedLimitMax clamps limit into [1, maxLimit]. A non-positive limit
// falls back to DefaultLimit (or maxLimit when it is smaller). The boolean is
// true when limit was already in range.
func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}

	if limit <= 0 {
		return min(DefaultLimit, maxLimit), false
	} else if limit > maxLimit {
		return maxLimit, false
	}

	return limit, true
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}

// NormalizePage clamps a 1-based page number to at least 1.
func NormalizePage(page int) int {
	return max(page, 1)
}
