package numeric

import "math"

// DistributeVolume splits a total rep volume across buckets proportionally to
// ratios. Ratios are normalized first, so any positive scale works. Each
// bucket's share is rounded, then the largest bucket absorbs the rounding
// drift so the result sums to exactly round(total). Non-positive ratios are
// treated as zero; if every ratio is zero the split is uniform.
func DistributeVolume(total float64, ratios []float64) []int {
	if len(ratios) == 0 {
		return nil
	}

	target := Round(total)
	if target < 0 {
		target = 0
	}

	norm := make([]float64, len(ratios))
	sum := 0.0
	for i, r := range ratios {
		if r > 0 {
			norm[i] = r
			sum += r
		}
	}
	if sum == 0 {
		for i := range norm {
			norm[i] = 1
		}
		sum = float64(len(norm))
	}

	out := make([]int, len(ratios))
	allocated := 0
	largest := 0
	for i, r := range norm {
		out[i] = Round(total * r / sum)
		allocated += out[i]
		if norm[i] > norm[largest] {
			largest = i
		}
	}

	// Exact reconciliation: nudge the largest bucket by the rounding drift.
	out[largest] += target - allocated
	if out[largest] < 0 {
		out[largest] = 0
	}
	return out
}

// VolumeToSetsReps converts a target day volume into a sets×reps pair using
// the shared bucket heuristic: totals under 30 reps use 3 sets, under 60 use
// 4, anything larger uses 5. Reps are clamped to [minReps, maxReps]; when the
// clamp bites, sets are re-derived from the clamped reps so the day volume
// stays close to target, bounded to [minSets, maxSets].
func VolumeToSetsReps(total float64, minSets, maxSets, minReps, maxReps int) (sets, reps int) {
	switch {
	case total < 30:
		sets = 3
	case total < 60:
		sets = 4
	default:
		sets = 5
	}

	raw := Round(total / float64(sets))
	reps = ClampInt(raw, minReps, maxReps)
	if reps != raw && reps > 0 {
		sets = ClampInt(Round(total/float64(reps)), minSets, maxSets)
	}
	sets = ClampInt(sets, minSets, maxSets)
	return sets, reps
}

// Ceil returns ceil(v) as an int.
func Ceil(v float64) int {
	return int(math.Ceil(v))
}
