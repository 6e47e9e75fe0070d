package engine

// Blending constants. The output range deliberately never reaches 0 or 1:
// downstream consumers must not treat a category as ground truth.
const (
	confidenceFloor = 0.30
	confidenceCeil  = 0.95

	primaryWeight    = 0.6
	historicalWeight = 0.4

	// MinHistorySamples is the smallest feedback sample that counts as
	// usable history for a category.
	MinHistorySamples = 5
)

// Blend combines the primary classifier's confidence with historical
// per-category accuracy into one bounded score. Without history the
// primary confidence is clamped as-is.
func Blend(primary, historical float64, hasHistory bool) float64 {
	if !hasHistory {
		return clamp(primary)
	}
	return clamp(primaryWeight*primary + historicalWeight*historical)
}

// BlendFallback passes a fallback tier confidence through unchanged. Tiers
// are already within the output range; skipping the blend keeps the
// failure path fast.
func BlendFallback(tier float64) float64 {
	return tier
}

func clamp(v float64) float64 {
	if v < confidenceFloor {
		return confidenceFloor
	}
	if v > confidenceCeil {
		return confidenceCeil
	}
	return v
}
