package compare

// SignificanceThreshold is the fixed band, in percent, inside which an
// average change is reported as noise.
const SignificanceThreshold = 5.0

// Verdict is the headline classification of an average delta.
type Verdict string

const (
	SignificantImprovement Verdict = "significant improvement"
	SignificantRegression  Verdict = "significant regression"
	NoSignificantChange    Verdict = "no significant change"
)

// VerdictFor classifies an average percent delta.
func VerdictFor(avgPercent float64) Verdict {
	switch {
	case avgPercent > SignificanceThreshold:
		return SignificantImprovement
	case avgPercent < -SignificanceThreshold:
		return SignificantRegression
	default:
		return NoSignificantChange
	}
}

// CompressionTier grades an average compression percent.
type CompressionTier string

const (
	StrongCompression   CompressionTier = "strong"
	ModerateCompression CompressionTier = "moderate"
	MarginalCompression CompressionTier = "marginal"
)

// TierFor grades compression: above 40% is strong, above 20% moderate.
func TierFor(avgPercent float64) CompressionTier {
	switch {
	case avgPercent > 40:
		return StrongCompression
	case avgPercent > 20:
		return ModerateCompression
	default:
		return MarginalCompression
	}
}
