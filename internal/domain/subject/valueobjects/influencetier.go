package valueobjects

// InfluenceTier classifies a healthcare professional's reach.
type InfluenceTier string

const (
	TierKeyOpinionLeader InfluenceTier = "kol"
	TierHigh             InfluenceTier = "high"
	TierMedium           InfluenceTier = "medium"
	TierLow              InfluenceTier = "low"
)

func (t InfluenceTier) String() string {
	return string(t)
}

func (t InfluenceTier) IsValid() bool {
	switch t {
	case TierKeyOpinionLeader, TierHigh, TierMedium, TierLow:
		return true
	}
	return false
}
