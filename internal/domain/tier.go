package domain

// MembershipTier represents a paid membership level.
// Tiers form a total order: free < tier1 < tier2 < tier3.
type MembershipTier string

const (
	// TierFree is the default tier for anonymous and unpaid viewers.
	TierFree MembershipTier = "free"
	// TierOne is the lowest paid tier.
	TierOne MembershipTier = "tier1"
	// TierTwo is the middle paid tier.
	TierTwo MembershipTier = "tier2"
	// TierThree is the highest paid tier.
	TierThree MembershipTier = "tier3"
)

// tierRanks maps each tier to its position in the order.
// Unknown tiers are absent and rank as free.
var tierRanks = map[MembershipTier]int{
	TierFree:  0,
	TierOne:   1,
	TierTwo:   2,
	TierThree: 3,
}

// Rank returns the tier's position in the total order.
// Unrecognized values rank as free so a corrupt tier can never grant access.
func (t MembershipTier) Rank() int {
	return tierRanks[t]
}

// IsValid reports whether t is one of the four known tiers.
func (t MembershipTier) IsValid() bool {
	_, ok := tierRanks[t]
	return ok
}

// IsPaid reports whether t is a paid tier.
func (t MembershipTier) IsPaid() bool {
	return t.Rank() > 0
}

// CompareTiers returns -1, 0, or 1 as a orders before, equal to, or after b.
// Unrecognized tiers compare as free.
func CompareTiers(a, b MembershipTier) int {
	ar, br := a.Rank(), b.Rank()
	switch {
	case ar < br:
		return -1
	case ar > br:
		return 1
	default:
		return 0
	}
}

// Meets reports whether t satisfies the required tier.
func (t MembershipTier) Meets(required MembershipTier) bool {
	return CompareTiers(t, required) >= 0
}

// ParseTier converts a raw string to a MembershipTier.
// Anything that is not a known tier becomes TierFree. A missing or corrupt
// tier must never be treated as an error that blocks rendering, and it must
// never silently grant access.
func ParseTier(raw string) MembershipTier {
	t := MembershipTier(raw)
	if !t.IsValid() {
		return TierFree
	}
	return t
}

// AllTiers returns the tiers in ascending order.
func AllTiers() []MembershipTier {
	return []MembershipTier{TierFree, TierOne, TierTwo, TierThree}
}
