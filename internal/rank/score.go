package rank

import (
	"fmt"

	"github.com/lukman83/trustrank/internal/models"
)

// AgeTier buckets an account creation time. Older accounts rank higher.
type AgeTier int

const (
	TierNew AgeTier = iota
	TierRecent
	TierOld
	TierVeryOld
)

func (t AgeTier) String() string {
	switch t {
	case TierVeryOld:
		return "very-old"
	case TierOld:
		return "old"
	case TierRecent:
		return "recent"
	default:
		return "new"
	}
}

// Milestones are the Unix ctime cut-offs between age tiers, roughly 36, 12
// and 6 months before the scoring baseline.
type Milestones struct {
	VeryOld int64 // ctime <= VeryOld
	Old     int64 // ctime < Old
	Recent  int64 // ctime < Recent
}

func DefaultMilestones() Milestones {
	return Milestones{
		VeryOld: 1530000231,
		Old:     1595098010,
		Recent:  1610230711,
	}
}

func (m Milestones) Validate() error {
	if !(m.VeryOld < m.Old && m.Old < m.Recent) {
		return fmt.Errorf("milestones must be increasing: very-old %d, old %d, recent %d", m.VeryOld, m.Old, m.Recent)
	}
	return nil
}

// Classify evaluates tiers oldest-first.
func (m Milestones) Classify(ctime int64) AgeTier {
	switch {
	case ctime <= m.VeryOld:
		return TierVeryOld
	case ctime < m.Old:
		return TierOld
	case ctime < m.Recent:
		return TierRecent
	default:
		return TierNew
	}
}

var (
	shopAgePoints = map[AgeTier]float64{TierVeryOld: 2, TierOld: 1, TierRecent: 0.25}
	userAgePoints = map[AgeTier]float64{TierVeryOld: 10, TierOld: 7, TierRecent: 3}
)

const MaxShopPoint = 10.0

// Scorer holds no mutable state and is safe for concurrent use.
type Scorer struct {
	milestones Milestones
}

func NewScorer(m Milestones) *Scorer {
	return &Scorer{milestones: m}
}

// ShopPoint sums independent rule contributions for a seller profile.
func (s *Scorer) ShopPoint(p models.ShopProfile) float64 {
	var point float64
	if p.EmailVerified {
		point += 0.5
	}
	if p.PhoneVerified {
		point += 0.5
	}
	if p.IsOfficialShop {
		point += 3
	}

	point += shopAgePoints[s.milestones.Classify(p.CTime)]

	switch volume := p.ReviewVolume(); {
	case volume >= 1000:
		point += 2
	case volume >= 500:
		point += 1
	}

	switch {
	case p.RatingStar >= 4.5:
		point += 2
	case p.RatingStar >= 4:
		point += 0.5
	}

	return point
}

// UserPoint is the mean age-tier point over the reviewer profiles actually
// obtained. Reviewers whose profile could not be fetched are not counted.
func (s *Scorer) UserPoint(profiles []models.ShopProfile) float64 {
	if len(profiles) == 0 {
		return 0
	}
	var sum float64
	for _, p := range profiles {
		sum += userAgePoints[s.milestones.Classify(p.CTime)]
	}
	return sum / float64(len(profiles))
}
