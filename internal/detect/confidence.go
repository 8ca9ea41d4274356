package detect

import "docsync/internal/domain"

// changeTypePriority orders categories by how consequential they are for
// re-indexing. The first matching category wins even when several changed at
// once.
var changeTypePriority = []domain.ChangeType{
	domain.ChangeStructure,
	domain.ChangeContent,
	domain.ChangeMetadata,
}

func primaryChangeType(changes []domain.ChangeType) domain.ChangeType {
	for _, candidate := range changeTypePriority {
		for _, ct := range changes {
			if ct == candidate {
				return candidate
			}
		}
	}
	return changes[0]
}

// confidence estimates change significance in [0,1]: the per-category scores
// are computed independently and the maximum is taken, not the sum. Zero old
// counts are guarded so the ratios never divide by zero.
func confidence(old, fresh domain.ContentFingerprint, changes []domain.ChangeType) float64 {
	score := 0.0

	for _, ct := range changes {
		switch ct {
		case domain.ChangeContent:
			ratio := absRatio(fresh.WordCount, old.WordCount)
			score = max(score, min(ratio*2, 1.0))
		case domain.ChangeStructure:
			ratio := absRatio(fresh.SectionCount, old.SectionCount)
			score = max(score, min(ratio*3, 1.0))
		case domain.ChangeMetadata:
			if old.Title != fresh.Title {
				score = max(score, 0.8)
			} else {
				score = max(score, 0.3)
			}
		}
	}

	return min(score, 1.0)
}

func absRatio(newCount, oldCount int) float64 {
	delta := newCount - oldCount
	if delta < 0 {
		delta = -delta
	}
	denom := oldCount
	if denom < 1 {
		denom = 1
	}
	return float64(delta) / float64(denom)
}
