// Package stamp implements evidential stamps: the ancestry of evidence IDs
// used to detect cyclic derivations and to gate revision on disjointness.
package stamp

import "github.com/google/uuid"

// DefaultMaxLength is the default bound on evidence-ID list length
// (stamp.maxLength in spec.md §6).
const DefaultMaxLength = 8

// Stamp is the evidential basis of a task: an ordered, bounded set of
// evidence IDs plus the logical cycle at which the sentence occurred and
// was created.
type Stamp struct {
	Evidence       []uuid.UUID
	OccurrenceTime int64
	CreationTime   int64
}

// NewInput creates a fresh stamp for an externally supplied sentence: a
// single, brand-new evidence ID.
func NewInput(cycle int64) Stamp {
	return Stamp{
		Evidence:       []uuid.UUID{uuid.New()},
		OccurrenceTime: cycle,
		CreationTime:   cycle,
	}
}

// contains reports whether id appears in s.Evidence.
func (s Stamp) contains(id uuid.UUID) bool {
	for _, e := range s.Evidence {
		if e == id {
			return true
		}
	}
	return false
}

// Disjoint reports whether s and other share no evidence IDs. Revision may
// only combine disjoint stamps (spec.md §4.2, §9).
func (s Stamp) Disjoint(other Stamp) bool {
	for _, e := range other.Evidence {
		if s.contains(e) {
			return false
		}
	}
	return true
}

// IsCyclic reports whether merging premise stamps would introduce a
// duplicate evidence ID, i.e. the derivation would double-count evidence
// from a shared ancestor. Spec.md §4.4/§4.10: checked against both
// premises before a derivation is accepted.
func IsCyclic(premises ...Stamp) bool {
	seen := make(map[uuid.UUID]bool)
	for _, p := range premises {
		for _, e := range p.Evidence {
			if seen[e] {
				return true
			}
			seen[e] = true
		}
	}
	return false
}

// Merge unions the evidence of s and other, truncating to maxLen by
// dropping the oldest entries (front of the slice) when over capacity.
func (s Stamp) Merge(other Stamp, maxLen int) Stamp {
	merged := make([]uuid.UUID, 0, len(s.Evidence)+len(other.Evidence))
	seen := make(map[uuid.UUID]bool, cap(merged))
	for _, e := range s.Evidence {
		if !seen[e] {
			merged = append(merged, e)
			seen[e] = true
		}
	}
	for _, e := range other.Evidence {
		if !seen[e] {
			merged = append(merged, e)
			seen[e] = true
		}
	}
	if maxLen > 0 && len(merged) > maxLen {
		merged = merged[len(merged)-maxLen:]
	}

	occ := s.OccurrenceTime
	if other.OccurrenceTime > occ {
		occ = other.OccurrenceTime
	}
	return Stamp{Evidence: merged, OccurrenceTime: occ, CreationTime: occ}
}

// Depth estimates how deep in a derivation chain this stamp lies, used by
// the ReasoningCycle's maxDerivationDepth guard. A fresh input has depth 1;
// each evidence ID folded in by a derivation step increases it by one, so
// len(Evidence) is a reasonable proxy bounded by maxLength.
func (s Stamp) Depth() int {
	return len(s.Evidence)
}
