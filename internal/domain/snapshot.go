package domain

import "time"

// Snapshot is the immutable output of one aggregation pass.
type Snapshot struct {
	PassID      string
	Generation  uint64
	Self        MemberSnapshot
	Roster      Roster
	Catalog     Catalog
	Mode        CompletionMode
	Scores      []ScoreResult
	CompletedAt time.Time
}

func (s *Snapshot) Score(hash uint32) (ScoreResult, bool) {
	if s == nil {
		return ScoreResult{}, false
	}
	for _, score := range s.Scores {
		if score.Record.Hash == hash {
			return score, true
		}
	}
	return ScoreResult{}, false
}
