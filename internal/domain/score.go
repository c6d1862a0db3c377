package domain

import (
	"fmt"
	"math"
	"strings"
)

type CompletionMode string

const (
	CompletionAverage CompletionMode = "avg"
	CompletionWorst   CompletionMode = "worst"
	CompletionBest    CompletionMode = "best"
)

func ParseCompletionMode(raw string) (CompletionMode, error) {
	switch CompletionMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", CompletionAverage, "average", "mean":
		return CompletionAverage, nil
	case CompletionWorst, "min":
		return CompletionWorst, nil
	case CompletionBest, "max":
		return CompletionBest, nil
	default:
		return "", fmt.Errorf("unsupported completion mode %q", raw)
	}
}

// Next cycles avg, worst, best.
func (m CompletionMode) Next() CompletionMode {
	switch m {
	case CompletionAverage:
		return CompletionWorst
	case CompletionWorst:
		return CompletionBest
	default:
		return CompletionAverage
	}
}

type Consistency string

const (
	ConsistencyUnknown    Consistency = ""
	ConsistencyAllNeed    Consistency = "All need"
	ConsistencyAllDone    Consistency = "All done"
	ConsistencyOneHoldout Consistency = "One holdout"
	ConsistencyMixed      Consistency = "Mixed"
)

// ClassifyConsistency labels member completion fractions by how many are at 100%.
func ClassifyConsistency(fractions []float64) Consistency {
	if len(fractions) == 0 {
		return ConsistencyUnknown
	}

	done := 0
	for _, fraction := range fractions {
		if fraction >= 1 {
			done++
		}
	}

	switch {
	case done == 0:
		return ConsistencyAllNeed
	case done == len(fractions):
		return ConsistencyAllDone
	case done == len(fractions)-1:
		return ConsistencyOneHoldout
	default:
		return ConsistencyMixed
	}
}

type Efficiency string

const (
	EfficiencyHigh   Efficiency = "High value"
	EfficiencyMedium Efficiency = "Medium value"
	EfficiencyLow    Efficiency = "Low value"
)

func ClassifyEfficiency(timeToFinish float64) Efficiency {
	switch {
	case timeToFinish < 1.5:
		return EfficiencyHigh
	case timeToFinish < 3:
		return EfficiencyMedium
	default:
		return EfficiencyLow
	}
}

type MemberSample struct {
	MembershipID string
	DisplayName  string
	Done         int
	Total        int
}

func (s MemberSample) Fraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Done) / float64(s.Total)
}

func (s MemberSample) Incomplete() int {
	return s.Total - s.Done
}

type Blocker struct {
	MembershipID string
	DisplayName  string
	Objective    ObjectiveProgress
}

type Spread struct {
	Min  float64
	Max  float64
	Mean float64
}

type ScoreResult struct {
	Record          RecordDefinition
	CompletionScore float64
	// TimeToFinish is +Inf when no visible member has an incomplete objective.
	TimeToFinish   float64
	Consistency    Consistency
	Efficiency     Efficiency
	ClosestBlocker *Blocker
	Samples        []MemberSample
	Spread         Spread
}

func (s ScoreResult) Completed() bool {
	return s.CompletionScore >= 1
}

func (s ScoreResult) NearlyDone() bool {
	return s.CompletionScore >= 0.1 && s.CompletionScore < 1
}

// Divergent reports whether members disagree enough to show a spread.
func (s ScoreResult) Divergent() bool {
	return len(s.Samples) > 1 && s.Spread.Min != s.Spread.Max
}

func (s ScoreResult) Estimable() bool {
	return !math.IsInf(s.TimeToFinish, 1)
}
