package application

import (
	"math"

	"github.com/bnema/fireteam-cli/internal/domain"
)

// Score computes one result per record, in input order. Only members with a
// non-empty objective list for a record contribute to that record's result.
func Score(roster domain.Roster, records []domain.RecordDefinition, mode domain.CompletionMode) []domain.ScoreResult {
	results := make([]domain.ScoreResult, 0, len(records))
	for _, record := range records {
		results = append(results, ScoreRecord(roster, record, mode))
	}
	return results
}

func ScoreRecord(roster domain.Roster, record domain.RecordDefinition, mode domain.CompletionMode) domain.ScoreResult {
	result := domain.ScoreResult{Record: record, TimeToFinish: math.Inf(1)}

	var (
		fractions []float64
		remaining int
		waiting   int
		bestRatio = math.Inf(-1)
	)

	for _, member := range roster {
		objectives, ok := member.Objectives(record.Hash)
		if !ok {
			continue
		}

		sample := domain.MemberSample{
			MembershipID: member.Identity.MembershipID,
			DisplayName:  member.DisplayName,
			Total:        len(objectives),
		}
		for _, objective := range objectives {
			if objective.Complete {
				sample.Done++
				continue
			}

			if ratio := objective.Ratio(); ratio > bestRatio {
				bestRatio = ratio
				result.ClosestBlocker = &domain.Blocker{
					MembershipID: member.Identity.MembershipID,
					DisplayName:  member.DisplayName,
					Objective:    objective,
				}
			}
		}

		result.Samples = append(result.Samples, sample)
		fractions = append(fractions, sample.Fraction())

		if left := sample.Incomplete(); left > 0 {
			remaining += left
			waiting++
		}
	}

	result.Spread = spreadOf(fractions)
	result.CompletionScore = aggregate(fractions, result.Spread, mode)
	if waiting > 0 {
		result.TimeToFinish = float64(remaining) / float64(waiting)
	}
	result.Consistency = domain.ClassifyConsistency(fractions)
	result.Efficiency = domain.ClassifyEfficiency(result.TimeToFinish)

	return result
}

func aggregate(fractions []float64, spread domain.Spread, mode domain.CompletionMode) float64 {
	if len(fractions) == 0 {
		return 0
	}

	var score float64
	switch mode {
	case domain.CompletionWorst:
		score = spread.Min
	case domain.CompletionBest:
		score = spread.Max
	default:
		score = spread.Mean
	}
	return clampUnit(score)
}

func spreadOf(fractions []float64) domain.Spread {
	if len(fractions) == 0 {
		return domain.Spread{}
	}

	spread := domain.Spread{Min: fractions[0], Max: fractions[0]}
	sum := 0.0
	for _, fraction := range fractions {
		spread.Min = math.Min(spread.Min, fraction)
		spread.Max = math.Max(spread.Max, fraction)
		sum += fraction
	}
	spread.Mean = sum / float64(len(fractions))
	return spread
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Improvements lists records whose completion score rose between two passes.
// Records absent from prev are not reported.
func Improvements(prev, next []domain.ScoreResult) []uint32 {
	before := make(map[uint32]float64, len(prev))
	for _, result := range prev {
		before[result.Record.Hash] = result.CompletionScore
	}

	var improved []uint32
	for _, result := range next {
		old, ok := before[result.Record.Hash]
		if ok && result.CompletionScore > old {
			improved = append(improved, result.Record.Hash)
		}
	}
	return improved
}
