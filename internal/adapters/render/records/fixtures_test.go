package records

import (
	"math"
	"time"

	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/domain"
)

var (
	recordRaid = domain.RecordDefinition{Hash: 100, Name: "Flawless Raider", ObjectiveHashes: []uint32{1000}, GroupID: "raids"}
	recordPvP  = domain.RecordDefinition{Hash: 200, Name: "Crucible Regular", ObjectiveHashes: []uint32{2000}, GroupID: "pvp"}
)

func testCatalog() domain.Catalog {
	return domain.Catalog{
		Records: []domain.RecordDefinition{recordRaid, recordPvP},
		Groups: []domain.Group{
			{ID: "raids", Name: "Raids", Members: []domain.RecordDefinition{recordRaid}},
			{ID: "pvp", Name: "Crucible", Members: []domain.RecordDefinition{recordPvP}},
		},
		Objectives: map[uint32]domain.ObjectiveDefinition{
			1000: {Hash: 1000, Description: "Raid clears", CompletionValue: 10},
			2000: {Hash: 2000, Description: "Matches won", CompletionValue: 50},
		},
	}
}

func member(id, name string, raid, pvp int64) domain.MemberSnapshot {
	return domain.MemberSnapshot{
		Identity:    domain.Identity{Platform: domain.PlatformSteam, MembershipID: id},
		DisplayName: name,
		Character:   domain.Character{ID: "c-" + id, ClassType: 2, Light: 1810},
		Profile: domain.Profile{
			Records: map[uint32][]domain.ObjectiveProgress{
				100: {{ObjectiveHash: 1000, Progress: raid, CompletionValue: 10, Complete: raid >= 10, Visible: true}},
				200: {{ObjectiveHash: 2000, Progress: pvp, CompletionValue: 50, Complete: pvp >= 50, Visible: true}},
			},
		},
	}
}

func testSnapshot(generation uint64, roster domain.Roster) *domain.Snapshot {
	catalog := testCatalog()
	return &domain.Snapshot{
		Generation:  generation,
		Self:        roster[0],
		Roster:      roster,
		Catalog:     catalog,
		Mode:        domain.CompletionAverage,
		Scores:      application.Score(roster, catalog.Records, domain.CompletionAverage),
		CompletedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func unestimable(record domain.RecordDefinition) domain.ScoreResult {
	return domain.ScoreResult{Record: record, TimeToFinish: math.Inf(1), Efficiency: domain.ClassifyEfficiency(math.Inf(1))}
}
