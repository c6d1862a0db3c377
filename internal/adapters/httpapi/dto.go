package httpapi

import (
	"time"

	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/domain"
)

type RecordsResponse struct {
	Group       string           `json:"group"`
	Name        string           `json:"name"`
	Mode        string           `json:"mode"`
	Sort        string           `json:"sort"`
	Total       int              `json:"total"`
	HasMore     bool             `json:"has_more"`
	Generation  uint64           `json:"generation"`
	CompletedAt time.Time        `json:"completed_at"`
	Records     []RecordResponse `json:"records"`
}

type RecordResponse struct {
	Hash            uint32           `json:"hash"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Group           string           `json:"group,omitempty"`
	CompletionScore float64          `json:"completion_score"`
	// TimeToFinish is null when no visible member has anything left to do.
	TimeToFinish   *float64         `json:"time_to_finish"`
	Consistency    string           `json:"consistency,omitempty"`
	Efficiency     string           `json:"efficiency,omitempty"`
	ClosestBlocker *BlockerResponse `json:"closest_blocker,omitempty"`
	Spread         SpreadResponse   `json:"spread"`
	Members        []MemberResponse `json:"members"`
}

type BlockerResponse struct {
	MembershipID    string `json:"membership_id"`
	DisplayName     string `json:"display_name"`
	ObjectiveHash   uint32 `json:"objective_hash"`
	Description     string `json:"description,omitempty"`
	Progress        int64  `json:"progress"`
	CompletionValue int64  `json:"completion_value"`
}

type SpreadResponse struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

type MemberResponse struct {
	MembershipID string `json:"membership_id"`
	DisplayName  string `json:"display_name"`
	Done         int    `json:"done"`
	Total        int    `json:"total"`
}

type GroupResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	MeanScore float64 `json:"mean_score"`
}

// ProfileResponse mirrors domain.Profile. Record maps stay null when the
// component was not returned.
type ProfileResponse struct {
	MembershipID     string                                    `json:"membership_id"`
	Platform         int                                       `json:"platform"`
	DisplayName      string                                    `json:"display_name"`
	Characters       []CharacterResponse                       `json:"characters"`
	Records          map[uint32][]ObjectiveResponse            `json:"records"`
	CharacterRecords map[string]map[uint32][]ObjectiveResponse `json:"character_records"`
	Activities       map[string]uint32                         `json:"activities"`
	PartyMembers     []PartyMemberResponse                     `json:"party_members"`
}

type CharacterResponse struct {
	ID                   string    `json:"id"`
	ClassType            int       `json:"class_type"`
	Light                int       `json:"light"`
	LastPlayed           time.Time `json:"last_played"`
	EmblemPath           string    `json:"emblem_path,omitempty"`
	EmblemBackgroundPath string    `json:"emblem_background_path,omitempty"`
}

type ObjectiveResponse struct {
	ObjectiveHash   uint32 `json:"objective_hash"`
	Progress        int64  `json:"progress"`
	CompletionValue int64  `json:"completion_value"`
	Complete        bool   `json:"complete"`
	Visible         bool   `json:"visible"`
}

type PartyMemberResponse struct {
	MembershipID string `json:"membership_id"`
	DisplayName  string `json:"display_name"`
	Status       int    `json:"status"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	State      string `json:"state"`
	Generation uint64 `json:"generation,omitempty"`
	LastError  string `json:"last_error,omitempty"`
}

// NewRecordsResponse converts one page of a snapshot for JSON output.
func NewRecordsResponse(page application.Page, snapshot domain.Snapshot, opts application.ViewOptions) RecordsResponse {
	response := RecordsResponse{
		Group:       string(page.Group),
		Name:        page.Name,
		Mode:        string(snapshot.Mode),
		Sort:        string(opts.Sort),
		Total:       page.Total,
		HasMore:     page.HasMore,
		Generation:  snapshot.Generation,
		CompletedAt: snapshot.CompletedAt,
		Records:     make([]RecordResponse, 0, len(page.Records)),
	}
	if response.Sort == "" {
		response.Sort = string(application.SortByCompletion)
	}

	for _, result := range page.Records {
		response.Records = append(response.Records, newRecordResponse(result, snapshot.Catalog))
	}
	return response
}

func newRecordResponse(result domain.ScoreResult, catalog domain.Catalog) RecordResponse {
	record := RecordResponse{
		Hash:            result.Record.Hash,
		Name:            result.Record.Name,
		Description:     result.Record.Description,
		Group:           string(result.Record.GroupID),
		CompletionScore: result.CompletionScore,
		Consistency:     string(result.Consistency),
		Efficiency:      string(result.Efficiency),
		Spread: SpreadResponse{
			Min:  result.Spread.Min,
			Max:  result.Spread.Max,
			Mean: result.Spread.Mean,
		},
		Members: make([]MemberResponse, 0, len(result.Samples)),
	}

	if result.Estimable() {
		ttf := result.TimeToFinish
		record.TimeToFinish = &ttf
	}

	if blocker := result.ClosestBlocker; blocker != nil {
		record.ClosestBlocker = &BlockerResponse{
			MembershipID:    blocker.MembershipID,
			DisplayName:     blocker.DisplayName,
			ObjectiveHash:   blocker.Objective.ObjectiveHash,
			Description:     catalog.ObjectiveDescription(blocker.Objective.ObjectiveHash),
			Progress:        blocker.Objective.Progress,
			CompletionValue: blocker.Objective.CompletionValue,
		}
	}

	for _, sample := range result.Samples {
		record.Members = append(record.Members, MemberResponse{
			MembershipID: sample.MembershipID,
			DisplayName:  sample.DisplayName,
			Done:         sample.Done,
			Total:        sample.Total,
		})
	}

	return record
}

func NewProfileResponse(profile domain.Profile) ProfileResponse {
	response := ProfileResponse{
		MembershipID: profile.Identity.MembershipID,
		Platform:     int(profile.Identity.Platform),
		DisplayName:  profile.DisplayName,
		Characters:   make([]CharacterResponse, 0, len(profile.Characters)),
		Records:      newObjectivesResponse(profile.Records),
		Activities:   profile.Activities,
		PartyMembers: make([]PartyMemberResponse, 0, len(profile.PartyMembers)),
	}

	for _, character := range profile.Characters {
		response.Characters = append(response.Characters, CharacterResponse{
			ID:                   character.ID,
			ClassType:            character.ClassType,
			Light:                character.Light,
			LastPlayed:           character.LastPlayed,
			EmblemPath:           character.EmblemPath,
			EmblemBackgroundPath: character.EmblemBackgroundPath,
		})
	}

	if profile.CharRecords != nil {
		response.CharacterRecords = make(map[string]map[uint32][]ObjectiveResponse, len(profile.CharRecords))
		for characterID, records := range profile.CharRecords {
			response.CharacterRecords[characterID] = newObjectivesResponse(records)
		}
	}

	for _, member := range profile.PartyMembers {
		response.PartyMembers = append(response.PartyMembers, PartyMemberResponse{
			MembershipID: member.MembershipID,
			DisplayName:  member.DisplayName,
			Status:       member.Status,
		})
	}

	return response
}

func newObjectivesResponse(records map[uint32][]domain.ObjectiveProgress) map[uint32][]ObjectiveResponse {
	if records == nil {
		return nil
	}

	out := make(map[uint32][]ObjectiveResponse, len(records))
	for hash, objectives := range records {
		converted := make([]ObjectiveResponse, 0, len(objectives))
		for _, objective := range objectives {
			converted = append(converted, ObjectiveResponse{
				ObjectiveHash:   objective.ObjectiveHash,
				Progress:        objective.Progress,
				CompletionValue: objective.CompletionValue,
				Complete:        objective.Complete,
				Visible:         objective.Visible,
			})
		}
		out[hash] = converted
	}
	return out
}

func NewGroupsResponse(summaries []application.GroupSummary) []GroupResponse {
	groups := make([]GroupResponse, 0, len(summaries))
	for _, summary := range summaries {
		groups = append(groups, GroupResponse{
			ID:        string(summary.ID),
			Name:      summary.Name,
			Count:     summary.Count,
			MeanScore: summary.MeanScore,
		})
	}
	return groups
}
