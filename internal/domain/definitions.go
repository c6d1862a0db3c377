package domain

import (
	"encoding/json"
	"sort"
)

const (
	TableRecords            = "DestinyRecordDefinition"
	TablePresentationNodes  = "DestinyPresentationNodeDefinition"
	TableObjectives         = "DestinyObjectiveDefinition"
	TableActivities         = "DestinyActivityDefinition"
	ManifestContentPathsKey = "jsonWorldComponentContentPaths"
)

// DefinitionTable is a static definition table keyed by definition hash.
type DefinitionTable map[string]json.RawMessage

type Manifest struct {
	Version string
	// Paths maps language then table name to a versioned content path.
	Paths map[string]map[string]string
}

func (m Manifest) Path(language, table string) (string, bool) {
	tables, ok := m.Paths[language]
	if !ok {
		return "", false
	}
	path, ok := tables[table]
	return path, ok && path != ""
}

func (m Manifest) Languages() []string {
	languages := make([]string, 0, len(m.Paths))
	for language := range m.Paths {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	return languages
}

type GroupID string

const (
	GroupAll        GroupID = "ALL"
	GroupNearlyDone GroupID = "__NEARLY_DONE__"
)

func (g GroupID) Synthetic() bool {
	return g == GroupAll || g == GroupNearlyDone
}

type RecordDefinition struct {
	Hash            uint32
	Name            string
	Description     string
	Icon            string
	TypeName        string
	LoreHash        uint32
	ObjectiveHashes []uint32
	// GroupID is empty for records no group declares.
	GroupID GroupID
}

type ObjectiveDefinition struct {
	Hash            uint32
	Description     string
	CompletionValue int64
}

type Group struct {
	ID      GroupID
	Name    string
	Members []RecordDefinition
}

type Catalog struct {
	Records    []RecordDefinition
	Groups     []Group
	Objectives map[uint32]ObjectiveDefinition
}

func (c Catalog) Record(hash uint32) (RecordDefinition, bool) {
	for _, record := range c.Records {
		if record.Hash == hash {
			return record, true
		}
	}
	return RecordDefinition{}, false
}

func (c Catalog) Group(id GroupID) (Group, bool) {
	for _, group := range c.Groups {
		if group.ID == id {
			return group, true
		}
	}
	return Group{}, false
}

func (c Catalog) ObjectiveDescription(hash uint32) string {
	return c.Objectives[hash].Description
}
