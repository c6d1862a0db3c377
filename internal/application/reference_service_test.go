package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() domain.Manifest {
	return domain.Manifest{
		Version: "v1",
		Paths: map[string]map[string]string{
			"en": {
				domain.TableRecords:           "/en/records-v1.json",
				domain.TablePresentationNodes: "/en/nodes-v1.json",
				domain.TableObjectives:        "/en/objectives-v1.json",
				domain.TableActivities:        "/en/activities-v1.json",
			},
		},
	}
}

func rawTable(t *testing.T, entries map[string]any) domain.DefinitionTable {
	t.Helper()

	table := make(domain.DefinitionTable, len(entries))
	for key, value := range entries {
		raw, err := json.Marshal(value)
		require.NoError(t, err)
		table[key] = raw
	}
	return table
}

func recordDef(hash uint32, name, typeName string, loreHash uint32) map[string]any {
	return map[string]any{
		"hash":              hash,
		"displayProperties": map[string]any{"name": name},
		"recordTypeName":    typeName,
		"loreHash":          loreHash,
		"objectiveHashes":   []uint32{hash * 10},
	}
}

func nodeDef(hash uint32, name string, records ...uint32) map[string]any {
	children := make([]map[string]any, 0, len(records))
	for _, record := range records {
		children = append(children, map[string]any{"recordHash": record})
	}
	return map[string]any{
		"hash":              hash,
		"displayProperties": map[string]any{"name": name},
		"children":          map[string]any{"records": children},
	}
}

func TestReferenceServiceCatalog(t *testing.T) {
	source := mocks.NewMockReferenceSource(t)
	service := NewReferenceService(source, nil)

	source.EXPECT().FetchManifest(mockAnyContext()).Return(testManifest(), nil).Once()
	source.EXPECT().FetchDefinitions(mockAnyContext(), "/en/records-v1.json").Return(rawTable(t, map[string]any{
		"1": recordDef(1, "Raid Veteran", "Triumphs", 0),
		"2": recordDef(2, "Lore Page", "Triumphs", 99),
		"3": recordDef(3, "Seal", "Titles", 0),
		"4": recordDef(4, "Flawless", "Triumphs", 0),
		"5": recordDef(5, "Loner", "Triumphs", 0),
		"6": "not an object",
	}), nil).Once()
	source.EXPECT().FetchDefinitions(mockAnyContext(), "/en/nodes-v1.json").Return(rawTable(t, map[string]any{
		"200": nodeDef(200, "Dungeons", 4, 1),
		"100": nodeDef(100, "Raids", 1, 2, 3),
		"300": nodeDef(300, "", 5),
		"400": nodeDef(400, "Empty"),
		"500": nodeDef(500, "Lore only", 2),
	}), nil).Once()
	source.EXPECT().FetchDefinitions(mockAnyContext(), "/en/objectives-v1.json").Return(rawTable(t, map[string]any{
		"10": map[string]any{"hash": 10, "progressDescription": "Clears", "completionValue": 5},
	}), nil).Once()

	catalog, err := service.Catalog(context.Background(), "en", "Triumphs")
	require.NoError(t, err)

	require.Len(t, catalog.Groups, 2)
	assert.Equal(t, domain.GroupID("100"), catalog.Groups[0].ID)
	assert.Equal(t, "Raids", catalog.Groups[0].Name)
	require.Len(t, catalog.Groups[0].Members, 1)
	assert.Equal(t, uint32(1), catalog.Groups[0].Members[0].Hash)

	assert.Equal(t, domain.GroupID("200"), catalog.Groups[1].ID)
	require.Len(t, catalog.Groups[1].Members, 1)
	assert.Equal(t, uint32(4), catalog.Groups[1].Members[0].Hash)

	hashes := make([]uint32, 0, len(catalog.Records))
	for _, record := range catalog.Records {
		hashes = append(hashes, record.Hash)
	}
	assert.Equal(t, []uint32{1, 4, 5}, hashes)

	loner, ok := catalog.Record(5)
	require.True(t, ok)
	assert.Empty(t, loner.GroupID)
	assert.Equal(t, "Clears", catalog.ObjectiveDescription(10))
}

func TestReferenceServiceDefinitionsUsesCacheAndManifestOnce(t *testing.T) {
	source := mocks.NewMockReferenceSource(t)
	service := NewReferenceService(source, nil)

	source.EXPECT().FetchManifest(mockAnyContext()).Return(testManifest(), nil).Once()
	source.EXPECT().FetchDefinitions(mockAnyContext(), "/en/records-v1.json").Return(domain.DefinitionTable{}, nil).Once()

	for i := 0; i < 3; i++ {
		_, err := service.Definitions(context.Background(), domain.ManifestContentPathsKey, "en", domain.TableRecords)
		require.NoError(t, err)
	}
}

func TestReferenceServiceDefinitionsRejectsUnknownTables(t *testing.T) {
	source := mocks.NewMockReferenceSource(t)
	service := NewReferenceService(source, nil)

	_, err := service.Definitions(context.Background(), "mobileWorldContentPaths", "en", domain.TableRecords)
	require.ErrorIs(t, err, domain.ErrUnknownDefinition)

	source.EXPECT().FetchManifest(mockAnyContext()).Return(testManifest(), nil).Once()
	_, err = service.Definitions(context.Background(), domain.ManifestContentPathsKey, "fr", domain.TableRecords)
	require.ErrorIs(t, err, domain.ErrUnknownDefinition)
}

func TestReferenceServiceManifestFailureIsNotCached(t *testing.T) {
	source := mocks.NewMockReferenceSource(t)
	service := NewReferenceService(source, nil)

	source.EXPECT().FetchManifest(mockAnyContext()).Return(domain.Manifest{}, domain.ErrUpstreamUnavailable).Once()
	source.EXPECT().FetchManifest(mockAnyContext()).Return(testManifest(), nil).Once()

	_, err := service.Manifest(context.Background())
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	manifest, err := service.Manifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", manifest.Version)
}

func TestReferenceServiceActivityName(t *testing.T) {
	source := mocks.NewMockReferenceSource(t)
	service := NewReferenceService(source, nil)

	source.EXPECT().FetchManifest(mockAnyContext()).Return(testManifest(), nil).Once()
	source.EXPECT().FetchDefinitions(mockAnyContext(), "/en/activities-v1.json").Return(rawTable(t, map[string]any{
		"77": map[string]any{"displayProperties": map[string]any{"name": "Orbit"}},
	}), nil).Once()

	name, ok := service.ActivityName(context.Background(), "en", 77)
	require.True(t, ok)
	assert.Equal(t, "Orbit", name)

	_, ok = service.ActivityName(context.Background(), "en", 78)
	assert.False(t, ok)
}
