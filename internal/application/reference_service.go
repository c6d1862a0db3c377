package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports"
	"github.com/bnema/fireteam-cli/internal/slogx"
	"golang.org/x/sync/errgroup"
)

// ReferenceService resolves definition tables through the manifest and the
// definition cache, and derives the record catalog from them.
type ReferenceService struct {
	source ports.ReferenceSource
	cache  *DefinitionCache

	mu       sync.Mutex
	manifest *domain.Manifest
}

func NewReferenceService(source ports.ReferenceSource, cache *DefinitionCache) *ReferenceService {
	if cache == nil {
		cache = NewDefinitionCache(source)
	}
	return &ReferenceService{source: source, cache: cache}
}

// Manifest fetches the content manifest once and reuses it until Reload.
func (s *ReferenceService) Manifest(ctx context.Context) (domain.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manifest != nil {
		return *s.manifest, nil
	}

	manifest, err := s.source.FetchManifest(ctx)
	if err != nil {
		return domain.Manifest{}, fmt.Errorf("fetch manifest: %w", err)
	}
	s.manifest = &manifest

	slogx.FromContext(ctx).Debug("manifest loaded", "version", manifest.Version)
	return manifest, nil
}

func (s *ReferenceService) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest = nil
}

// Definitions returns one definition table addressed the way the manifest
// addresses it: content kind, language, then table name.
func (s *ReferenceService) Definitions(ctx context.Context, kind, language, table string) (domain.DefinitionTable, error) {
	if kind != domain.ManifestContentPathsKey {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDefinition, kind)
	}

	manifest, err := s.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	path, ok := manifest.Path(language, table)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrUnknownDefinition, language, table)
	}

	return s.cache.Get(ctx, path)
}

// Catalog builds the record catalog for a language. Only records without lore
// whose type name equals recordType are kept; an empty recordType keeps all.
// Presentation nodes are visited in ascending hash order and a record belongs
// to the first node that declares it.
func (s *ReferenceService) Catalog(ctx context.Context, language, recordType string) (domain.Catalog, error) {
	var records, nodes, objectives domain.DefinitionTable

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		records, err = s.Definitions(gctx, domain.ManifestContentPathsKey, language, domain.TableRecords)
		return err
	})
	g.Go(func() (err error) {
		nodes, err = s.Definitions(gctx, domain.ManifestContentPathsKey, language, domain.TablePresentationNodes)
		return err
	})
	g.Go(func() (err error) {
		objectives, err = s.Definitions(gctx, domain.ManifestContentPathsKey, language, domain.TableObjectives)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Catalog{}, err
	}

	return buildCatalog(ctx, records, nodes, objectives, recordType), nil
}

// ActivityName looks up an activity display name; false when unknown.
func (s *ReferenceService) ActivityName(ctx context.Context, language string, hash uint32) (string, bool) {
	table, err := s.Definitions(ctx, domain.ManifestContentPathsKey, language, domain.TableActivities)
	if err != nil {
		slogx.FromContext(ctx).Debug("activity definitions unavailable", "error", err)
		return "", false
	}

	raw, ok := table[strconv.FormatUint(uint64(hash), 10)]
	if !ok {
		return "", false
	}

	var def struct {
		DisplayProperties displayProperties `json:"displayProperties"`
	}
	if err := json.Unmarshal(raw, &def); err != nil || def.DisplayProperties.Name == "" {
		return "", false
	}
	return def.DisplayProperties.Name, true
}

type displayProperties struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type recordDefinition struct {
	Hash              uint32            `json:"hash"`
	DisplayProperties displayProperties `json:"displayProperties"`
	RecordTypeName    string            `json:"recordTypeName"`
	LoreHash          uint32            `json:"loreHash"`
	ObjectiveHashes   []uint32          `json:"objectiveHashes"`
}

type presentationNodeDefinition struct {
	Hash              uint32            `json:"hash"`
	DisplayProperties displayProperties `json:"displayProperties"`
	Children          struct {
		Records []struct {
			RecordHash uint32 `json:"recordHash"`
		} `json:"records"`
	} `json:"children"`
}

type objectiveDefinition struct {
	Hash                uint32 `json:"hash"`
	ProgressDescription string `json:"progressDescription"`
	CompletionValue     int64  `json:"completionValue"`
}

func buildCatalog(ctx context.Context, records, nodes, objectives domain.DefinitionTable, recordType string) domain.Catalog {
	logger := slogx.FromContext(ctx)

	qualifying := make(map[uint32]domain.RecordDefinition, len(records))
	for key, raw := range records {
		var def recordDefinition
		if err := json.Unmarshal(raw, &def); err != nil {
			logger.Debug("skipping malformed record definition", "hash", key, "error", err)
			continue
		}
		if def.Hash == 0 {
			hash, err := strconv.ParseUint(key, 10, 32)
			if err != nil {
				continue
			}
			def.Hash = uint32(hash)
		}
		if def.LoreHash != 0 {
			continue
		}
		if recordType != "" && def.RecordTypeName != recordType {
			continue
		}

		qualifying[def.Hash] = domain.RecordDefinition{
			Hash:            def.Hash,
			Name:            def.DisplayProperties.Name,
			Description:     def.DisplayProperties.Description,
			Icon:            def.DisplayProperties.Icon,
			TypeName:        def.RecordTypeName,
			ObjectiveHashes: def.ObjectiveHashes,
		}
	}

	catalog := domain.Catalog{Objectives: decodeObjectives(objectives)}
	claimed := make(map[uint32]struct{}, len(qualifying))

	for _, key := range sortedHashKeys(nodes) {
		var node presentationNodeDefinition
		if err := json.Unmarshal(nodes[key], &node); err != nil {
			logger.Debug("skipping malformed presentation node", "hash", key, "error", err)
			continue
		}
		if node.DisplayProperties.Name == "" || len(node.Children.Records) == 0 {
			continue
		}

		group := domain.Group{ID: domain.GroupID(key), Name: node.DisplayProperties.Name}
		for _, child := range node.Children.Records {
			record, ok := qualifying[child.RecordHash]
			if !ok {
				continue
			}
			if _, taken := claimed[record.Hash]; taken {
				continue
			}
			claimed[record.Hash] = struct{}{}

			record.GroupID = group.ID
			group.Members = append(group.Members, record)
			catalog.Records = append(catalog.Records, record)
		}
		if len(group.Members) > 0 {
			catalog.Groups = append(catalog.Groups, group)
		}
	}

	ungrouped := make([]uint32, 0, len(qualifying)-len(claimed))
	for hash := range qualifying {
		if _, ok := claimed[hash]; !ok {
			ungrouped = append(ungrouped, hash)
		}
	}
	sort.Slice(ungrouped, func(i, j int) bool { return ungrouped[i] < ungrouped[j] })
	for _, hash := range ungrouped {
		catalog.Records = append(catalog.Records, qualifying[hash])
	}

	return catalog
}

func decodeObjectives(table domain.DefinitionTable) map[uint32]domain.ObjectiveDefinition {
	result := make(map[uint32]domain.ObjectiveDefinition, len(table))
	for _, raw := range table {
		var def objectiveDefinition
		if err := json.Unmarshal(raw, &def); err != nil || def.Hash == 0 {
			continue
		}
		result[def.Hash] = domain.ObjectiveDefinition{
			Hash:            def.Hash,
			Description:     def.ProgressDescription,
			CompletionValue: def.CompletionValue,
		}
	}
	return result
}

// sortedHashKeys orders numeric hash keys ascending; non-numeric keys sort last.
func sortedHashKeys(table domain.DefinitionTable) []string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseUint(keys[i], 10, 64)
		b, errB := strconv.ParseUint(keys[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
