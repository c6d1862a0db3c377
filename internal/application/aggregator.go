package application

import (
	"context"
	"fmt"

	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/slogx"
)

// Aggregator runs one aggregation pass: credential, self, roster, catalog, scores.
type Aggregator struct {
	credentials *CredentialManager
	roster      *RosterBuilder
	reference   *ReferenceService
	self        domain.Identity
	language    string
	recordType  string
	mode        domain.CompletionMode
}

type AggregatorConfig struct {
	Self       domain.Identity
	Language   string
	RecordType string
	Mode       domain.CompletionMode
}

func NewAggregator(credentials *CredentialManager, roster *RosterBuilder, reference *ReferenceService, cfg AggregatorConfig) *Aggregator {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.CompletionAverage
	}

	return &Aggregator{
		credentials: credentials,
		roster:      roster,
		reference:   reference,
		self:        cfg.Self,
		language:    cfg.Language,
		recordType:  cfg.RecordType,
		mode:        cfg.Mode,
	}
}

// Pass builds a complete snapshot or fails; it never returns a partial one.
func (a *Aggregator) Pass(ctx context.Context) (domain.Snapshot, error) {
	if _, err := a.credentials.GetValidCredential(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	if !a.self.Valid() {
		return domain.Snapshot{}, fmt.Errorf("session has no membership: %w", domain.ErrAuth)
	}

	self, err := a.roster.SelfSnapshot(ctx, a.self)
	if err != nil {
		return domain.Snapshot{}, err
	}

	roster := a.roster.Build(ctx, self, self.Profile.PartyMemberIDs())

	catalog, err := a.reference.Catalog(ctx, a.language, a.recordType)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load record catalog: %w", err)
	}

	slogx.FromContext(ctx).Debug("aggregation pass assembled",
		"roster_size", len(roster),
		"records", len(catalog.Records),
		"groups", len(catalog.Groups),
	)

	return domain.Snapshot{
		Self:    self,
		Roster:  roster,
		Catalog: catalog,
		Mode:    a.mode,
		Scores:  Score(roster, catalog.Records, a.mode),
	}, nil
}

// Rescore returns a copy of snapshot scored under another completion mode.
func Rescore(snapshot domain.Snapshot, mode domain.CompletionMode) domain.Snapshot {
	if snapshot.Mode == mode {
		return snapshot
	}
	snapshot.Mode = mode
	snapshot.Scores = Score(snapshot.Roster, snapshot.Catalog.Records, mode)
	return snapshot
}
