package bungie

import (
	"context"
	"fmt"

	"github.com/bnema/fireteam-cli/internal/domain"
)

func (c *Client) FetchManifest(ctx context.Context) (domain.Manifest, error) {
	var payload manifestResponse
	if err := c.getPlatform(ctx, "/Destiny2/Manifest/", nil, false, &payload); err != nil {
		return domain.Manifest{}, err
	}
	if len(payload.JSONWorldComponentContentPaths) == 0 {
		return domain.Manifest{}, fmt.Errorf("manifest has no %s: %w", domain.ManifestContentPathsKey, domain.ErrMalformedData)
	}

	return domain.Manifest{
		Version: payload.Version,
		Paths:   payload.JSONWorldComponentContentPaths,
	}, nil
}

// FetchDefinitions downloads one definition table. The response is a bare JSON
// object keyed by hash, not a platform envelope.
func (c *Client) FetchDefinitions(ctx context.Context, path string) (domain.DefinitionTable, error) {
	if path == "" {
		return nil, fmt.Errorf("definition path is required")
	}

	var table domain.DefinitionTable
	if err := c.getContent(ctx, path, &table); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("definition table %s is empty: %w", path, domain.ErrMalformedData)
	}
	return table, nil
}
