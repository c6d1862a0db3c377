package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	authadapter "github.com/bnema/fireteam-cli/internal/adapters/auth"
	"github.com/bnema/fireteam-cli/internal/adapters/bungie"
	recordsadapter "github.com/bnema/fireteam-cli/internal/adapters/render/records"
	tomlrepo "github.com/bnema/fireteam-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/fireteam-cli/internal/adapters/secrets/chain"
	"github.com/bnema/fireteam-cli/internal/application"
	"github.com/bnema/fireteam-cli/internal/config"
	"github.com/bnema/fireteam-cli/internal/domain"
	"github.com/bnema/fireteam-cli/internal/ports"
	"github.com/bnema/fireteam-cli/internal/slogx"
	"github.com/bnema/fireteam-cli/internal/version"
	"github.com/spf13/viper"
)

type app struct {
	cfg      config.Config
	logger   *slog.Logger
	sessions *application.SessionService
	tokens   authadapter.TokenClient
	http     *http.Client
	now      func() time.Time

	watch func(recordsadapter.SnapshotSource, application.ViewOptions, int) error
}

// engine is the per-session object graph behind every data command.
type engine struct {
	session     domain.Session
	credentials *application.CredentialManager
	client      *bungie.Client
	resolver    *application.IdentityResolver
	reference   *application.ReferenceService
	roster      *application.RosterBuilder
	scheduler   *application.Scheduler
}

func wireApp() (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	cfg, err := config.Load(v, homeDir)
	if err != nil {
		return nil, err
	}

	logger := slogx.New(slogx.Config{
		Version: version.Version,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stderr,
	})

	repo, err := tomlrepo.NewRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(cfg.SecretsDir)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	httpClient := &http.Client{}

	return &app{
		cfg:      cfg,
		logger:   logger,
		sessions: application.NewSessionService(repo, secretStore, ports.SystemClock{}),
		tokens: authadapter.TokenClient{
			TokenURL:       cfg.Bungie.TokenURL,
			ClientID:       cfg.ClientID,
			ClientSecret:   cfg.ClientSecret,
			HTTPClient:     httpClient,
			RequestTimeout: cfg.Bungie.Timeout,
		},
		http:  httpClient,
		now:   time.Now,
		watch: recordsadapter.Watch,
	}, nil
}

// withLogger attaches the configured logger to ctx.
func (a *app) withLogger(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return slogx.WithContext(ctx, a.logger)
}

// newClient builds an upstream client that draws bearer tokens from credentials.
func (a *app) newClient(credentials bungie.Credentials) (*bungie.Client, error) {
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	return bungie.NewClient(bungie.Options{
		BaseURL:           a.cfg.Bungie.BaseURL,
		ContentBaseURL:    a.cfg.Bungie.ContentBaseURL,
		APIKey:            a.cfg.APIKey,
		HTTPClient:        a.http,
		RequestsPerSecond: a.cfg.Bungie.RequestsPerSecond,
		Burst:             a.cfg.Bungie.Burst,
		Timeout:           a.cfg.Bungie.Timeout,
	}, credentials)
}

func (a *app) newCredentialManager(id domain.SessionID) *application.CredentialManager {
	return application.NewCredentialManager(a.tokens, ports.SystemClock{},
		application.WithRefreshSkew(a.cfg.Refresh.Skew),
		application.WithOnRefresh(func(ctx context.Context, cred domain.Credential) error {
			return a.sessions.SaveCredential(ctx, id, cred)
		}),
	)
}

// engine loads a signed-in session and wires the aggregation stack around it.
func (a *app) engine(ctx context.Context, id domain.SessionID, mode domain.CompletionMode) (*engine, error) {
	session, err := a.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("session %q: %w (run `ft login`)", id, domain.ErrAuth)
		}
		return nil, err
	}
	if !session.Identity.Valid() {
		return nil, fmt.Errorf("session %q has no membership: %w (run `ft login`)", id, domain.ErrAuth)
	}

	cred, err := a.sessions.LoadCredential(ctx, id)
	if err != nil {
		return nil, err
	}

	credentials := a.newCredentialManager(id)
	credentials.Establish(cred)

	client, err := a.newClient(credentials)
	if err != nil {
		return nil, err
	}

	resolver := application.NewIdentityResolver(client)
	resolver.Remember(session.Identity)

	reference := application.NewReferenceService(client, application.NewDefinitionCache(client))
	roster := application.NewRosterBuilder(client, resolver, 0)
	aggregator := application.NewAggregator(credentials, roster, reference, application.AggregatorConfig{
		Self:       session.Identity,
		Language:   a.cfg.View.Language,
		RecordType: a.cfg.View.RecordType,
		Mode:       mode,
	})

	return &engine{
		session:     session,
		credentials: credentials,
		client:      client,
		resolver:    resolver,
		reference:   reference,
		roster:      roster,
		scheduler:   application.NewScheduler(aggregator.Pass, a.cfg.Refresh.Interval, ports.SystemClock{}),
	}, nil
}
