package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/ecr-group/leadqual-cli/internal/compose"
	"github.com/ecr-group/leadqual-cli/internal/dispatch"
	"github.com/ecr-group/leadqual-cli/internal/model"
	"github.com/ecr-group/leadqual-cli/internal/pipeline"
	"github.com/ecr-group/leadqual-cli/internal/qualify"
	"github.com/ecr-group/leadqual-cli/internal/store"
	anthropicpkg "github.com/ecr-group/leadqual-cli/pkg/anthropic"
	"github.com/ecr-group/leadqual-cli/pkg/hunter"
	sfpkg "github.com/ecr-group/leadqual-cli/pkg/salesforce"
)

// pipelineEnv holds the store, clients, and pipeline shared by the qualify
// and serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Sink     dispatch.Sink // nil when dispatch is disabled
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, API clients, and the pipeline. Callers
// should defer env.Close().
func initPipeline(ctx context.Context, withDispatch bool) (*pipelineEnv, error) {
	if err := cfg.Validate("qualify"); err != nil {
		return nil, err
	}
	if withDispatch {
		if err := cfg.Validate("dispatch"); err != nil {
			return nil, err
		}
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	pageInterval := time.Duration(cfg.Hunter.PageIntervalMS) * time.Millisecond
	contacts := hunter.NewClient(cfg.Hunter.Key,
		hunter.WithBaseURL(cfg.Hunter.BaseURL),
		hunter.WithPageSize(cfg.Hunter.PageSize),
		hunter.WithPageLimiter(rate.NewLimiter(rate.Every(pageInterval), 1)),
	)

	var ai anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		ai = anthropicpkg.NewClient(cfg.Anthropic.Key)
	}
	composer := compose.NewComposer(ai, cfg.Anthropic.Model)

	filterOpts, err := buildFilterOptions()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	opts := pipeline.Options{
		Filter:        filterOpts,
		Compose:       buildComposeParams(),
		Paginate:      cfg.Hunter.Paginate,
		PageSize:      cfg.Hunter.PageSize,
		DomainLimiter: rate.NewLimiter(rate.Every(pageInterval), 1),
	}

	var sink dispatch.Sink
	if withDispatch {
		sink, err = initSink()
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		opts.DispatchSink = sink
		opts.DispatchLimiter = rate.NewLimiter(rate.Every(time.Duration(cfg.Dispatch.IntervalMS)*time.Millisecond), 1)
	}

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(contacts, composer, st, opts),
		Sink:     sink,
	}, nil
}

// buildFilterOptions assembles admission rules from config.
func buildFilterOptions() (qualify.Options, error) {
	keywords := qualify.DefaultKeywords()
	if cfg.Filter.KeywordsFile != "" {
		loaded, err := qualify.LoadKeywords(cfg.Filter.KeywordsFile)
		if err != nil {
			return qualify.Options{}, eris.Wrap(err, "load keywords")
		}
		keywords = loaded
	}

	return qualify.Options{
		ConfidenceThreshold: cfg.Filter.ConfidenceThreshold,
		Keywords:            keywords,
		Policy:              qualify.TitleMatchPolicy(cfg.Filter.TitleMatch),
	}, nil
}

// buildComposeParams assembles message composition inputs from config.
func buildComposeParams() compose.Params {
	return compose.Params{
		Mode:        model.GenerationMode(cfg.Compose.Mode),
		Template:    cfg.Compose.Template,
		Tone:        model.Tone(cfg.Compose.Tone),
		Instruction: cfg.Compose.Instruction,
	}
}

// initSink builds the configured dispatch sink.
func initSink() (dispatch.Sink, error) {
	switch cfg.Dispatch.Target {
	case "webhook":
		return dispatch.NewWebhookSink(cfg.Dispatch.WebhookURL), nil
	case "salesforce":
		sf, err := initSalesforce()
		if err != nil {
			return nil, err
		}
		return &dispatch.SalesforceSink{Client: sf}, nil
	default:
		return nil, eris.Errorf("unsupported dispatch target: %s", cfg.Dispatch.Target)
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "leadqual.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (LEADQUAL_SALESFORCE_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf), nil
}
