package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"inreader-backend/internal/aicompletions"
	"inreader-backend/internal/auth"
	"inreader-backend/internal/documents"
	"inreader-backend/internal/downloads"
	"inreader-backend/internal/extract"
	"inreader-backend/internal/llm"
	openai "inreader-backend/internal/llm/openai"
	"inreader-backend/internal/notify"
	"inreader-backend/internal/pipeline"
	"inreader-backend/internal/services/health"
	sharedauth "inreader-backend/internal/shared/auth"
	"inreader-backend/internal/shared/config"
	"inreader-backend/internal/shared/metrics"
	"inreader-backend/internal/shared/server"
	"inreader-backend/internal/shared/server/middleware"
	"inreader-backend/internal/shared/storage/db"
	"inreader-backend/internal/shared/storage/object"
	localstore "inreader-backend/internal/shared/storage/object/local"
	s3store "inreader-backend/internal/shared/storage/object/s3"
	"inreader-backend/internal/shared/telemetry"
	"inreader-backend/internal/transcriptions"
	"inreader-backend/internal/users"
)

// App holds the wired process.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	Pipeline *pipeline.Pipeline
	Hub      *notify.Hub
	Metrics  *metrics.Metrics

	closers []func() error
}

type repos struct {
	users          users.Repo
	documents      documents.Repo
	transcriptions transcriptions.Repo
	completions    aicompletions.Repo
	// cascade removes a document's dependents; nil when the database
	// cascades on its own.
	cascade documents.Dependents
}

// Build wires every component from cfg. Call Close when done.
func Build(cfg config.Config) (*App, error) {
	return BuildContext(context.Background(), cfg)
}

// BuildContext is Build with a caller-supplied context for startup I/O.
func BuildContext(ctx context.Context, cfg config.Config) (app *App, err error) {
	app = &App{Config: cfg, Metrics: metrics.NewRegistry()}
	defer func() {
		if err != nil {
			err = multierr.Append(err, app.Close())
			app = nil
		}
	}()

	if app.DB, err = buildDB(ctx, cfg); err != nil {
		return app, err
	}
	if app.DB != nil {
		app.closers = append(app.closers, app.DB.Close)
	}
	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return app, err
	}

	ocr, err := buildOCR(ctx, cfg)
	if err != nil {
		return app, err
	}
	if closer, ok := ocr.(interface{ Close() error }); ok {
		app.closers = append(app.closers, closer.Close)
	}

	completer, err := buildCompleter(cfg)
	if err != nil {
		return app, err
	}

	issuer, err := sharedauth.NewIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if err != nil {
		return app, err
	}

	app.Hub = notify.NewHub()
	publisher, err := app.buildPublisher(cfg)
	if err != nil {
		return app, err
	}

	r := buildRepos(app.DB)

	app.Pipeline = &pipeline.Pipeline{
		Docs:           r.documents,
		Transcriptions: r.transcriptions,
		Stale:          r.cascade,
		Store:          app.Store,
		Extractor:      &extract.Engine{OCR: ocr},
		Notifier:       publisher,
		Metrics:        app.Metrics,
	}

	usersSvc := users.NewService(r.users)
	authSvc := &auth.Service{Users: usersSvc, Tokens: issuer}
	docsSvc := &documents.Service{Repo: r.documents, Store: app.Store, Dependents: r.cascade}
	transcriptionsSvc := &transcriptions.Service{Repo: r.transcriptions, Docs: r.documents}
	completionsSvc := &aicompletions.Service{
		Repo:           r.completions,
		Transcriptions: transcriptionsSvc,
		Completer:      completer,
		Metrics:        app.Metrics,
	}
	downloadsSvc := &downloads.Service{
		Docs:           r.documents,
		Store:          app.Store,
		Transcriptions: r.transcriptions,
		Completions:    r.completions,
	}

	authHandler := auth.NewHandler(authSvc)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: issuer,
		Health:   health.NewService(pinger(app.DB)),
		Metrics:  app.Metrics,
		Limiter:  middleware.NewRateLimiter(nil),
		Modules: []server.RouteRegistrar{
			server.RouteFunc(authHandler.RegisterPublicRoutes),
			authHandler,
			users.NewHandler(usersSvc),
			documents.NewHandler(docsSvc, app.Pipeline, cfg.MaxUploadBytes),
			transcriptions.NewHandler(transcriptionsSvc, app.Pipeline),
			aicompletions.NewHandler(completionsSvc),
			downloads.NewHandler(downloadsSvc),
			notify.NewHandler(app.Hub, issuer, app.Metrics, cfg.CORSAllowOrigin),
		},
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":      cfg.Env,
		"database": app.DB != nil,
		"store":    cfg.Storage.Type,
		"ocr":      ocr != nil,
	})
	return app, nil
}

// Close releases every resource acquired by Build, in reverse order.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, multierr.Append(fmt.Errorf("migrate: %w", err), sqlDB.Close())
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	sc := cfg.Storage
	switch sc.Type {
	case "s3":
		opts := s3store.Options{
			Endpoint:        sc.S3Endpoint(),
			Region:          sc.Region,
			Bucket:          sc.Bucket,
			AccessKeyID:     sc.AccessKeyID,
			SecretAccessKey: sc.SecretAccessKey,
		}
		if opts.AccessKeyID == "" && sc.SupabaseURL != "" {
			opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken = s3store.SupabaseCredentials(sc.SupabaseURL, sc.SupabaseKey)
		}
		store, err := s3store.New(ctx, opts)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket %s: %w", sc.Bucket, err)
		}
		return store, nil
	default:
		return localstore.New(sc.LocalDir), nil
	}
}

// buildOCR returns nil when OCR is disabled; image uploads then fail their
// run instead of the process failing to start.
func buildOCR(ctx context.Context, cfg config.Config) (extract.OCR, error) {
	switch cfg.OCR.Provider {
	case "", "none":
		return nil, nil
	case "vision":
		v, err := extract.NewVisionOCR(ctx, extract.VisionConfig{
			Language:        cfg.OCR.Language,
			CredentialsJSON: cfg.OCR.CredentialsJSON,
			CredentialsFile: cfg.OCR.CredentialsFile,
		})
		if err != nil {
			if cfg.IsDevLike() {
				telemetry.Warn("bootstrap.ocr_disabled", map[string]any{"error": err})
				return nil, nil
			}
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown OCR_PROVIDER %q", cfg.OCR.Provider)
	}
}

func buildCompleter(cfg config.Config) (llm.Completer, error) {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		telemetry.Warn("bootstrap.llm_disabled", map[string]any{"reason": "GEMINI_API_KEY empty"})
		return llm.Unconfigured{}, nil
	}
	return openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
}

// buildPublisher routes updates through Redis when REDIS_URL is set so that
// every API process reaches its own sockets; otherwise straight to the hub.
func (a *App) buildPublisher(cfg config.Config) (notify.Publisher, error) {
	if strings.TrimSpace(cfg.Redis.URL) == "" {
		return a.Hub, nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	broker := notify.NewBroker(client, a.Hub)
	if cfg.Redis.Channel != "" {
		broker.Channel = cfg.Redis.Channel
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			telemetry.Error("notify.broker_stopped", map[string]any{"error": err})
		}
	}()
	a.closers = append(a.closers, func() error {
		cancel()
		<-done
		return client.Close()
	})
	return broker, nil
}

func buildRepos(sqlDB *sql.DB) repos {
	if sqlDB != nil {
		return repos{
			users:          &users.PGRepo{DB: sqlDB},
			documents:      &documents.PGRepo{DB: sqlDB},
			transcriptions: &transcriptions.PGRepo{DB: sqlDB},
			completions:    &aicompletions.PGRepo{DB: sqlDB},
		}
	}
	t := transcriptions.NewMemoryRepo()
	c := aicompletions.NewMemoryRepo()
	return repos{
		users:          users.NewMemoryRepo(),
		documents:      documents.NewMemoryRepo(),
		transcriptions: t,
		completions:    c,
		cascade:        memoryCascade{transcriptions: t, completions: c},
	}
}

// memoryCascade mirrors the ON DELETE CASCADE chain of the SQL schema.
type memoryCascade struct {
	transcriptions transcriptions.Repo
	completions    aicompletions.Repo
}

func (m memoryCascade) DeleteByDocument(ctx context.Context, documentID string) error {
	t, err := m.transcriptions.GetByDocument(ctx, documentID)
	if errors.Is(err, transcriptions.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := m.completions.DeleteByTranscription(ctx, t.ID); err != nil {
		return err
	}
	return m.transcriptions.DeleteByDocument(ctx, documentID)
}

func pinger(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}
