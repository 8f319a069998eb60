package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/analysis"
	googleauth "github.com/vikasdeshmukh63/rfp-analysis-server/internal/auth"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/chat"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/docprep"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/documents"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/llm"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/llm/openrouter"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/config"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/server"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/storage/db"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/storage/object"
	localstore "github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/storage/object/local"
	s3store "github.com/vikasdeshmukh63/rfp-analysis-server/internal/shared/storage/object/s3"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/synopsis"
	"github.com/vikasdeshmukh63/rfp-analysis-server/internal/users"
)

// App holds shared dependencies built from configuration.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	Gateway  llm.Gateway
	Preparer *docprep.Preparer

	UsersService    *users.Service
	DocumentsSvc    *documents.Service
	AnalysisService *analysis.Service
	ChatService     *chat.Service
	SynopsisService *synopsis.Service

	GoogleAuth *googleauth.GoogleService
}

// Build prepares all dependencies and assembles the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		GoogleAuth:      app.GoogleAuth,
		UsersHandler:    users.NewHandler(app.UsersService),
		DocumentHandler: documents.NewHandler(app.DocumentsSvc, app.Preparer, int64(cfg.MaxDocumentSizeMB)<<20),
		AnalysisHandler: analysis.NewHandler(app.AnalysisService),
		ChatHandler:     chat.NewHandler(app.ChatService, app.AnalysisService),
		SynopsisHandler: synopsis.NewHandler(app.SynopsisService),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	cfg := app.Config

	var (
		usersRepo    users.Repo
		docsRepo     documents.DocumentsRepo
		resultsRepo  analysis.ResultsRepo
		chatRepo     chat.ChatRepo
		synopsisRepo synopsis.SynopsisRepo
	)
	if app.DB != nil {
		usersRepo = &users.PGRepo{DB: app.DB}
		docsRepo = &documents.PGRepo{DB: app.DB}
		resultsRepo = &analysis.PGRepo{DB: app.DB}
		chatRepo = &chat.PGRepo{DB: app.DB}
		synopsisRepo = &synopsis.PGRepo{DB: app.DB}
	} else {
		usersRepo = users.NewMemoryRepo()
		docsRepo = documents.NewMemoryRepo()
		resultsRepo = analysis.NewMemoryRepo()
		chatRepo = chat.NewMemoryRepo()
		synopsisRepo = synopsis.NewMemoryRepo()
	}

	app.Gateway = llm.Gateway(llm.PlaceholderGateway{})
	if strings.TrimSpace(cfg.OpenRouterAPIKey) != "" {
		app.Gateway = openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.LLMModel)
	}

	maxBytes := int64(cfg.MaxDocumentSizeMB) << 20
	app.Preparer = docprep.NewPreparer(app.Store, maxBytes)

	app.DocumentsSvc = &documents.Service{Store: app.Store, Repo: docsRepo}

	app.AnalysisService = &analysis.Service{
		Docs:     app.DocumentsSvc,
		Preparer: app.Preparer,
		Gateway:  app.Gateway,
		Repo:     resultsRepo,
		Pacer:    analysis.NewChunkPacer(),
		Model:    cfg.LLMModel,
	}
	app.ChatService = &chat.Service{
		Docs:     app.DocumentsSvc,
		Preparer: app.Preparer,
		Gateway:  app.Gateway,
		Repo:     chatRepo,
	}
	app.SynopsisService = &synopsis.Service{
		Docs:     app.DocumentsSvc,
		Preparer: app.Preparer,
		Gateway:  app.Gateway,
		Repo:     synopsisRepo,
	}

	// Deleting a document tears down what references it: analysis results
	// are removed, chat sessions and synopses keep running with the
	// attachment cleared.
	app.DocumentsSvc.Purgers = []documents.ResultsPurger{
		app.AnalysisService,
		app.ChatService,
		app.SynopsisService,
	}

	app.UsersService = users.NewService(usersRepo)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		app.UsersService,
	)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
