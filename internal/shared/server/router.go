package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"apmcoach-backend/internal/delivery"
	"apmcoach-backend/internal/essay"
	"apmcoach-backend/internal/essays"
	"apmcoach-backend/internal/llm"
	"apmcoach-backend/internal/llm/gemini"
	"apmcoach-backend/internal/llm/openrouter"
	"apmcoach-backend/internal/rubric"
	"apmcoach-backend/internal/scorecards"
	"apmcoach-backend/internal/sessions"
	"apmcoach-backend/internal/shared/config"
	"apmcoach-backend/internal/shared/metrics"
	"apmcoach-backend/internal/shared/server/middleware"
	"apmcoach-backend/internal/shared/server/respond"
	"apmcoach-backend/internal/shared/storage/db"
	"apmcoach-backend/internal/shared/storage/object"
	localstore "apmcoach-backend/internal/shared/storage/object/local"
	s3store "apmcoach-backend/internal/shared/storage/object/s3"
	"apmcoach-backend/internal/uploads"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Session(),
		middleware.RateLimit(rateLimitConfig(cfg)),
	)

	// Dependencies
	repo := buildSessionsRepo(cfg)
	store := buildObjectStore(cfg)
	providers := buildProviders(cfg)
	scorer := rubric.NewScorer()
	essaySvc := essay.NewService(providers, cfg.EssayTargetWords)
	mailer := buildMailer(cfg)

	uploadHandler := uploads.NewHandler(repo, scorer, store)
	scorecardHandler := scorecards.NewHandler(repo, scorer)
	essayHandler := essays.NewHandler(repo, scorer, essaySvc)
	deliveryHandler := delivery.NewHandler(mailer)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	uploadHandler.RegisterRoutes(api)
	scorecardHandler.RegisterRoutes(api)
	essayHandler.RegisterRoutes(api)
	deliveryHandler.RegisterRoutes(api)

	return r
}

func buildSessionsRepo(cfg config.Config) sessions.Repo {
	if cfg.DatabaseURL == "" {
		return sessions.NewMemoryRepo()
	}

	ctx := context.Background()
	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	var sqlDB *sql.DB
	conn, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
	} else if err := db.RunMigrations(ctx, conn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		_ = conn.Close()
	} else {
		sqlDB = conn
	}

	if sqlDB == nil {
		return sessions.NewMemoryRepo()
	}
	return &sessions.PGRepo{DB: sqlDB}
}

func buildObjectStore(cfg config.Config) object.ObjectStore {
	switch cfg.ObjectStoreType {
	case "local":
		return localstore.New(cfg.LocalStoreDir)
	case "s3":
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Printf("failed to initialize s3 store, uploads will not be retained: %v", err)
			return nil
		}
		return store
	default:
		return nil
	}
}

func buildProviders(cfg config.Config) []llm.Generator {
	timeout := time.Duration(cfg.LLMTimeoutSecs) * time.Second
	var providers []llm.Generator

	if cfg.GeminiAPIKey != "" {
		gen, err := gemini.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, timeout)
		if err != nil {
			log.Printf("gemini provider disabled: %v", err)
		} else {
			providers = append(providers, gen)
		}
	}
	if cfg.OpenRouterAPIKey != "" {
		gen, err := openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, "", timeout)
		if err != nil {
			log.Printf("openrouter provider disabled: %v", err)
		} else {
			providers = append(providers, gen)
		}
	}
	if len(providers) == 0 {
		log.Printf("no generation providers configured, essays will use the deterministic fallback")
	}
	return providers
}

func buildMailer(cfg config.Config) delivery.Mailer {
	mailer, err := delivery.NewHTTPMailer(cfg.MailAPIKey, cfg.MailFrom, cfg.MailEndpoint, 15*time.Second)
	if err != nil {
		return delivery.DisabledMailer{}
	}
	return mailer
}

// rateLimitConfig applies a stricter budget to the generation endpoints since
// each one costs a provider call.
func rateLimitConfig(cfg config.Config) middleware.RateLimitConfig {
	perMin := cfg.RateLimitPerMin
	if perMin <= 0 {
		perMin = 30
	}
	generatePerMin := cfg.GenerateRateLimitMin
	if generatePerMin <= 0 {
		generatePerMin = 6
	}

	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT":  {Rate: float64(perMin) / 60.0, Burst: perMin},
			"GENERATE": {Rate: float64(generatePerMin) / 60.0, Burst: generatePerMin},
		},
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if strings.HasSuffix(c.FullPath(), "-essay") {
				return "GENERATE"
			}
			return "DEFAULT"
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
