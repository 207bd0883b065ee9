package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mediascribe/mediascribe/internal/api/handlers"
	"github.com/mediascribe/mediascribe/internal/api/middleware"
	"github.com/mediascribe/mediascribe/internal/auth"
	"github.com/mediascribe/mediascribe/internal/blog"
	"github.com/mediascribe/mediascribe/internal/cache"
	"github.com/mediascribe/mediascribe/internal/config"
	"github.com/mediascribe/mediascribe/internal/queue"
	"github.com/mediascribe/mediascribe/internal/titles"
	"github.com/mediascribe/mediascribe/internal/transcription"
	"github.com/mediascribe/mediascribe/internal/webhook"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	processor := transcription.NewProcessor(rt.cfg)
	transcriptionSvc := transcription.NewService(rt.db)
	blogSvc := blog.NewService(rt.db)
	generator := titles.NewGenerator(rt.cfg.Titles)
	queueClient := queue.NewClient(rt.cfg.Redis)
	dispatcher := webhook.NewDispatcher(rt.db)
	webhookSvc := webhook.NewService(rt.db, dispatcher)
	suggestionCache := cache.NewCache(rt.redis)
	cacheTTL := time.Duration(rt.cfg.Titles.CacheTTLSeconds) * time.Second

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		// Transcription routes
		processorFactory := func(model string) handlers.AudioProcessor {
			c := *rt.cfg
			c.Speech.Model = model
			return transcription.NewProcessor(&c)
		}
		trH := handlers.NewTranscriptionHandler(processor, processorFactory, transcriptionSvc, queueClient, webhookSvc, rt.cfg.Media.TmpDir)
		r.Post("/transcribe", trH.Transcribe)
		r.Route("/transcriptions", func(r chi.Router) {
			r.Get("/", trH.List)
			r.Get("/{id}", trH.Get)
		})

		// Blog routes
		postH := handlers.NewPostHandler(blogSvc, generator, webhookSvc)
		r.Route("/posts", func(r chi.Router) {
			r.Post("/", postH.Create)
			r.Get("/", postH.List)
			r.Get("/{id}", postH.Get)
			r.Put("/{id}", postH.Update)
		})

		// Title suggestion routes
		suggestH := handlers.NewSuggestionHandler(blogSvc, generator, suggestionCache, cacheTTL)
		r.Post("/titles/suggestions", suggestH.Suggest)

		// Webhook routes
		webhookH := handlers.NewWebhookHandler(webhookSvc)
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/", webhookH.Create)
			r.Get("/", webhookH.List)
			r.Delete("/{id}", webhookH.Delete)
		})
	})

	return r
}
