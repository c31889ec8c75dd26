package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/personalai/assistant/internal/agent"
	"github.com/personalai/assistant/internal/config"
	"github.com/personalai/assistant/internal/handler"
	"github.com/personalai/assistant/internal/llm"
	"github.com/personalai/assistant/internal/middleware"
	"github.com/personalai/assistant/internal/models"
	"github.com/personalai/assistant/internal/observability"
	"github.com/personalai/assistant/internal/security"
	"github.com/personalai/assistant/internal/store"
	"github.com/personalai/assistant/internal/weather"
)

// Repository is everything the HTTP surface reads from or writes to the
// relational store. *store.Store implements it.
type Repository interface {
	handler.EmployeeRepository
	handler.DepartmentRepository
	handler.ReservationRepository
	handler.CalendarRepository
	handler.HealthChecker
}

// Deps are the collaborators behind the router. Pipeline and Weather may be
// nil, in which case their routes answer 503.
type Deps struct {
	Repo      Repository
	Pipeline  handler.Runner
	Weather   handler.Recommender
	PromptVal *security.PromptValidator
	Audit     *security.AuditLogger
}

// buildDeps opens the database and assembles the pipeline and weather flows.
// The returned *sql.DB is owned by the caller.
func buildDeps(ctx context.Context, cfg *config.Config) (Deps, *sql.DB, error) {
	db, err := store.Open(ctx, store.DBConfig{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return Deps{}, nil, err
	}
	st := store.New(db)

	deps := Deps{
		Repo:      st,
		PromptVal: security.NewPromptValidator(cfg.MaxActionLength),
		Audit:     security.NewAuditLogger(cfg.EnableAuditLogging),
	}

	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.LLMProvider).Msg("language model unavailable - AI routes disabled")
	} else {
		deps.Pipeline = NewPipeline(cfg, gen, st, db, deps.Audit)
	}

	switch {
	case gen == nil:
	case cfg.WeatherAPIKey == "":
		log.Warn().Msg("WEATHER_API_KEY not set - dress recommendations disabled")
	default:
		forecasts := weather.NewCachedForecaster(
			weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey, cfg.WeatherTimeout),
			cfg.WeatherCacheTTL,
		)
		deps.Weather = weather.NewRecommender(forecasts, st, gen)
	}

	log.Info().
		Str("llm_provider", cfg.LLMProvider).
		Str("model", cfg.Model()).
		Bool("pipeline_enabled", deps.Pipeline != nil).
		Bool("weather_enabled", deps.Weather != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("read_only_queries", cfg.ReadOnlyQueries).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}

	return deps, db, nil
}

// NewGenerator builds the model client for the configured provider.
func NewGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	apiKey, baseURL := cfg.LLMCredentials()
	return llm.New(ctx, llm.Options{
		Provider:  cfg.LLMProvider,
		Model:     cfg.Model(),
		APIKey:    apiKey,
		BaseURL:   baseURL,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	})
}

// NewPipeline wires classifier, synthesizer, executor, summarizer and the
// calendar view over one database handle.
func NewPipeline(cfg *config.Config, gen llm.Generator, st *store.Store, db *sql.DB, audit *security.AuditLogger) *agent.Pipeline {
	return agent.NewPipeline(agent.PipelineConfig{
		Classifier:  agent.NewClassifier(gen, agent.DefaultOverrides()),
		Synthesizer: agent.NewSynthesizer(gen, security.NewSQLGuard(cfg.SQLAllowlist)),
		Executor: store.NewExecutor(db, store.ExecutorOptions{
			ReadOnly: cfg.ReadOnlyQueries,
			Timeout:  cfg.QueryTimeout,
		}),
		Summarizer: agent.NewSummarizer(gen),
		Calendar:   agent.NewCalendarView(st, gen),
		Audit:      audit,
	})
}

// NewRouter mounts every route on a chi router.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	if deps.PromptVal == nil {
		deps.PromptVal = security.NewPromptValidator(cfg.MaxActionLength)
	}

	healthH := handler.NewHealthHandler(map[string]handler.HealthChecker{"database": deps.Repo}, deps.Pipeline != nil)
	employeesH := handler.NewEmployeesHandler(deps.Repo, deps.Audit)
	departmentsH := handler.NewDepartmentsHandler(deps.Repo, deps.Audit)
	reservationsH := handler.NewReservationsHandler(deps.Repo, deps.Audit)
	calendarH := handler.NewCalendarHandler(deps.Repo, deps.Audit)

	generateMessage := unavailable("language model is not configured")
	processNLQuery := generateMessage
	if deps.Pipeline != nil {
		generateMessage = handler.NewAssistantHandler(deps.Pipeline, deps.PromptVal).GenerateMessage
		processNLQuery = handler.NewNLQueryHandler(deps.Pipeline, deps.PromptVal).Process
	}
	dressRecommendation := unavailable("weather assistant is not configured")
	if deps.Weather != nil {
		dressRecommendation = handler.NewWeatherHandler(deps.Weather).DressRecommendation
	}

	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logging)
	if cfg.EnableMetrics {
		r.Use(observability.MetricsMiddleware)
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))

	// Public routes
	r.Get("/", healthH.Welcome)
	r.Get("/health", healthH.Health)
	if cfg.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Auth + rate limiting for everything else
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute, cfg.APIKeyHeader),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Post("/generate-message/", generateMessage)
		r.Post("/create-appointment/", calendarH.BookAppointment)
		r.Get("/appointments/", calendarH.ListAppointments)
		r.Post("/appointments/", calendarH.CreateAppointment)
		r.Get("/schedules/", calendarH.ListSchedules)
		r.Post("/schedules/", calendarH.CreateSchedule)

		r.Route("/employees", employeesH.Mount)
		r.Route("/departments", departmentsH.Mount)
		r.Route("/reservations", reservationsH.Mount)

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/nl-query/process", processNLQuery)
			r.Post("/weather-assistant/dress-recommendation", dressRecommendation)
		})
	})

	return r
}

func unavailable(msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models.WriteError(w, http.StatusServiceUnavailable, fmt.Sprintf("%s: %s", r.URL.Path, msg))
	}
}
