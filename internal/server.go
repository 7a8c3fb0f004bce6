package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gdinexus/gfit-workout-service/internal/config"
	"github.com/gdinexus/gfit-workout-service/internal/memberapi"
	"github.com/gdinexus/gfit-workout-service/internal/middleware"
	"github.com/gdinexus/gfit-workout-service/internal/session"
	"github.com/gdinexus/gfit-workout-service/internal/telemetry/metrics"
	"github.com/gdinexus/gfit-workout-service/internal/telemetry/tracing"
	"github.com/gdinexus/gfit-workout-service/internal/workouts"
	"github.com/gdinexus/gfit-workout-service/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	appSecret         string // shared with the GFit mobile clients
	versionInfo       string

	config            *config.Config
	memberApiClient   *memberapi.Client
	sessionController *session.Controller
	sessionHistory    *session.History

	redisClient *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	MemberApiToken          string
	AppSecret               string
	RedisPassword           string
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("workout_engine", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // will be set to 1 when all is set and ran

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "workout-engine", rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Minute,
	}

	memberApiClient := memberapi.NewClient(
		params.Config.MemberApiBaseURL,
		memberapi.StaticToken(params.MemberApiToken),
		tracedHttpClient,
		params.Config.ExercisesCacheExpireSec,
	)

	sessionHistory := session.NewHistory(rdb)
	sessionController := session.NewController(
		session.NewRedisStore(rdb),
		memberApiClient,
		sessionHistory,
		metricsManager,
	)
	if err := sessionController.Init(ctx); err != nil {
		return nil, fmt.Errorf("init session controller: %w", err)
	}

	return &Server{
		config:            params.Config,
		appSecret:         params.AppSecret,
		versionInfo:       params.VersionInfo,
		memberApiClient:   memberApiClient,
		sessionController: sessionController,
		sessionHistory:    sessionHistory,

		redisClient: rdb,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("workout-engine-router"))

	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET").Name("version")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteTextResponseOK(w, "ok")
	}).Methods("GET").Name("health")

	workoutsHandler := workouts.NewHandler(s.memberApiClient)
	r.HandleFunc("/workouts/today", workoutsHandler.HandleToday).
		Methods("GET", "OPTIONS").Name("workouts-today")
	r.HandleFunc("/workouts/calendar/{year}/{month}", workoutsHandler.HandleCalendar).
		Methods("GET", "OPTIONS").Name("workouts-calendar")
	r.HandleFunc("/workouts/stats/weekly", workoutsHandler.HandleWeeklyStats).
		Methods("GET", "OPTIONS").Name("workouts-weekly-stats")

	sessionHandler := session.NewHandler(s.sessionController, s.sessionHistory)
	sessionRouter := r.PathPrefix("/session").Subrouter()
	sessionRouter.HandleFunc("", sessionHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-session")
	sessionRouter.HandleFunc("", sessionHandler.HandleDiscard).Methods("DELETE", "OPTIONS").Name("discard-session")
	sessionRouter.HandleFunc("/activity", sessionHandler.HandleActivity).Methods("GET", "OPTIONS").Name("session-activity")
	sessionRouter.HandleFunc("/start", sessionHandler.HandleStart).Methods("POST", "OPTIONS").Name("start-session")
	sessionRouter.HandleFunc("/stop", sessionHandler.HandleStop).Methods("POST", "OPTIONS").Name("stop-session")
	sessionRouter.HandleFunc("/confirm", sessionHandler.HandleConfirm).Methods("POST", "OPTIONS").Name("confirm-session")
	sessionRouter.HandleFunc("/cancel", sessionHandler.HandleCancel).Methods("POST", "OPTIONS").Name("cancel-session")
	sessionRouter.HandleFunc("/quick-complete", sessionHandler.HandleQuickComplete).Methods("POST", "OPTIONS").Name("quick-complete")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	sessionRouter.Use(middleware.RateLimit(
		reqRateLimiter,
		"session",
		s.config.SessionRateLimitAllowedPerMin,
		s.metricsManager,
	))

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.appSecret)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("workout engine, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.sessionController.Dispose()

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
