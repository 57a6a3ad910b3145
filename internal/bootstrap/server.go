package bootstrap

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	householdapp "github.com/mohammadpnp/household-import/internal/application/household"
	"github.com/mohammadpnp/household-import/internal/application/importer"
	"github.com/mohammadpnp/household-import/internal/config"
	domain "github.com/mohammadpnp/household-import/internal/domain/household"
	"github.com/mohammadpnp/household-import/internal/infrastructure/file"
	"github.com/mohammadpnp/household-import/internal/infrastructure/progress"
	"github.com/mohammadpnp/household-import/internal/infrastructure/repository"
	httpecho "github.com/mohammadpnp/household-import/internal/interfaces/http/echo"
)

type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Pool   *pgxpool.Pool
	Redis  *redis.Client
}

// App is the wired API: the HTTP server, the run pool behind it, and the
// notification listener when cross-instance fan-out is enabled.
type App struct {
	Server   *echo.Echo
	Runner   *importer.Runner
	Listener *progress.PgListener
}

func NewApp(deps Dependencies) *App {
	cfg := deps.Config
	logger := cfg.Logger()

	channel, hub, listener := newProgressChannel(deps, logger)

	households := repository.NewHouseholdRepository(deps.DB)
	runs := repository.NewImportRunRepository(deps.DB)

	driver := importer.NewDriver(households, channel, runs, logger, importer.DriverConfig{})
	runner := importer.NewRunner(driver, logger, importer.RunnerConfig{
		Workers:   cfg.Import.Workers,
		QueueSize: cfg.Import.QueueSize,
	})

	importHandler := httpecho.NewImportHandler(
		importer.NewStartImport(runner),
		file.NewSpreadsheetSource(cfg.Import.UploadDir),
		logger,
	)
	progressHandler := httpecho.NewProgressHandler(
		importer.NewImportProgressService(channel, runner),
		importer.NewListRuns(runs),
		hub,
		logger,
	)
	householdHandler := httpecho.NewHouseholdHandler(
		householdapp.NewGetHouseholdByID(repository.NewHouseholdQueryRepository(deps.DB)),
	)

	server := NewHTTPServer(logger, cfg.Import.MaxUploadSize)
	httpecho.RegisterRoutes(server, httpecho.Handlers{
		Import:    importHandler,
		Progress:  progressHandler,
		Household: householdHandler,
	})

	return &App{Server: server, Runner: runner, Listener: listener}
}

func newProgressChannel(deps Dependencies, logger *logrus.Logger) (domain.ProgressChannel, *progress.Hub, *progress.PgListener) {
	opts := deps.Config.Progress
	hub := progress.NewHub(logger)

	var store domain.ProgressStore = progress.NewMemoryStore()
	if opts.Backend == config.BackendRedis {
		store = progress.NewRedisStore(deps.Redis, opts.TTL)
	}

	if !opts.PgNotifyEnabled || deps.Pool == nil {
		return progress.NewChannel(store, hub), hub, nil
	}

	// Every instance, this one included, delivers through its listener.
	channel := progress.NewPgNotifier(progress.NewChannel(store, nil), deps.Pool, opts.PgNotifyChannel)
	listener := progress.NewPgListener(deps.Pool, opts.PgNotifyChannel, store, hub, logger)
	return channel, hub, listener
}

// NewHTTPServer returns echo with the shared middleware, health and metrics
// endpoints registered.
func NewHTTPServer(logger *logrus.Logger, bodyLimit string) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(requestLogger(logger))
	server.Use(middleware.BodyLimit(bodyLimit))

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	server.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return server
}

func requestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
				"user_id":    c.Request().Header.Get(httpecho.HeaderUserID),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
