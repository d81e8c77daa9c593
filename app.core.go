package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	server         *http.Server
	console        *Console
	cleanups       []func()
	queueConsumers []func(context.Context) error
}

// journal holds the activity journal components when it is enabled.
type journal struct {
	recorder  ActivityRecorder
	storage   ActivityStorage
	consumers []func(context.Context) error
	cleanups  []func()
}

// setupJournal connects to redis and boltDB and wires the activity recorder
// with its mirror consumer. The ops endpoints read the redis journal, boltDB
// only mirrors it. A disabled journal drops every activity.
func setupJournal(logger *zap.Logger, config *Config, clock Clocker) (*journal, error) {
	if !config.Activity.Enable {
		return &journal{recorder: NopRecorder{}}, nil
	}

	redisClient, err := GetRedisClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis server: %s", err)
	}

	boltDBClient, err := GetBoltDBClient(config)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to boltDB server: %s", err)
	}
	boltStorage := NewBoltActivityStorage(logger, &config.BoltDB, boltDBClient)

	redisStorage := NewRedisActivityStorage(logger, redisClient)
	redisQueue := NewRedisQueue(redisClient)
	boltDBConsumer := NewBoltDBConsumer(logger, redisQueue, boltStorage)

	return &journal{
		recorder: NewActivityService(logger, clock, NewIDsHandler(), redisStorage, redisQueue),
		storage:  redisStorage,
		consumers: []func(context.Context) error{
			func(ctx context.Context) error {
				return boltDBConsumer.Consume(ctx, ActivityQueue)
			},
		},
		cleanups: []func(){
			func() {
				if err := redisClient.Close(); err != nil {
					logger.Error("failed to close redis client", zap.Error(err))
				}
			},
			func() {
				if err := boltStorage.Close(); err != nil {
					logger.Error("failed to close boltDB", zap.Error(err))
				}
			},
		},
	}, nil
}

// NewApp provides an instance of App.
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	logWriter := NewRotatingWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, NewTickClock(clock))

	jn, err := setupJournal(logger, config, clock)
	if err != nil {
		_ = logWriter.Close()
		return nil, err
	}

	localizer := NewLocalizer(config.Locale)
	logger.Info("console messages language", zap.String("app.locale", localizer.Tag().String()))
	// No timeout: remote calls resolve or fail per the transport.
	httpClient := &http.Client{}
	console := NewConsole(logger, httpClient, config.Store.Origin, jn.recorder, localizer)

	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		NewIDsHandler(),
		console,
		jn.storage,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)

	// Build the api server definition.
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        router,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}

	cleanups := append([]func(){}, jn.cleanups...)
	cleanups = append(cleanups,
		func() {
			if ferr := flusher(); ferr != nil {
				fmt.Println("error during flushing of logs: ", ferr)
			}
		},
		func() {
			if cerr := logWriter.Close(); cerr != nil {
				fmt.Println("error during closing of log file: ", cerr)
			}
		},
	)

	return &App{
		logger:         logger,
		config:         config,
		server:         srv,
		console:        console,
		cleanups:       cleanups,
		queueConsumers: jn.consumers,
	}, nil
}

// Run mounts the console screens, starts the api web server and a goroutine
// which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.console.MountAll(nCtx); err != nil {
		app.logger.Warn("console mounted with load failures", zap.String("store.origin", app.config.Store.Origin), zap.Error(err))
	}

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.String("store.origin", app.config.Store.Origin),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("api server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}
		return nil
	}
}

// ConsumeQueues runs all queue consumers into separate controlled goroutines.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			consume := consume
			g.Go(func() error {
				return consume(gCtx)
			})
		}
		return nil
	}
}
