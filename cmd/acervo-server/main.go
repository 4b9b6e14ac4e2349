// Package main is the entry point for the Acervo server, a library
// management REST API over books, authors, users and loans.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/acervo-dev/acervo/internal/config"
	"github.com/acervo-dev/acervo/internal/handler"
	"github.com/acervo-dev/acervo/internal/hateoas"
	"github.com/acervo-dev/acervo/internal/lock"
	"github.com/acervo-dev/acervo/internal/metrics"
	"github.com/acervo-dev/acervo/internal/repository"
	"github.com/acervo-dev/acervo/internal/repository/postgres"
	"github.com/acervo-dev/acervo/internal/repository/sqlite"
	"github.com/acervo-dev/acervo/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting acervo server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	repos, health, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer health.Close()

	// Loan lock backend
	locker, lockCleanup, err := newLocker(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer lockCleanup()

	// Services
	autorSvc := service.NewAutorService(repos.Autor, logger)
	usuarioSvc := service.NewUsuarioService(repos.Usuario, logger)
	livroSvc := service.NewLivroService(repos.Livro, repos.Autor, logger)
	emprestimoSvc := service.NewEmprestimoService(
		repos.Emprestimo,
		repos.Usuario,
		locker,
		logger,
		cfg.Emprestimo.Limite,
		cfg.Emprestimo.Prazo(),
	)

	// HTTP surface
	links := hateoas.NewBuilder(cfg.Server.BasePath)
	validate := validator.New()

	var extra []func(http.Handler) http.Handler
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		extra = append(extra, m.Middleware)
	}

	router := handler.NewRouter(handler.RouterConfig{
		AutorHandler:      handler.NewAutorHandler(autorSvc, links, validate, logger),
		UsuarioHandler:    handler.NewUsuarioHandler(usuarioSvc, links, validate, logger),
		LivroHandler:      handler.NewLivroHandler(livroSvc, links, validate, logger),
		EmprestimoHandler: handler.NewEmprestimoHandler(emprestimoSvc, links, validate, logger),
		BasePath:          cfg.Server.BasePath,
		Middleware:        extra,
		Logger:            logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", server.Addr).Str("base_path", cfg.Server.BasePath).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var metricsServer *http.Server
	if m != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Str("addr", metricsServer.Addr).Str("path", cfg.Metrics.Path).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}

	logger.Info().Msg("server stopped")
	return nil
}

// openDatabase connects to the configured driver, runs migrations and builds
// the repository set.
func openDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Repositories, repository.DatabaseHealth, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			CacheSize:       cfg.Database.CacheSize,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return repository.Repositories{}, nil, err
		}
		return repository.Repositories{
			Autor:      sqlite.NewAutorRepository(db),
			Usuario:    sqlite.NewUsuarioRepository(db),
			Livro:      sqlite.NewLivroRepository(db),
			Emprestimo: sqlite.NewEmprestimoRepository(db),
		}, db, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return repository.Repositories{}, nil, err
		}
		return repository.Repositories{
			Autor:      postgres.NewAutorRepository(db),
			Usuario:    postgres.NewUsuarioRepository(db),
			Livro:      postgres.NewLivroRepository(db),
			Emprestimo: postgres.NewEmprestimoRepository(db),
		}, db, nil

	default:
		return repository.Repositories{}, nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// newLocker selects the lock backend: Redis when enabled, in-process otherwise.
func newLocker(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (lock.Locker, func(), error) {
	if !cfg.Enabled {
		logger.Info().Msg("using in-memory loan locks")
		locker := lock.NewMemoryLocker()
		return locker, locker.Close, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr()).Msg("using redis loan locks")
	return lock.NewRedisLocker(client), func() { client.Close() }, nil
}

// newLogger builds the root logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	logger := zerolog.New(out)
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	return logger.Level(level).With().Timestamp().Logger()
}
