package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/newscraft/capi-ingest/internal/config"
	"github.com/newscraft/capi-ingest/internal/infra/database"
	"github.com/newscraft/capi-ingest/internal/infra/gateway"
	"github.com/newscraft/capi-ingest/internal/infra/repository"
	"github.com/newscraft/capi-ingest/internal/present/rest"
	"github.com/newscraft/capi-ingest/internal/service"
	"github.com/newscraft/capi-ingest/internal/usecase"
)

const serviceName = "capi-ingest"

func main() {
	configPath := flag.String("config", "/etc/capi-ingest/config.yaml", "path to the configuration file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer shutdown()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	collections := repository.NewCollectionRepository(db)
	audit := repository.NewAuditRepository(db)
	authKeys := repository.NewAuthKeyRepository(db)

	auth := service.NewAuthService(authKeys, conf.Auth.CacheTTL())
	signal := service.NewSignalService(rdb)
	capi := gateway.NewCAPIGateway(conf.CAPI.BaseURL, conf.CAPI.APIKey, conf.CAPI.Timeout())

	ingest := usecase.NewIngestUsecase(
		collections, audit, auth, capi, signal,
		conf.AuthKeyName(), conf.Ingest.LegacyCropsEnabled(),
	)
	query := usecase.NewQueryUsecase(
		repository.NewCachedCollections(collections, mc, conf.Server.QueryCacheTTL()),
	)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(serviceName))
	}

	handler := rest.NewHandler(conf.Auth.KeyHeader, ingest, query, signal)
	handler.RegisterRoutes(e)

	slog.Info("starting server",
		slog.String("listenAddr", conf.Server.ListenAddr),
		slog.String("environment", conf.Environment),
	)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTraceProvider(endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return func() {
		_ = tp.Shutdown(context.Background())
	}, nil
}
