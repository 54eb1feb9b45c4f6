package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel/trace"

	cartController "github.com/greenplate/ordering/cart/internal/controller"
	"github.com/greenplate/ordering/cart/internal/indicator"
	cartService "github.com/greenplate/ordering/cart/internal/service"
	"github.com/greenplate/ordering/cart/internal/storage"
	"github.com/greenplate/ordering/cart/internal/store"
	catalogClient "github.com/greenplate/ordering/catalog/internal/client"
	catalogController "github.com/greenplate/ordering/catalog/internal/controller"
	checkoutController "github.com/greenplate/ordering/checkout/internal/controller"
	checkoutService "github.com/greenplate/ordering/checkout/internal/service"
	"github.com/greenplate/ordering/internal/config"
	"github.com/greenplate/ordering/internal/constants"
	inErrors "github.com/greenplate/ordering/internal/errors"
	"github.com/greenplate/ordering/internal/infra"
	"github.com/greenplate/ordering/internal/log"
	"github.com/greenplate/ordering/internal/middleware"
	"github.com/greenplate/ordering/internal/otel"
)

func RunOrderingService(c context.Context) {
	c, span := otel.Tracer.Start(c, "RunOrderingService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppOrderingService).
		Str(log.KeyTag, "main RunOrderingService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, constants.AppOrderingService)
	logger = logger.With().Any(log.KeyConfig, cfg).Logger()
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppOrderingService),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppOrderingService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		err = otel.ShutdownOtel(c, otelShutdowns)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().
		Str(log.KeyProcess, "initializing storage").
		Str(log.KeyStorageBackend, cfg.Storage.Backend).
		Logger()
	logger.Info().Msg("initializing storage")
	c = logger.WithContext(c)
	if cfg.Storage.Backend == "postgres" {
		pool := infra.NewDatabaseClient(c, cfg.Database)
		defer func() {
			logger.Info().Msg("shutting down database")
			pool.Close()
			logger.Info().Msg("shutdown database")
		}()
		cartStorage, err := storage.New(cfg.Storage, pool, nil)
		if err != nil {
			logStorageError(logger, span, err)
			return
		}
		run(c, cfg, router, cartStorage)
		return
	}
	if cfg.Storage.Backend == "redis" {
		cache := infra.NewCacheClient(c, cfg.Cache)
		defer func() {
			logger.Info().Msg("shutting down cache")
			if err := cache.Close(); err != nil {
				err = fmt.Errorf("failed shutting down cache with error=%w", err)
				inErrors.HandleError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			logger.Info().Msg("shutdown cache")
		}()
		cartStorage, err := storage.New(cfg.Storage, nil, cache)
		if err != nil {
			logStorageError(logger, span, err)
			return
		}
		run(c, cfg, router, cartStorage)
		return
	}
	cartStorage, err := storage.New(cfg.Storage, nil, nil)
	if err != nil {
		logStorageError(logger, span, err)
		return
	}
	logger.Info().Msg("initialized storage")
	run(c, cfg, router, cartStorage)
}

func logStorageError(logger zerolog.Logger, span trace.Span, err error) {
	err = fmt.Errorf("failed initializing storage with error=%w", err)
	inErrors.HandleError(err, span)
	logger.Error().Err(err).Msg(err.Error())
}

func run(
	c context.Context,
	cfg *config.Config,
	router *mux.Router,
	cartStorage storage.Storage,
) {
	c, span := otel.Tracer.Start(c, "main run")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "main run").Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing cart store").Logger()
	logger.Info().Msg("initializing cart store")
	c = logger.WithContext(c)
	cartStore := store.New(c, cartStorage)
	logger.Info().Msg("initialized cart store")

	logger = logger.With().Str(log.KeyProcess, "initializing cart indicator").Logger()
	logger.Info().Msg("initializing cart indicator")
	cartIndicator := indicator.New(prometheus.DefaultRegisterer, indicator.DefaultPulseWindow)
	go cartIndicator.Run(c, cartStore.Subscribe())
	logger.Info().Msg("initialized cart indicator")

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	cartSvc := cartService.NewCartService(cartStore, cartIndicator)
	checkoutSvc := checkoutService.NewCheckoutService(
		cartStore,
		time.Duration(cfg.Checkout.SettlementDelayMillis)*time.Millisecond,
		cfg.Checkout.DeliveryEstimate,
	)
	menuClient := catalogClient.NewCatalogClient(cfg.Catalog)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "initializing controllers").Logger()
	logger.Info().Msg("initializing controllers")
	cartController.AttachCartController(router, &cartSvc)
	checkoutController.AttachCheckoutController(router, checkoutSvc)
	catalogController.AttachCatalogController(router, menuClient)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	logger.Info().Msg("initialized controllers")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interruption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
