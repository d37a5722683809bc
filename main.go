package main

import (
	"context"
	"embed"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"
	"github.com/joho/godotenv"

	"github.com/comandahub/comanda/internal/comanda"
	"github.com/comandahub/comanda/internal/kitchen"
	"github.com/comandahub/comanda/internal/mongo"
	"github.com/comandahub/comanda/pkg"
)

//go:embed seed.json
var seedFS embed.FS

const (
	appNamespace = "COMANDA"
	appName      = "comanda"
	appVersion   = "0.1.0"
)

func main() {
	_ = godotenv.Load()

	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup with error: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	lifecycle := []interface{}{}

	tableRepo := mongo.NewTableRepo(config, logger)
	if err := tableRepo.Start(ctx); err != nil {
		log.Fatalf("%s(%s) cannot start table repository: %v", appName, appVersion, err)
	}

	db := tableRepo.GetDatabase()
	if db == nil {
		err := errors.New("cannot get table repo database")
		log.Fatalf("%s(%s) cannot initialize database: %v", appName, appVersion, err)
	}

	tabRepo := mongo.NewTabRepo(db)
	batchRepo := mongo.NewBatchRepo(db)
	lineItemRepo := mongo.NewLineItemRepo(db)
	paymentRepo := mongo.NewPaymentRepo(db)
	settlementRepo := mongo.NewSettlementRepo(db)
	productionOrderRepo := mongo.NewProductionOrderRepo(db)

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	publisher, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}
	lifecycle = append(lifecycle, apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})

	subscriber, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}
	lifecycle = append(lifecycle, apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return subscriber.Close()
		},
	})

	// The retained stream captures production order events published on the
	// core connection, so boards can replay them after a restart.
	stream, err := pkg.NewNATSStream(pkg.NATSStreamConfig{
		URL:          natsURL,
		StreamName:   "PRODUCTION_EVENTS",
		Topic:        pkg.ProductionOrdersTopic + ".*",
		ConsumerName: appName,
		MaxAge:       24 * time.Hour,
	})
	if err != nil {
		logger.Info("JetStream unavailable, boards will warm from the database", "error", err)
		stream = nil
	} else {
		lifecycle = append(lifecycle, apt.LifecycleHooks{
			OnStop: func(context.Context) error {
				return stream.Close()
			},
		})
	}

	board := newBoard(stream, productionOrderRepo, logger)
	boardSubscriber := kitchen.NewProductionOrderSubscriber(subscriber, board, logger)
	lifecycle = append(lifecycle, apt.LifecycleHooks{
		OnStart: func(startCtx context.Context) error {
			return boardSubscriber.Start(startCtx)
		},
	})

	catalogURL := config.GetStringOrDef("services.catalog.url", "http://localhost:8081")
	catalog := comanda.NewCatalogClient(apt.NewServiceClient(catalogURL), logger)

	var roles comanda.RoleChecker
	if authzURL := config.GetStringOrDef("services.authz.url", ""); authzURL != "" {
		roles = comanda.NewAuthzClient(apt.NewServiceClient(authzURL), logger)
	} else {
		logger.Info("authz service not configured, role checks disabled")
		roles = comanda.AllowAllChecker{}
	}

	repos := comanda.Repos{
		TableRepo:      tableRepo,
		TabRepo:        tabRepo,
		BatchRepo:      batchRepo,
		LineItemRepo:   lineItemRepo,
		PaymentRepo:    paymentRepo,
		SettlementRepo: settlementRepo,
	}

	handler := comanda.NewHandler(comanda.HandlerDeps{
		Repos:     repos,
		Catalog:   catalog,
		Roles:     roles,
		Printer:   comanda.NewEventPrinter(publisher, logger),
		Publisher: publisher,
	}, config, logger)

	kitchenHandler := kitchen.NewHandler(productionOrderRepo, board, publisher, config, logger)

	// Choose seeding strategy based on config
	demoEnabled, _ := config.GetString("seeding.demo")
	var seedingFunc func(ctx context.Context) error
	if demoEnabled == "true" {
		logger.Info("Demo seeding enabled")
		seedingFunc = comanda.DemoSeedingFunc(seedCtx, repos, seedFS, logger)
	} else {
		seedingFunc = comanda.SeedingFunc(seedCtx, tableRepo, seedFS, logger)
	}

	seedHooks := apt.LifecycleHooks{
		OnStart: seedingFunc,
		OnStop:  comanda.StopFunc(cancelSeeds),
	}
	lifecycle = append(lifecycle, seedHooks)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true, // Internal API service
	})
	stack = append(stack, middleware.InternalOnly())

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler, kitchenHandler),
		apt.WithLifecycle(lifecycle...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		_ = tableRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}

func newBoard(stream *pkg.NATSStream, repo kitchen.Repository, logger apt.Logger) *kitchen.SectorBoard {
	if stream == nil {
		return kitchen.NewSectorBoard(nil, repo, logger)
	}
	return kitchen.NewSectorBoard(stream, repo, logger)
}
