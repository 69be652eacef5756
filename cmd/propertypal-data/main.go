package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propertypal/common/database"
	"propertypal/common/logger"
	"propertypal/common/mqtt"
	rediscommon "propertypal/common/redis"
	"propertypal/internal/auth"
	"propertypal/internal/client"
	"propertypal/internal/config"
	"propertypal/internal/events"
	"propertypal/internal/hierarchy"
	httpapi "propertypal/internal/http"
	"propertypal/internal/members"
	"propertypal/internal/repository"
	"propertypal/internal/service"
	"propertypal/internal/store"
	"propertypal/internal/wizard"

	"go.uber.org/zap"
)

// resources everything main has to close on shutdown
type resources struct {
	db    *sql.DB
	redis *rediscommon.Client
	mqtt  *mqtt.Client
}

func (r *resources) close() {
	if r.mqtt != nil {
		r.mqtt.Disconnect()
	}
	if r.redis != nil {
		_ = rediscommon.Close(r.redis)
	}
	_ = database.Close(r.db)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback, lerr := logger.NewLoggerWithDefaults()
		if lerr != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		fallback.Fatal("Failed to load config", zap.Error(err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "propertypal-data")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := &resources{}
	defer res.close()

	if err := run(ctx, cfg, log, res); err != nil {
		log.Error("propertypal-data stopped", zap.Error(err))
		res.close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, res *resources) error {
	// 1. Storage
	var dialect database.Dialect
	if cfg.Storage.Driver != "memory" {
		db, d, err := database.Open(&cfg.Database)
		if err != nil {
			return err
		}
		res.db, dialect = db, d
		if err := repository.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
		log.Info("Database ready", zap.String("driver", string(dialect)))
	}

	if cfg.Draft.Store == "redis" || cfg.Events.Sink == "redis" {
		res.redis = rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(ctx, res.redis); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	// 2. Draft and token KV
	kv, err := newKV(ctx, cfg, res, dialect)
	if err != nil {
		return err
	}

	// 3. Events
	publisher, err := newPublisher(cfg, res, log)
	if err != nil {
		return err
	}

	// 4. Operator auth, both backend modes
	router := httpapi.NewRouter(log)
	router.RegisterHealthRoutes()

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	operator, err := auth.NewOperator(cfg.Auth.OperatorUser, cfg.Auth.OperatorPassword, issuer)
	if err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	protect := auth.Middleware(issuer)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(operator, log))

	// 5. Backend
	var (
		propertiesAPI hierarchy.PropertiesAPI
		membersAPI    members.MembersAPI
		paymentsAPI   httpapi.PaymentsAPI
		remote        *client.APIClient
		local         *localBackend
	)
	if cfg.Remote() {
		remote = client.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout, client.NewTokenStore(kv, log), log)
		if cfg.API.Username != "" {
			if err := remote.Login(ctx, cfg.API.Username, cfg.API.Password); err != nil {
				log.Warn("Remote login failed, continuing with stored tokens", zap.Error(err))
			}
		}
		propertiesAPI = client.NewPropertiesClient(remote)
		membersAPI = client.NewMembersClient(remote)
		paymentsAPI = client.NewPaymentsClient(remote)
		log.Info("Using remote backend", zap.String("base_url", cfg.API.BaseURL))
	} else {
		local = newLocalBackend(cfg, res.db, dialect, log)
		propertiesAPI = local.properties
		membersAPI = local.members
		paymentsAPI = local.payments
		log.Info("Using local backend", zap.String("storage", cfg.Storage.Driver))
	}

	// 6. Stores
	st := hierarchy.New(propertiesAPI, log, hierarchy.WithPublisher(publisher))
	roster := members.New(membersAPI, st, log)
	wz := wizard.New(kv, st, log, wizard.WithKey(cfg.Draft.Key))

	reload := func(ctx context.Context) {
		st.LoadProperties(ctx)
		roster.Load(ctx, "")
	}
	reload(ctx)
	wz.Load(ctx)

	// 7. Routes
	if local != nil {
		contract := httpapi.NewContractHandler(local.properties, local.members, local.payments, log, httpapi.WithAfterWrite(reload))
		router.RegisterContractRoutes(contract, protect)
	}
	if remote != nil {
		router.RegisterSessionRoutes(httpapi.NewSessionHandler(remote, reload, log), protect)
	}
	router.RegisterAppRoutes(httpapi.NewAppHandler(st, roster, paymentsAPI, log), protect)
	router.RegisterWizardRoutes(httpapi.NewWizardHandler(wz, st, log), protect)

	// 8. Serve
	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	case serveErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	return serveErr
}

func newKV(ctx context.Context, cfg *config.Config, res *resources, dialect database.Dialect) (store.KV, error) {
	if cfg.Draft.Store == "redis" {
		return store.NewRedisKV(res.redis), nil
	}
	if res.db == nil {
		return nil, fmt.Errorf("draft store %q needs STORAGE_DRIVER sqlite or postgres", cfg.Draft.Store)
	}
	kv := store.NewSQLKV(res.db, dialect)
	if err := kv.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to create kv schema: %w", err)
	}
	return kv, nil
}

func newPublisher(cfg *config.Config, res *resources, log *zap.Logger) (events.Publisher, error) {
	switch cfg.Events.Sink {
	case "mqtt":
		c, err := mqtt.NewClient(&cfg.MQTT)
		if err != nil {
			return nil, err
		}
		res.mqtt = c
		log.Info("Publishing events to MQTT", zap.String("broker", cfg.MQTT.Broker), zap.String("topic", cfg.Events.Topic))
		return events.NewMQTTPublisher(c, cfg.Events.Topic), nil
	case "redis":
		log.Info("Publishing events to Redis stream", zap.String("stream", cfg.Events.Topic))
		return events.NewStreamPublisher(res.redis, cfg.Events.Topic, log), nil
	default:
		return events.Nop{}, nil
	}
}

// localBackend services behind the in-process REST contract
type localBackend struct {
	properties service.PropertyService
	members    service.MemberService
	payments   service.PaymentService
}

func newLocalBackend(cfg *config.Config, db *sql.DB, dialect database.Dialect, log *zap.Logger) *localBackend {
	var (
		properties  repository.PropertiesRepository
		memberRepo  repository.MembersRepository
		paymentRepo repository.PaymentsRepository
	)
	if cfg.Storage.Driver == "memory" {
		properties = repository.NewMemoryProperties()
		memberRepo = repository.NewMemoryMembers()
		paymentRepo = repository.NewMemoryPayments()
	} else {
		properties = repository.NewSQLProperties(db, dialect)
		memberRepo = repository.NewSQLMembers(db, dialect)
		paymentRepo = repository.NewSQLPayments(db, dialect)
	}
	return &localBackend{
		properties: service.NewPropertyService(properties, log),
		members:    service.NewMemberService(memberRepo, properties, log),
		payments:   service.NewPaymentService(paymentRepo, memberRepo, log),
	}
}
