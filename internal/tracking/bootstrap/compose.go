package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"deliverytrack/internal/shared/auth"
	"deliverytrack/internal/shared/config"
	db_conn "deliverytrack/internal/shared/db"
	"deliverytrack/internal/shared/logger"
	"deliverytrack/internal/shared/mq"
	"deliverytrack/internal/shared/ws"
	"deliverytrack/internal/tracking/adapter/in/in_amqp"
	"deliverytrack/internal/tracking/adapter/in/in_ws"
	"deliverytrack/internal/tracking/adapter/in/transport"
	"deliverytrack/internal/tracking/adapter/out/cache"
	"deliverytrack/internal/tracking/adapter/out/out_amqp"
	"deliverytrack/internal/tracking/adapter/out/out_ws"
	"deliverytrack/internal/tracking/adapter/out/repo"
	"deliverytrack/internal/tracking/adapter/out/routing"
	"deliverytrack/internal/tracking/application/usecase"
	"deliverytrack/internal/tracking/fee"
)

// Run собирает и запускает трекинг-сервис целиком: инфраструктура,
// репозитории, use cases, адаптеры, HTTP сервер. Блокируется до отмены ctx.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) {
	log.Info(logger.Entry{Action: "tracking_service_starting", Message: "initializing tracking service"})

	// Инфраструктура: PostgreSQL
	dbPool, err := db_conn.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "db_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer db_conn.Close(dbPool, log)

	if err := db_conn.Migrate(ctx, dbPool); err != nil {
		log.Fatal(logger.Entry{
			Action:  "db_migration_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	// Инфраструктура: RabbitMQ + топология
	mqConn, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "rabbitmq_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer mqConn.Close()

	if err := mq.SetupTopology(mqConn, log); err != nil {
		log.Fatal(logger.Entry{
			Action:  "rabbitmq_topology_setup_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	// Инфраструктура: Redis (опционален, без него геокэш — сквозные промахи)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn(logger.Entry{
				Action:  "redis_unavailable",
				Message: err.Error(),
			})
			redisClient = nil
		}
		if redisClient != nil {
			defer func() { _ = redisClient.Close() }()
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// WebSocket hub для live-подписчиков
	wsHub := ws.NewHub(jwtService.ExtractUser, cfg.Tracking.SessionQueueSize, cfg.Tracking.IdleSessionTimeout, log)
	go wsHub.Run(ctx)

	// Репозитории
	deliveryRepo := repo.NewDeliveryPgRepository(dbPool, log)
	pingRepo := repo.NewPingPgRepository(dbPool, log)
	routeRepo := repo.NewRoutePgRepository(dbPool, log)
	statusEventRepo := repo.NewStatusEventPgRepository(dbPool, log)
	feeZoneRepo := repo.NewFeeZonePgRepository(dbPool, log)

	// Снапшот зон загружается на старте; дальше — POST /admin/fee-zones/reload
	bootZones, err := feeZoneRepo.ListAll(ctx)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "fee_zones_load_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	zones := fee.NewZones(bootZones)
	log.Info(logger.Entry{
		Action:  "fee_zones_loaded",
		Message: "fee zone snapshot loaded",
		Additional: map[string]any{
			"zones_loaded": len(bootZones),
		},
	})

	// Исходящие адаптеры
	eventPublisher := out_amqp.NewAmqpEventPublisher(mqConn, log)
	deliveryNotifier := out_ws.NewWsDeliveryNotifier(wsHub, log)
	routeProvider := routing.NewHereRouteProvider(cfg.Routing, log)
	geocodeCache := cache.NewRedisGeocodeCache(redisClient, log)

	// Use cases
	locks := usecase.NewKeyedMutex()

	transitionStatusUC := usecase.NewTransitionStatusUseCase(
		deliveryRepo, routeRepo, deliveryNotifier, eventPublisher, locks, log)
	createDeliveryUC := usecase.NewCreateDeliveryUseCase(
		deliveryRepo, routeRepo, routeProvider, zones, eventPublisher, cfg.Routing, cfg.Tracking, log)
	assignCourierUC := usecase.NewAssignCourierUseCase(
		deliveryRepo, deliveryNotifier, eventPublisher, locks, log)
	recordPingUC := usecase.NewRecordPingUseCase(
		pingRepo, deliveryRepo, deliveryNotifier, eventPublisher, transitionStatusUC, cfg.Tracking, log)
	currentStateUC := usecase.NewCurrentStateUseCase(
		deliveryRepo, pingRepo, routeRepo, cfg.Tracking, log)
	routeDetailUC := usecase.NewRouteDetailUseCase(deliveryRepo, routeRepo, log)
	historyUC := usecase.NewHistoryUseCase(deliveryRepo, pingRepo, statusEventRepo, log)
	feePreviewUC := usecase.NewFeePreviewUseCase(zones, cfg.Tracking, log)
	reloadZonesUC := usecase.NewReloadZonesUseCase(feeZoneRepo, zones, log)
	geocodeUC := usecase.NewGeocodeUseCase(geocodeCache, routeProvider, log)

	// Входящие адаптеры: WS-подписки и AMQP fulfillment
	in_ws.NewSubscriberWSHandler(wsHub, deliveryRepo, log)

	fulfillmentConsumer := in_amqp.NewFulfillmentConsumer(mqConn, createDeliveryUC, log)
	go func() {
		if err := fulfillmentConsumer.Start(ctx); err != nil {
			log.Error(logger.Entry{
				Action:  "fulfillment_consumer_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
	}()

	// HTTP
	httpHandler := transport.NewHTTPHandler(
		createDeliveryUC,
		assignCourierUC,
		recordPingUC,
		transitionStatusUC,
		currentStateUC,
		routeDetailUC,
		historyUC,
		feePreviewUC,
		reloadZonesUC,
		geocodeUC,
		log,
	)

	mux := http.NewServeMux()
	authMiddleware := transport.JWTMiddleware(jwtService, log)
	httpHandler.RegisterRoutes(mux, authMiddleware)

	mux.HandleFunc("/ws", wsHub.ServeWS)
	mux.Handle("GET /metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Service.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info(logger.Entry{
			Action:  "http_server_starting",
			Message: fmt.Sprintf("listening on %s", addr),
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(logger.Entry{
				Action:  "http_server_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
	}()

	<-ctx.Done()

	log.Info(logger.Entry{Action: "tracking_service_stopping", Message: "shutting down"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(logger.Entry{
			Action:  "http_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	log.Info(logger.Entry{Action: "tracking_service_stopped", Message: "tracking service stopped"})
}
