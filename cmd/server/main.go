package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/tableside/backoffice/internal/catalog"
	"github.com/tableside/backoffice/internal/clock"
	"github.com/tableside/backoffice/internal/messaging"
	"github.com/tableside/backoffice/internal/orders"
	"github.com/tableside/backoffice/internal/stats"
	"github.com/tableside/backoffice/internal/tables"
	"github.com/tableside/backoffice/internal/telemetry"
	"github.com/tableside/backoffice/internal/users"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "backoffice", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("backoffice", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter provider", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var createdProducer, closedProducer *messaging.Producer
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")
		createdProducer = messaging.NewProducer(brokers, "order.created")
		defer func() { _ = createdProducer.Close() }()
		closedProducer = messaging.NewProducer(brokers, "order.closed")
		defer func() { _ = closedProducer.Close() }()
	}

	orderRepo := orders.NewOrderRepository(db)
	catalogRepo := catalog.NewRepository(db)
	tableRepo := tables.NewRepository(db)
	userRepo := users.NewRepository(db)

	orderService, err := orders.NewService(orderRepo, userRepo, tableRepo, catalogRepo,
		clock.NewSystem(), publisher(createdProducer), publisher(closedProducer), logger)
	if err != nil {
		logger.Error("failed to create order service", "error", err)
		os.Exit(1)
	}
	statsService := stats.NewService(orderRepo, catalogRepo, userRepo)

	orderHandler := orders.NewHandler(orderService, logger)
	statsHandler := stats.NewHandler(statsService, logger)
	catalogHandler := catalog.NewHandler(catalogRepo, logger)
	tableHandler := tables.NewHandler(tableRepo, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(orderHandler.HandleCreate))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(orderHandler.HandleList))
	mux.HandleFunc("GET /orders/open", telemetry.WithHTTPRoute(orderHandler.HandleListOpen))
	mux.HandleFunc("GET /orders/serve-status", telemetry.WithHTTPRoute(orderHandler.HandleServeStatus))
	mux.HandleFunc("GET /orders/by-status", telemetry.WithHTTPRoute(orderHandler.HandleListByStatus))
	mux.HandleFunc("GET /orders/range", telemetry.WithHTTPRoute(orderHandler.HandleListRange))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleGet))
	mux.HandleFunc("PUT /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleUpdate))
	mux.HandleFunc("PUT /orders/{id}/ready", telemetry.WithHTTPRoute(orderHandler.HandleSetReady))
	mux.HandleFunc("DELETE /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleDelete))

	mux.HandleFunc("GET /stats/order-count", telemetry.WithHTTPRoute(statsHandler.HandleOrderCount))
	mux.HandleFunc("GET /stats/total-price", telemetry.WithHTTPRoute(statsHandler.HandleTotalPrice))
	mux.HandleFunc("GET /stats/waiters", telemetry.WithHTTPRoute(statsHandler.HandleWaiters))
	mux.HandleFunc("GET /stats/dishes", telemetry.WithHTTPRoute(statsHandler.HandleDishes))
	mux.HandleFunc("GET /stats/ingredients", telemetry.WithHTTPRoute(statsHandler.HandleIngredients))
	mux.HandleFunc("GET /stats/traffic", telemetry.WithHTTPRoute(statsHandler.HandleTraffic))

	mux.HandleFunc("GET /dishes", telemetry.WithHTTPRoute(catalogHandler.HandleListDishes))
	mux.HandleFunc("POST /dishes", telemetry.WithHTTPRoute(catalogHandler.HandleCreateDish))
	mux.HandleFunc("GET /dishes/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleGetDish))
	mux.HandleFunc("PUT /dishes/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleUpdateDish))
	mux.HandleFunc("DELETE /dishes/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleDeleteDish))
	mux.HandleFunc("GET /categories", telemetry.WithHTTPRoute(catalogHandler.HandleListCategories))
	mux.HandleFunc("POST /categories", telemetry.WithHTTPRoute(catalogHandler.HandleCreateCategory))
	mux.HandleFunc("GET /ingredients", telemetry.WithHTTPRoute(catalogHandler.HandleListIngredients))
	mux.HandleFunc("POST /ingredients", telemetry.WithHTTPRoute(catalogHandler.HandleCreateIngredient))
	mux.HandleFunc("GET /units", telemetry.WithHTTPRoute(catalogHandler.HandleListUnits))
	mux.HandleFunc("POST /units", telemetry.WithHTTPRoute(catalogHandler.HandleCreateUnit))

	mux.HandleFunc("GET /tables", telemetry.WithHTTPRoute(tableHandler.HandleList))
	mux.HandleFunc("POST /tables", telemetry.WithHTTPRoute(tableHandler.HandleCreate))
	mux.HandleFunc("PUT /tables/{id}/occupied", telemetry.WithHTTPRoute(tableHandler.HandleSetOccupied))

	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "backoffice",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting backoffice server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// publisher keeps a typed nil *Producer from sneaking into the service as a
// non-nil interface.
func publisher(p *messaging.Producer) orders.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
