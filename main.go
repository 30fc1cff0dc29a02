package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	config "github.com/brenpaiva/ecommerce-store/configs"
	"github.com/brenpaiva/ecommerce-store/internal/auth"
	"github.com/brenpaiva/ecommerce-store/internal/checkout"
	"github.com/brenpaiva/ecommerce-store/internal/db"
	"github.com/brenpaiva/ecommerce-store/internal/events"
	"github.com/brenpaiva/ecommerce-store/internal/handlers"
	"github.com/brenpaiva/ecommerce-store/internal/images"
	"github.com/brenpaiva/ecommerce-store/internal/metrics"
	"github.com/brenpaiva/ecommerce-store/internal/notifier"
	"github.com/brenpaiva/ecommerce-store/internal/payment"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := config.LoadStoreConfig()

	db.Init()
	auth.Init(config.LoadOIDCConfig())

	// ── collaborators ──
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg)

	gateway, err := payment.NewMercadoPago(config.LoadPaymentConfig().MercadoPagoAccessToken, store.CurrencyID)
	if err != nil {
		log.Fatalf("Payment gateway init error: %v", err)
	}

	imageURLs, err := images.New(ctx, config.LoadImagesConfig())
	if err != nil {
		log.Fatalf("Image storage init error: %v", err)
	}

	dispatcher := notifier.NewDispatcher(ctx, config.LoadEmailConfig(), config.LoadAfricaTalkingConfig())
	signer := payment.NewSigner(store.CallbackSecret)

	handlers.Configure(handlers.Options{
		Checkout: &checkout.Service{
			Gateway:      gateway,
			Signer:       signer,
			CallbackBase: store.PublicBaseURL + "/payments/callback",
		},
		Payments:   &payment.Processor{Signer: signer, Notifier: dispatcher},
		Images:     imageURLs,
		Metrics:    serverMetrics,
		StaffGroup: store.StaffGroup,
	})

	// ── outbox relay ──
	eventsCfg := config.LoadEventsConfig()
	kafkaClient := events.NewClient(eventsCfg.KafkaBrokers)
	if kafkaClient.Enabled() {
		writer := kafkaClient.NewWriter(eventsCfg.Topic)
		defer writer.Close()
		relay := &events.Relay{DB: db.DB, Publisher: events.KafkaPublisher{Writer: writer}}
		go relay.Run(ctx)
		log.Printf("Outbox relay publishing to %s", eventsCfg.Topic)
	} else {
		log.Println("KAFKA_BROKERS not set, outbox events stay in the database")
	}

	r := gin.Default()

	// ── session store ──
	r.Use(sessions.Sessions(auth.SessionName, cookie.NewStore([]byte(store.SessionSecret))))
	r.Use(serverMetrics.Middleware())

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	r.GET("/auth/login", auth.Login)
	r.GET("/auth/callback", auth.Callback)
	r.GET("/auth/logout", auth.Logout)

	// ── storefront, account and staff area ──
	handlers.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + store.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Store listening on :%s", store.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}
	dispatcher.Wait()
}
