package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongoadapter "github.com/benjithedalilama/eat-wild/internal/adapters/mongo"
	"github.com/benjithedalilama/eat-wild/internal/adapters/pg"
	"github.com/benjithedalilama/eat-wild/internal/adapters/rabbit"
	redisadapter "github.com/benjithedalilama/eat-wild/internal/adapters/redis"
	"github.com/benjithedalilama/eat-wild/internal/config"
	httphandler "github.com/benjithedalilama/eat-wild/internal/http"
	"github.com/benjithedalilama/eat-wild/internal/notify"
	"github.com/benjithedalilama/eat-wild/internal/observability"
	"github.com/benjithedalilama/eat-wild/internal/payments"
	"github.com/benjithedalilama/eat-wild/internal/rateLimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	repo := pg.NewRepository(pool)

	// redis, rabbit and mongo are optional collaborators; the booking flow
	// runs on postgres + stripe alone.
	var rl *rateLimit.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		rl = rateLimit.NewRateLimiter(redisadapter.NewCache(redisClient))
	}

	var pub httphandler.TicketPublisher
	if cfg.RabbitURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()
		rabbitPub, err := rabbit.NewPublisher(rabbitConn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
		pub = rabbitPub
	}

	var audit httphandler.AuditLog
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		audit = mongoadapter.NewAuditLogger(mongoClient.Database("eatwild"), logger)
	}

	pay := payments.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.AppURL)
	mailer := notify.NewMailer(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppURL, logger)

	handlers := httphandler.NewHandlers(cfg, repo, pay, mailer, pub, audit, logger)
	r := httphandler.SetupRouter(handlers, logger, rl)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
