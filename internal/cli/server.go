package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classroom-live-service/internal/app"
	"classroom-live-service/internal/auth"
	"classroom-live-service/internal/config"
	"classroom-live-service/internal/domain"
	"classroom-live-service/internal/infra/memory"
	pginfra "classroom-live-service/internal/infra/postgres"
	redisinfra "classroom-live-service/internal/infra/redis"
	"classroom-live-service/internal/notify"
	"classroom-live-service/internal/realtime"
	transport "classroom-live-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the classroom live server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.ContentLoader = memory.NewStaticContentLoader(sampleTests())
	if pool != nil {
		loader = pginfra.NewContentLoader(pool)
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var contentRepo app.ContentRepository
	if redisClient != nil {
		contentRepo = redisinfra.NewContentRepository(redisClient, loader, contentTTL)
	} else {
		contentRepo = memory.NewContentRepository(loader, contentTTL)
	}

	var classroomStore app.ClassroomStore = memory.NewClassroomStore()
	if pool != nil {
		classroomStore = pginfra.NewClassroomStore(pool)
	}

	var presence app.PresenceMarker = app.NopPresence{}
	if redisClient != nil {
		presence = redisinfra.NewPresence(redisClient, redisTTL)
	}

	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(registry)

	// One publisher backend per deployment: local fan-out by default, the
	// Redis broker when configured. Either way callers only see Publisher.
	var publisher *realtime.Publisher
	bridgeCtx, stopBridge := context.WithCancel(ctx)
	defer stopBridge()
	if cfg.Publisher.Backend == "redis" && redisClient != nil {
		channel := cfg.Publisher.Channel
		if channel == "" {
			channel = "classroom:events"
		}
		publisher = realtime.NewPublisher(realtime.NewBrokerEmitter(redisClient, channel))
		bridge := realtime.NewBridge(redisClient, channel, gateway)
		go func() {
			if err := bridge.Run(bridgeCtx); err != nil && err != context.Canceled {
				log.Printf("broker bridge stopped: %v", err)
			}
		}()
	} else {
		publisher = realtime.NewPublisher(gateway)
	}

	var federation app.Federation
	if cfg.Federation.BaseURL != "" {
		timeout := config.TTLDuration(cfg.Federation.Timeout, 10*time.Second)
		federation = notify.NewClient(cfg.Federation.BaseURL, cfg.Federation.Token, timeout)
	}

	board := app.NewLeaderboardAggregator(publisher)
	tests := app.NewLiveTestService(contentRepo, memory.NewSubmissionStore(), board, publisher, presence)
	classrooms := app.NewClassroomService(classroomStore, publisher, federation)
	notifications := app.NewNotificationService(publisher)
	verifier := auth.NewVerifier(cfg.Auth.Secret)

	wsHandler := transport.NewWSHandler(gateway)
	apiHandler := transport.NewAPIHandler(tests, classrooms, notifications, verifier)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting classroom live service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleTests provides a minimal set of test content; swap this loader with a
// document DB-backed one in production.
func sampleTests() map[string]domain.Test {
	return map[string]domain.Test{
		"test-1": {
			ID:    "test-1",
			Title: "Warm-up",
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "What is 2 + 2?",
					Options: []domain.Option{
						{ID: "o1", Text: "3", Correct: false},
						{ID: "o2", Text: "4", Correct: true},
						{ID: "o3", Text: "5", Correct: false},
					},
					Points: 1,
				},
			},
		},
	}
}
