package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"classroom-live-service/internal/app"
	"classroom-live-service/internal/domain"
	pginfra "classroom-live-service/internal/infra/postgres"
	pgmigrations "classroom-live-service/internal/infra/postgres/migrations"
	redisinfra "classroom-live-service/internal/infra/redis"
	"classroom-live-service/internal/realtime"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestSubmitAnswerEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedTest(t, ctx, pgURL, sampleTest())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pginfra.NewContentLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	contentRepo := redisinfra.NewContentRepository(redisClient, loader, 5*time.Minute)
	presence := redisinfra.NewPresence(redisClient, 5*time.Minute)

	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(registry)
	publisher := realtime.NewPublisher(gateway)
	board := app.NewLeaderboardAggregator(publisher)
	subs := &discardSubmissions{}
	service := app.NewLiveTestService(contentRepo, subs, board, publisher, presence)

	if _, err := service.Join(ctx, "test-1", "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := service.Join(ctx, "test-1", "u2", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !presence.Live(ctx, "test-1") {
		t.Fatalf("expected liveness marker after join")
	}

	result, err := service.SubmitAnswer(ctx, "test-1", "u2", "Bob", domain.AnswerSubmission{
		QuestionID: "q1",
		OptionID:   "o2",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct || result.Awarded != 1 || result.TotalScore != 1 {
		t.Fatalf("expected correct answer with 1 point, got %+v", result)
	}

	lb := board.Snapshot("test-1")
	if len(lb.Entries) != 2 || lb.Entries[0].UserID != "u2" || lb.Entries[0].Rank != 1 {
		t.Fatalf("expected bob leading, got %+v", lb.Entries)
	}

	service.EndTest(ctx, "test-1", "done", "")
	if presence.Live(ctx, "test-1") {
		t.Fatalf("expected liveness marker cleared after end")
	}
}

func TestClassroomStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := pginfra.NewClassroomStore(pool)
	now := time.Now().UTC().Truncate(time.Second)
	a := domain.Announcement{
		ID: "a1", ClassroomID: "c1", AuthorID: "t1",
		Title: "Exam", Body: "Friday", CreatedAt: now, UpdatedAt: now,
	}
	if err := store.AddAnnouncement(ctx, a); err != nil {
		t.Fatalf("add announcement: %v", err)
	}

	a.Title = "Exam moved"
	a.UpdatedAt = now.Add(time.Minute)
	if err := store.UpdateAnnouncement(ctx, a); err != nil {
		t.Fatalf("update announcement: %v", err)
	}

	list, err := store.ListAnnouncements(ctx, "c1")
	if err != nil {
		t.Fatalf("list announcements: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Exam moved" {
		t.Fatalf("unexpected announcements %+v", list)
	}

	if err := store.DeleteAnnouncement(ctx, "c1", "a1"); err != nil {
		t.Fatalf("delete announcement: %v", err)
	}
	if err := store.DeleteAnnouncement(ctx, "c1", "a1"); err != domain.ErrAnnouncementNotFound {
		t.Fatalf("expected ErrAnnouncementNotFound, got %v", err)
	}
}

type discardSubmissions struct{}

func (discardSubmissions) SaveSubmission(context.Context, string, string, domain.AnswerSubmission, int) error {
	return nil
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "live", "POSTGRES_PASSWORD": "livepass", "POSTGRES_DB": "livedb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://live:livepass@%s:%s/livedb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func seedTest(t *testing.T, ctx context.Context, dsn string, test domain.Test) {
	t.Helper()
	migrateDB(t, ctx, dsn)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	data, err := json.Marshal(test)
	if err != nil {
		t.Fatalf("marshal test: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO tests (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, test.ID, string(data)); err != nil {
		t.Fatalf("insert test: %v", err)
	}
}

func sampleTest() domain.Test {
	return domain.Test{
		ID: "test-1",
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
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
