package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"classroom-live-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ContentLoader fetches test content from a backing store (e.g., document DB).
type ContentLoader interface {
	LoadTest(ctx context.Context, testID string) (domain.Test, error)
}

// ContentRepository caches test answer keys in Redis (hash per test) and
// falls back to a loader on cache miss.
// Answers are stored as: HSET test:{testID}:answers {questionID} {optionID}
// Points are stored as:  HSET test:{testID}:points  {questionID} {points}
type ContentRepository struct {
	client *redis.Client
	loader ContentLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewContentRepository(client *redis.Client, loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	answerKey := r.answersKey(testID)
	pointKey := r.pointsKey(testID)

	answers, err := r.client.HGetAll(ctx, answerKey).Result()
	if err == nil && len(answers) > 0 {
		pointsMap, _ := r.client.HGetAll(ctx, pointKey).Result()
		return buildTestFromCache(testID, answers, pointsMap), nil
	}

	result, err, _ := r.sf.Do(testID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		answers, err := r.client.HGetAll(ctx, answerKey).Result()
		if err == nil && len(answers) > 0 {
			pointsMap, _ := r.client.HGetAll(ctx, pointKey).Result()
			return buildTestFromCache(testID, answers, pointsMap), nil
		}

		test, err := r.loader.LoadTest(ctx, testID)
		if err != nil {
			return domain.Test{}, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for _, q := range test.Questions {
			points := q.Points
			if points == 0 {
				points = 1
			}
			pipe.HSet(ctx, answerKey, q.ID, firstCorrectOption(q))
			pipe.HSet(ctx, pointKey, q.ID, points)
		}
		if ttl > 0 {
			pipe.Expire(ctx, answerKey, ttl)
			pipe.Expire(ctx, pointKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return test, nil
	})
	if err != nil {
		return domain.Test{}, err
	}
	return result.(domain.Test), nil
}

func (r *ContentRepository) answersKey(testID string) string {
	return "test:" + testID + ":answers"
}

func (r *ContentRepository) pointsKey(testID string) string {
	return "test:" + testID + ":points"
}

func buildTestFromCache(testID string, answers map[string]string, pointsMap map[string]string) domain.Test {
	questions := make([]domain.Question, 0, len(answers))
	for questionID, optionID := range answers {
		points := 1
		if pStr, ok := pointsMap[questionID]; ok {
			if p, err := strconv.Atoi(pStr); err == nil && p > 0 {
				points = p
			}
		}
		questions = append(questions, domain.Question{
			ID:     questionID,
			Prompt: "", // prompt not cached in this lightweight form
			Options: []domain.Option{
				{ID: optionID, Correct: true},
			},
			Points: points,
		})
	}
	return domain.Test{ID: testID, Questions: questions}
}

func firstCorrectOption(q domain.Question) string {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.ID
		}
	}
	// Fallback to first option ID if no correct flag is set.
	if len(q.Options) > 0 {
		return q.Options[0].ID
	}
	return ""
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
