package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"petlovers/internal/model"
)

const (
	// PostListKeyPrefix is the key prefix for cached post listings
	PostListKeyPrefix = "petposts:list:"

	// PostListTTL keeps listings fresh without hammering Postgres on every
	// gallery load. Mutations invalidate eagerly; the TTL is the backstop.
	PostListTTL = 30 * time.Second
)

// PostListCache caches the fully populated public post listing per pet-type
// filter. Using an interface enables testing with mocks and running without
// Redis at all (a nil cache is skipped by the service layer).
type PostListCache interface {
	// Get returns the cached listing for the filter, or found=false on miss.
	Get(ctx context.Context, petType *model.PetType) (posts []model.Post, found bool, err error)

	// Set stores the listing for the filter.
	Set(ctx context.Context, petType *model.PetType, posts []model.Post) error

	// Invalidate drops every cached listing. Called after any post mutation,
	// since likes and comments are embedded in the listing payload.
	Invalidate(ctx context.Context) error
}

// RedisPostListCache implements PostListCache on plain Redis strings.
type RedisPostListCache struct {
	client *redis.Client
}

// NewPostListCache creates a PostListCache backed by Redis.
func NewPostListCache(client *redis.Client) PostListCache {
	return &RedisPostListCache{client: client}
}

func listKey(petType *model.PetType) string {
	if petType == nil {
		return PostListKeyPrefix + "all"
	}
	return PostListKeyPrefix + string(*petType)
}

// listKeys returns every key the cache can hold: one per pet type plus "all".
func listKeys() []string {
	types := []model.PetType{model.PetTypeDog, model.PetTypeCat, model.PetTypeBird, model.PetTypeOther}
	keys := make([]string, 0, len(types)+1)
	keys = append(keys, PostListKeyPrefix+"all")
	for _, t := range types {
		keys = append(keys, PostListKeyPrefix+string(t))
	}
	return keys
}

func (c *RedisPostListCache) Get(ctx context.Context, petType *model.PetType) ([]model.Post, bool, error) {
	key := listKey(petType)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get post list: %w", err)
	}

	var posts []model.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		// Stale or corrupt payload; treat as a miss and let Set overwrite it.
		log.Printf("[PostListCache] Unmarshal failed: key=%s err=%v", key, err)
		return nil, false, nil
	}

	return posts, true, nil
}

func (c *RedisPostListCache) Set(ctx context.Context, petType *model.PetType, posts []model.Post) error {
	key := listKey(petType)

	raw, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("marshal post list: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, PostListTTL).Err(); err != nil {
		return fmt.Errorf("set post list: %w", err)
	}

	log.Printf("[PostListCache] Set: key=%s posts=%d", key, len(posts))
	return nil
}

func (c *RedisPostListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, listKeys()...).Err(); err != nil {
		return fmt.Errorf("invalidate post lists: %w", err)
	}
	return nil
}
