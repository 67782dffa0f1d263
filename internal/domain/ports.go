package domain

import (
	"context"
	"encoding/json"
	"net/url"
	"time"
)

type CatalogRepository interface {
	// Write paths
	InsertMake(ctx context.Context, m CarMake) (int64, error)
	InsertModel(ctx context.Context, m CarModel) (int64, error)
	// SeedIfAbsent inserts makes and models, skipping rows whose unique key already exists.
	SeedIfAbsent(ctx context.Context, seed []SeedMake) error

	// Read paths
	CountMakes(ctx context.Context) (int64, error)
	MakeByName(ctx context.Context, name string) (CarMake, error)
	ListCars(ctx context.Context) ([]CarListing, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u User) (int64, error)
	UserByUsername(ctx context.Context, username string) (User, error)
}

// UpstreamClient talks to the dealer/review document service.
type UpstreamClient interface {
	Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error)
	Post(ctx context.Context, endpoint string, body any, params url.Values) (json.RawMessage, error)
}

// SentimentAnalyzer never fails; failures come back as a neutral Sentiment
// with a non-analyzed Provenance.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) Sentiment
}

type SessionStore interface {
	Create(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (Session, bool, error)
	Delete(ctx context.Context, token string) error
}

// Locker guards a critical section across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}
