package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ---- upstream ----

type call struct {
	method   string
	endpoint string
	params   url.Values
	body     any
}

type fakeUpstream struct {
	mu    sync.Mutex
	resp  map[string]string // endpoint -> raw JSON
	errs  map[string]error
	calls []call
}

func (f *fakeUpstream) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "GET", endpoint: endpoint, params: params})
	if err := f.errs[endpoint]; err != nil {
		return nil, err
	}
	raw, ok := f.resp[endpoint]
	if !ok {
		return nil, fmt.Errorf("%w: GET %s", domain.ErrNotFound, endpoint)
	}
	return json.RawMessage(raw), nil
}

func (f *fakeUpstream) Post(ctx context.Context, endpoint string, body any, params url.Values) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method: "POST", endpoint: endpoint, params: params, body: body})
	if err := f.errs[endpoint]; err != nil {
		return nil, err
	}
	b, _ := json.Marshal(body)
	return b, nil
}

func (f *fakeUpstream) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// ---- sentiment ----

type fakeAnalyzer struct {
	labels map[string]string
	delay  time.Duration
	block  bool // wait for ctx instead of answering

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) domain.Sentiment {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if f.block {
		<-ctx.Done()
		return domain.NeutralBecause(domain.ProvenanceUnavailable)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if text == "" {
		return domain.NeutralBecause(domain.ProvenanceEmptyText)
	}
	if l, ok := f.labels[text]; ok {
		return domain.Sentiment{Label: l, Provenance: domain.ProvenanceAnalyzed}
	}
	return domain.NeutralBecause(domain.ProvenanceUnrecognized)
}

// ---- catalog ----

type fakeCatalog struct {
	mu        sync.Mutex
	makes     []domain.CarMake
	models    []domain.CarModel
	seedCalls int
	seedErr   error
	delay     time.Duration
}

func (f *fakeCatalog) InsertMake(ctx context.Context, m domain.CarMake) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.makes {
		if e.Name == m.Name {
			return 0, domain.ErrConflict
		}
	}
	m.ID = int64(len(f.makes) + 1)
	f.makes = append(f.makes, m)
	return m.ID, nil
}

func (f *fakeCatalog) InsertModel(ctx context.Context, m domain.CarModel) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = int64(len(f.models) + 1)
	f.models = append(f.models, m)
	return m.ID, nil
}

func (f *fakeCatalog) SeedIfAbsent(ctx context.Context, seed []domain.SeedMake) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	f.seedCalls++
	err := f.seedErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	for _, sm := range seed {
		id, err := f.InsertMake(ctx, sm.Make)
		if err != nil {
			continue
		}
		for _, m := range sm.Models {
			m.MakeID = id
			_, _ = f.InsertModel(ctx, m)
		}
	}
	return nil
}

func (f *fakeCatalog) CountMakes(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.makes)), nil
}

func (f *fakeCatalog) MakeByName(ctx context.Context, name string) (domain.CarMake, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.makes {
		if m.Name == name {
			return m, nil
		}
	}
	return domain.CarMake{}, domain.ErrNotFound
}

func (f *fakeCatalog) ListCars(ctx context.Context) ([]domain.CarListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := map[int64]string{}
	for _, m := range f.makes {
		names[m.ID] = m.Name
	}
	out := make([]domain.CarListing, 0, len(f.models))
	for _, m := range f.models {
		out = append(out, domain.CarListing{CarModel: m.Name, CarMake: names[m.MakeID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CarMake != out[j].CarMake {
			return out[i].CarMake < out[j].CarMake
		}
		return out[i].CarModel < out[j].CarModel
	})
	return out, nil
}

func (f *fakeCatalog) seeds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seedCalls
}

type fakeLocker struct {
	mu   sync.Mutex
	keys []string
}

func (l *fakeLocker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return fn(ctx)
}

// ---- auth ----

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (f *fakeUsers) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users == nil {
		f.users = map[string]domain.User{}
	}
	if _, ok := f.users[u.Username]; ok {
		return 0, domain.ErrConflict
	}
	u.ID = int64(len(f.users) + 1)
	f.users[u.Username] = u
	return u.ID, nil
}

func (f *fakeUsers) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	data map[string]domain.Session
	ttls map[string]time.Duration
}

func (f *fakeSessions) Create(ctx context.Context, s domain.Session, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		f.data = map[string]domain.Session{}
		f.ttls = map[string]time.Duration{}
	}
	f.data[s.Token] = s
	f.ttls[s.Token] = ttl
	return nil
}

func (f *fakeSessions) Get(ctx context.Context, token string) (domain.Session, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.data[token]
	return s, ok, nil
}

func (f *fakeSessions) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, token)
	return nil
}
