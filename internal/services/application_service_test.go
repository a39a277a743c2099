package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poofware/application-service/internal/models"
	"github.com/poofware/application-service/internal/repositories"
	"github.com/poofware/application-service/internal/utils"
	"github.com/poofware/application-service/internal/validation"
)

// -----------------------------------------------------------------------------
// Fakes
// -----------------------------------------------------------------------------

// countingStore wraps the memory store, counts calls and can be told to fail.
type countingStore struct {
	*repositories.MemoryDocumentStore
	mu    sync.Mutex
	calls int
	fail  error
}

func (s *countingStore) hit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.fail
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.hit(); err != nil {
		return nil, err
	}
	return s.MemoryDocumentStore.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.hit(); err != nil {
		return err
	}
	return s.MemoryDocumentStore.Set(ctx, key, value)
}

func (s *countingStore) Push(ctx context.Context, value []byte) (string, error) {
	if err := s.hit(); err != nil {
		return "", err
	}
	return s.MemoryDocumentStore.Push(ctx, value)
}

func (s *countingStore) Ping(ctx context.Context) error {
	if err := s.hit(); err != nil {
		return err
	}
	return nil
}

type recordingMetrics struct {
	started  int
	quotes   []int
	failures []string
}

func (m *recordingMetrics) RecordApplicationStarted()        { m.started++ }
func (m *recordingMetrics) RecordQuote(q int)                { m.quotes = append(m.quotes, q) }
func (m *recordingMetrics) RecordValidationFailure(f string) { m.failures = append(m.failures, f) }

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

var fixedNow = time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc     ApplicationService
	store   *countingStore
	metrics *recordingMetrics
}

func newFixture(t *testing.T, quoter Quoter) *fixture {
	t.Helper()
	store := &countingStore{MemoryDocumentStore: repositories.NewMemoryDocumentStore()}
	metrics := &recordingMetrics{}
	repo := repositories.NewApplicationRepository(store, "https://apply.example.com/resume")
	rules := validation.NewRuleset(func() time.Time { return fixedNow })
	return &fixture{
		svc:     NewApplicationService(repo, store, rules, quoter, metrics),
		store:   store,
		metrics: metrics,
	}
}

func doc(t *testing.T, fields map[string]any) models.Document {
	t.Helper()
	out := models.Document{}
	for k, v := range fields {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		out[k] = b
	}
	return out
}

func validDoc(t *testing.T) models.Document {
	return doc(t, map[string]any{
		"firstName":   "Jane",
		"lastName":    "Doe",
		"dateOfBirth": "1990-04-02T00:00:00.000Z",
		"address": map[string]string{
			"street": "1 Main St", "city": "Austin", "state": "TX", "zipCode": "78701",
		},
		"vehicles": []map[string]any{
			{"vin": "1HGCM82633A004352", "make": "Honda", "model": "Accord", "year": 2015},
		},
	})
}

func idFromResumeURL(t *testing.T, resumeURL string) string {
	t.Helper()
	u, err := url.Parse(resumeURL)
	require.NoError(t, err)
	id := u.Query().Get(repositories.ResumeQueryParam)
	require.NotEmpty(t, id)
	return id
}

// -----------------------------------------------------------------------------
// Start / Fetch
// -----------------------------------------------------------------------------

func TestStartThenFetchRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FixedQuoter(1))

	initial := doc(t, map[string]any{"firstName": "Jane", "dateOfBirth": "2001-02-03"})
	resumeURL, err := f.svc.Start(ctx, initial)
	require.NoError(t, err)
	id := idFromResumeURL(t, resumeURL)

	got, err := f.svc.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, initial, got)
	require.Equal(t, 1, f.metrics.started)

	again, err := f.svc.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestStartAcceptsInvalidPayload(t *testing.T) {
	f := newFixture(t, FixedQuoter(1))
	_, err := f.svc.Start(context.Background(), doc(t, map[string]any{"firstName": "", "vehicles": []int{1, 2, 3, 4}}))
	require.NoError(t, err)
}

func TestStartStoreFailure(t *testing.T) {
	f := newFixture(t, FixedQuoter(1))
	f.store.fail = errors.New("connection refused")

	_, err := f.svc.Start(context.Background(), models.Document{})
	require.Error(t, err)
	require.NotErrorIs(t, err, utils.ErrNoIDProvided)
	require.Zero(t, f.metrics.started)
}

func TestMissingIDNeverTouchesStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FixedQuoter(1))

	_, err := f.svc.Fetch(ctx, "")
	require.ErrorIs(t, err, utils.ErrNoIDProvided)

	err = f.svc.Update(ctx, "", validDoc(t))
	require.ErrorIs(t, err, utils.ErrNoIDProvided)

	_, err = f.svc.ValidateAndQuote(ctx, "", validDoc(t))
	require.ErrorIs(t, err, utils.ErrNoIDProvided)

	require.Zero(t, f.store.calls)
}

func TestFetchMissing(t *testing.T) {
	f := newFixture(t, FixedQuoter(1))
	_, err := f.svc.Fetch(context.Background(), "nonexistent-id")
	require.ErrorIs(t, err, utils.ErrApplicationNotFound)
}

func TestFetchStoreFailure(t *testing.T) {
	f := newFixture(t, FixedQuoter(1))
	f.store.fail = errors.New("timeout")

	_, err := f.svc.Fetch(context.Background(), "abc")
	require.Error(t, err)
	require.NotErrorIs(t, err, utils.ErrApplicationNotFound)
}

// -----------------------------------------------------------------------------
// Update
// -----------------------------------------------------------------------------

func TestUpdateReplacesWholeRecordWithoutValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FixedQuoter(1))

	resumeURL, err := f.svc.Start(ctx, validDoc(t))
	require.NoError(t, err)
	id := idFromResumeURL(t, resumeURL)

	partial := doc(t, map[string]any{"firstName": "", "vehicles": []any{}})
	require.NoError(t, f.svc.Update(ctx, id, partial))

	got, err := f.svc.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, partial, got)
	require.NotContains(t, got, "lastName")
}

func TestUpdateNonexistent(t *testing.T) {
	f := newFixture(t, FixedQuoter(1))
	err := f.svc.Update(context.Background(), "nonexistent-id", validDoc(t))
	require.ErrorIs(t, err, utils.ErrApplicationNotFound)
	require.Zero(t, f.store.Len())
}

func TestUpdateStoreFailure(t *testing.T) {
	f := newFixture(t, FixedQuoter(1))
	f.store.fail = errors.New("broken pipe")

	err := f.svc.Update(context.Background(), "abc", validDoc(t))
	require.Error(t, err)
	require.NotErrorIs(t, err, utils.ErrApplicationNotFound)
}

// -----------------------------------------------------------------------------
// ValidateAndQuote
// -----------------------------------------------------------------------------

func TestValidateRejectsAndStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FixedQuoter(1))

	original := doc(t, map[string]any{"firstName": "Jane", "lastName": "Doe"})
	resumeURL, err := f.svc.Start(ctx, original)
	require.NoError(t, err)
	id := idFromResumeURL(t, resumeURL)

	_, err = f.svc.ValidateAndQuote(ctx, id, doc(t, map[string]any{"firstName": ""}))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, []string{"firstName"}, vErr.Fields)
	require.Equal(t, []string{"firstName"}, f.metrics.failures)
	require.Empty(t, f.metrics.quotes)

	got, err := f.svc.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, original, got)
}

func TestValidateCollectsEveryFailingField(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FixedQuoter(1))

	resumeURL, err := f.svc.Start(ctx, models.Document{})
	require.NoError(t, err)
	id := idFromResumeURL(t, resumeURL)

	bad := validDoc(t)
	bad["dateOfBirth"] = json.RawMessage(`"2012-01-01"`)
	bad["address"] = json.RawMessage(`{"street":"1 Main","city":"Austin","state":"TX","zipCode":"ABCDE"}`)
	bad["vehicles"] = json.RawMessage(`[]`)
	bad["nickname"] = json.RawMessage(`""`)

	_, err = f.svc.ValidateAndQuote(ctx, id, bad)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, []string{"address", "dateOfBirth", "vehicles"}, vErr.Fields)
}

func TestValidateAcceptsAndPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FixedQuoter(421))

	resumeURL, err := f.svc.Start(ctx, doc(t, map[string]any{"firstName": "Jane"}))
	require.NoError(t, err)
	id := idFromResumeURL(t, resumeURL)

	submitted := validDoc(t)
	quote, err := f.svc.ValidateAndQuote(ctx, id, submitted)
	require.NoError(t, err)
	require.Equal(t, 421, quote)
	require.Equal(t, []int{421}, f.metrics.quotes)

	got, err := f.svc.Fetch(ctx, id)
	require.NoError(t, err)
	require.Equal(t, submitted, got)

	// Validated is not a lock.
	require.NoError(t, f.svc.Update(ctx, id, doc(t, map[string]any{"firstName": "Janet"})))
}

func TestValidateReadsOnceAndWritesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FixedQuoter(99))

	resumeURL, err := f.svc.Start(ctx, models.Document{})
	require.NoError(t, err)
	id := idFromResumeURL(t, resumeURL)
	f.store.calls = 0

	_, err = f.svc.ValidateAndQuote(ctx, id, validDoc(t))
	require.NoError(t, err)
	require.Equal(t, 2, f.store.calls)

	// A rejected submission never reaches the write.
	f.store.calls = 0
	_, err = f.svc.ValidateAndQuote(ctx, id, doc(t, map[string]any{"firstName": ""}))
	require.Error(t, err)
	require.Equal(t, 1, f.store.calls)
}

func TestValidateOnlyChecksPresentFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, FixedQuoter(7))

	resumeURL, err := f.svc.Start(ctx, models.Document{})
	require.NoError(t, err)
	id := idFromResumeURL(t, resumeURL)

	quote, err := f.svc.ValidateAndQuote(ctx, id, doc(t, map[string]any{"firstName": "Jane", "pet": ""}))
	require.NoError(t, err)
	require.Equal(t, 7, quote)
}

func TestValidateNonexistent(t *testing.T) {
	f := newFixture(t, FixedQuoter(1))
	_, err := f.svc.ValidateAndQuote(context.Background(), "nonexistent-id", doc(t, map[string]any{"firstName": ""}))
	require.ErrorIs(t, err, utils.ErrApplicationNotFound)
	require.Zero(t, f.store.Len())
}

func TestValidateQuoterFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("pricing offline")
	f := newFixture(t, QuoterFunc(func(context.Context, models.Document) (int, error) { return 0, boom }))

	resumeURL, err := f.svc.Start(ctx, models.Document{})
	require.NoError(t, err)

	_, err = f.svc.ValidateAndQuote(ctx, idFromResumeURL(t, resumeURL), validDoc(t))
	require.ErrorIs(t, err, boom)
}

func TestRandomQuoterRange(t *testing.T) {
	q := NewRandomQuoter()
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		n, err := q.Quote(context.Background(), nil)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 0)
		require.LessOrEqual(t, n, MaxQuote)
		seen[n] = true
	}
	require.Greater(t, len(seen), 1)
}

func TestPing(t *testing.T) {
	f := newFixture(t, FixedQuoter(1))
	require.NoError(t, f.svc.Ping(context.Background()))

	f.store.fail = errors.New("down")
	require.Error(t, f.svc.Ping(context.Background()))
}
