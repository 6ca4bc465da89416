package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu       sync.Mutex
	sessions map[string]*identity.Session
	err      error
	calls    int
}

func (f *fakeProvider) GetSession(ctx context.Context, token string) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions[token], nil
}

func (f *fakeProvider) GetRole(ctx context.Context, userID uuid.UUID) (identity.Role, error) {
	return identity.Role{}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestResolver_EmptyToken(t *testing.T) {
	provider := &fakeProvider{}
	resolver := NewResolver(NewCache(time.Minute, time.Minute), provider)

	sess, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, 0, provider.callCount())
}

func TestResolver_CacheHitSkipsProvider(t *testing.T) {
	provider := &fakeProvider{
		sessions: map[string]*identity.Session{
			"tok": {UserID: uuid.New(), Email: "customer@example.com"},
		},
	}
	resolver := NewResolver(NewCache(time.Minute, time.Minute), provider)

	first, err := resolver.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := resolver.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, 1, provider.callCount())
}

func TestResolver_ExpiredEntryRefreshes(t *testing.T) {
	provider := &fakeProvider{
		sessions: map[string]*identity.Session{
			"tok": {UserID: uuid.New()},
		},
	}
	cache := NewCache(time.Minute, time.Minute)
	resolver := NewResolver(cache, provider)

	_, err := resolver.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount())

	// Age the entry past the TTL; the next resolve must go back to the provider
	cache.mu.Lock()
	e := cache.entries["tok"]
	e.createdAt = time.Now().Add(-2 * time.Minute)
	cache.entries["tok"] = e
	cache.mu.Unlock()

	sess, err := resolver.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, 2, provider.callCount())

	// Entry was refreshed: the resolve after that hits the cache again
	_, err = resolver.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.callCount())
}

func TestResolver_UnknownTokenNotCached(t *testing.T) {
	provider := &fakeProvider{sessions: map[string]*identity.Session{}}
	cache := NewCache(time.Minute, time.Minute)
	resolver := NewResolver(cache, provider)

	sess, err := resolver.Resolve(context.Background(), "bogus")
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, 0, cache.Len())

	// No negative caching: every attempt re-asks the provider
	_, err = resolver.Resolve(context.Background(), "bogus")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.callCount())
}

func TestResolver_ProviderErrorPropagates(t *testing.T) {
	provider := &fakeProvider{err: errors.New("identity provider down")}
	cache := NewCache(time.Minute, time.Minute)
	resolver := NewResolver(cache, provider)

	sess, err := resolver.Resolve(context.Background(), "tok")
	assert.Error(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, 0, cache.Len())
}
