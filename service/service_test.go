package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodekulture/tokenlink/login"
	"github.com/kodekulture/tokenlink/repository"
	"github.com/kodekulture/tokenlink/repository/temp"
)

var errStore = errors.New("store unavailable")

// flakyStore fails the operations whose flag is set and delegates the rest.
type flakyStore struct {
	*temp.Store
	failProfiles bool
	failInsert   bool
	failGet      bool
	failConsume  bool
}

func (f *flakyStore) GetByUUID(ctx context.Context, uid string) (*login.Profile, error) {
	if f.failProfiles {
		return nil, errStore
	}
	return f.Store.GetByUUID(ctx, uid)
}

func (f *flakyStore) Touch(ctx context.Context, uid, name string, ts time.Time) (bool, error) {
	if f.failProfiles {
		return false, errStore
	}
	return f.Store.Touch(ctx, uid, name, ts)
}

func (f *flakyStore) Insert(ctx context.Context, t login.Token) error {
	if f.failInsert {
		return errStore
	}
	return f.Store.Insert(ctx, t)
}

func (f *flakyStore) Get(ctx context.Context, token string) (*login.Token, error) {
	if f.failGet {
		return nil, errStore
	}
	return f.Store.Get(ctx, token)
}

func (f *flakyStore) Consume(ctx context.Context, token string, now time.Time) (login.Identity, bool, error) {
	if f.failConsume {
		return login.Identity{}, false, errStore
	}
	return f.Store.Consume(ctx, token, now)
}

var fixedNow = time.Unix(1_700_000_000, 0)

func newTestService(store *temp.Store, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(store, store, opts...)
}

func issueReq(token string, expiresAt int64) login.IssueRequest {
	return login.IssueRequest{PlayerUUID: "u-1", PlayerName: "Alice", Token: token, ExpiresAt: expiresAt}
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	store := temp.New()
	s := newTestService(store)

	require.NoError(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)))

	tok, err := store.Get(ctx, "T1")
	require.NoError(t, err)
	assert.False(t, tok.Used)
	assert.Equal(t, fixedNow.Unix()+300, tok.ExpiresAt)
	assert.Equal(t, 1, store.Tokens())

	p, err := store.GetByUUID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.PlayerName)
	assert.Equal(t, fixedNow, p.LastLogin)
}

func TestIssueTokenRenamesExistingProfile(t *testing.T) {
	ctx := context.Background()
	store := temp.New()
	s := newTestService(store)

	require.NoError(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)))
	renamed := issueReq("T2", fixedNow.Unix()+300)
	renamed.PlayerName = "Alicia"
	require.NoError(t, s.IssueToken(ctx, renamed))

	assert.Equal(t, 1, store.Profiles(), "profile must not be duplicated")
	p, err := store.GetByUUID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", p.PlayerName)
	assert.Equal(t, 2, store.Tokens())
}

func TestIssueTokenMissingFields(t *testing.T) {
	ctx := context.Background()
	store := temp.New()
	s := newTestService(store)

	tests := []struct {
		name string
		req  login.IssueRequest
	}{
		{"no token", login.IssueRequest{PlayerUUID: "u-1", PlayerName: "Alice", ExpiresAt: 1}},
		{"no uuid", login.IssueRequest{PlayerName: "Alice", Token: "T1", ExpiresAt: 1}},
		{"no name", login.IssueRequest{PlayerUUID: "u-1", Token: "T1", ExpiresAt: 1}},
		{"no expiry", login.IssueRequest{PlayerUUID: "u-1", PlayerName: "Alice", Token: "T1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.IssueToken(ctx, tt.req), login.ErrMissingField)
		})
	}
	assert.Zero(t, store.Tokens(), "no writes on invalid input")
	assert.Zero(t, store.Profiles(), "no writes on invalid input")
}

func TestIssueTokenDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(temp.New())
	require.NoError(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)))
	assert.ErrorIs(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)), login.ErrConflict)
}

func TestIssueTokenProfileFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: temp.New(), failProfiles: true}
	s := New(store, store)

	require.NoError(t, s.IssueToken(ctx, issueReq("T1", time.Now().Unix()+300)))
	_, err := store.Store.Get(ctx, "T1")
	assert.NoError(t, err, "token stored despite profile failure")
}

func TestIssueTokenInsertFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: temp.New(), failInsert: true}
	s := New(store, store)

	err := s.IssueToken(ctx, issueReq("T1", time.Now().Unix()+300))
	require.Error(t, err)
	assert.ErrorIs(t, err, errStore)
}

func TestIssueTokenCooldown(t *testing.T) {
	ctx := context.Background()
	s := newTestService(temp.New(), WithCooldown(temp.NewCooldown(), time.Minute))

	require.NoError(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)))
	assert.ErrorIs(t, s.IssueToken(ctx, issueReq("T2", fixedNow.Unix()+300)), login.ErrOnCooldown)
}

func TestIssueTokenFailureKeepsNoCooldown(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: temp.New(), failInsert: true}
	s := New(store, store, WithClock(func() time.Time { return fixedNow }), WithCooldown(temp.NewCooldown(), time.Minute))

	require.ErrorIs(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)), errStore)

	store.failInsert = false
	require.NoError(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)), "retry after the store recovered")
	assert.ErrorIs(t, s.IssueToken(ctx, issueReq("T2", fixedNow.Unix()+300)), login.ErrOnCooldown)
}

func TestIssueTokenConflictKeepsNoCooldown(t *testing.T) {
	ctx := context.Background()
	store := temp.New()
	require.NoError(t, store.Insert(ctx, login.Token{Token: "T1", PlayerUUID: "u-2", PlayerName: "Bob", ExpiresAt: fixedNow.Unix() + 300}))
	s := newTestService(store, WithCooldown(temp.NewCooldown(), time.Minute))

	require.ErrorIs(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)), login.ErrConflict)
	assert.NoError(t, s.IssueToken(ctx, issueReq("T2", fixedNow.Unix()+300)))
}

func TestRedeemToken(t *testing.T) {
	ctx := context.Background()
	store := temp.New()
	s := newTestService(store)
	require.NoError(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)))

	id, err := s.RedeemToken(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, login.Identity{PlayerUUID: "u-1", PlayerName: "Alice"}, id)

	_, err = s.RedeemToken(ctx, "T1")
	assert.ErrorIs(t, err, login.ErrExpiredOrUsed)

	tok, err := store.Get(ctx, "T1")
	require.NoError(t, err)
	assert.True(t, tok.Used)
}

func TestRedeemTokenRejections(t *testing.T) {
	ctx := context.Background()
	store := temp.New()
	s := newTestService(store)
	require.NoError(t, s.IssueToken(ctx, issueReq("T2", fixedNow.Unix()-1)))

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"missing token", "", login.ErrMissingToken},
		{"unknown token", "nope", login.ErrInvalidToken},
		{"expired token", "T2", login.ErrExpiredOrUsed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RedeemToken(ctx, tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	tok, err := store.Get(ctx, "T2")
	require.NoError(t, err)
	assert.False(t, tok.Used, "rejected redemption must not mark the token")
}

func TestRedeemTokenStoreFailures(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"get", "consume"} {
		t.Run(name, func(t *testing.T) {
			store := &flakyStore{Store: temp.New()}
			s := newTestService(store.Store)
			require.NoError(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)))

			store.failGet = name == "get"
			store.failConsume = name == "consume"
			s = New(store, store, WithClock(func() time.Time { return fixedNow }))

			_, err := s.RedeemToken(ctx, "T1")
			require.Error(t, err)
			assert.ErrorIs(t, err, errStore)
		})
	}
}

func TestRedeemTokenProfileFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: temp.New()}
	s := New(store, store, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)))

	store.failProfiles = true
	id, err := s.RedeemToken(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.PlayerUUID)
}

func TestRedeemTokenWithoutProfile(t *testing.T) {
	ctx := context.Background()
	store := temp.New()
	s := newTestService(store)
	require.NoError(t, store.Insert(ctx, login.Token{Token: "T1", PlayerUUID: "u-9", PlayerName: "Ghost", ExpiresAt: fixedNow.Unix() + 300}))

	id, err := s.RedeemToken(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, login.Identity{PlayerUUID: "u-9", PlayerName: "Ghost"}, id)
	assert.Zero(t, store.Profiles(), "redemption does not create profiles")
}

func TestRedeemTokenRefreshesProfile(t *testing.T) {
	ctx := context.Background()
	store := temp.New()
	now := fixedNow
	s := New(store, store, WithClock(func() time.Time { return now }))
	require.NoError(t, s.IssueToken(ctx, issueReq("T1", fixedNow.Unix()+300)))

	now = fixedNow.Add(time.Minute)
	_, err := s.RedeemToken(ctx, "T1")
	require.NoError(t, err)

	p, err := store.GetByUUID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, now, p.LastLogin)
}

func TestRedeemTokenConcurrent(t *testing.T) {
	ctx := context.Background()
	store := temp.New()
	s := New(store, store)
	token := gofakeit.UUID()
	require.NoError(t, s.IssueToken(ctx, login.IssueRequest{
		PlayerUUID: gofakeit.UUID(),
		PlayerName: gofakeit.Username(),
		Token:      token,
		ExpiresAt:  time.Now().Add(5 * time.Minute).Unix(),
	}))

	const callers = 32
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		losses int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.RedeemToken(ctx, token)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, login.ErrExpiredOrUsed):
				losses++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, losses)
	tok, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.True(t, tok.Used)
}

var _ repository.Profile = new(flakyStore)
