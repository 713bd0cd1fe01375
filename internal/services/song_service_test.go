package services

import (
	"coinbot/internal/models"
	"coinbot/internal/structures"
	"coinbot/internal/testutil"
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMusicClient struct {
	exchangeErr  error
	refreshErr   error
	refreshed    *models.MusicToken
	track        *models.Track
	exchanges    []string
	refreshCalls int
	playingCalls int
	lastAccess   string
}

func (f *fakeMusicClient) AuthorizationURL(state string) (string, string) {
	return "https://accounts.example.com/authorize?state=" + url.QueryEscape(state), "verifier-" + state[len(state)-4:]
}

func (f *fakeMusicClient) Exchange(_ context.Context, code, verifier string) (*models.MusicToken, error) {
	f.exchanges = append(f.exchanges, code+"|"+verifier)
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &models.MusicToken{AccessToken: "access-1", RefreshToken: "refresh-1", ExpiresAt: epoch.Add(time.Hour)}, nil
}

func (f *fakeMusicClient) Refresh(_ context.Context, _ string) (*models.MusicToken, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	tok := *f.refreshed
	return &tok, nil
}

func (f *fakeMusicClient) CurrentlyPlaying(_ context.Context, access string) (*models.Track, error) {
	f.playingCalls++
	f.lastAccess = access
	return f.track, nil
}

func newSong(h *harness, client *fakeMusicClient) *SongService {
	secrets := &structures.Secrets{LinkSecret: "test-secret"}
	return NewSongService(h.store, h.conf, secrets, h.clock, client, testutil.NewMockCache(), h.logger)
}

func connect(t *testing.T, svc *SongService, user string) string {
	t.Helper()
	link, err := svc.ConnectLink(user)
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("ticket")
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestConnectLink_PointsAtPublicURL(t *testing.T) {
	h := newHarness()
	svc := newSong(h, &fakeMusicClient{})

	link, err := svc.ConnectLink("@Alice")
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "bot.example.com", u.Host)
	assert.Equal(t, "/spotify/connect", u.Path)
	assert.Equal(t, "alice", u.Query().Get("user"))
	assert.NotEmpty(t, u.Query().Get("ticket"))
}

func TestAuthorization_FullFlow(t *testing.T) {
	h := newHarness()
	client := &fakeMusicClient{}
	svc := newSong(h, client)

	ticket := connect(t, svc, "alice")
	authURL, err := svc.BeginAuthorization("alice", ticket)
	require.NoError(t, err)

	user, err := svc.CompleteAuthorization(context.Background(), "code-1", stateFrom(t, authURL))
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	require.Len(t, client.exchanges, 1)

	h.store.Update(func(st *models.State) {
		require.Contains(t, st.MusicTokens, "alice")
		assert.Equal(t, "access-1", st.MusicTokens["alice"].AccessToken)
		assert.NotContains(t, st.MusicVerifiers, "alice")
	})
}

func TestBeginAuthorization_RejectsForeignOrExpiredTicket(t *testing.T) {
	h := newHarness()
	svc := newSong(h, &fakeMusicClient{})

	ticket := connect(t, svc, "alice")
	_, err := svc.BeginAuthorization("mallory", ticket)
	assert.ErrorIs(t, err, ErrInvalidTicket)

	_, err = svc.BeginAuthorization("alice", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidTicket)

	h.clock.Add(16 * time.Minute)
	_, err = svc.BeginAuthorization("alice", ticket)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestCompleteAuthorization_RejectsTicketAsState(t *testing.T) {
	h := newHarness()
	svc := newSong(h, &fakeMusicClient{})

	ticket := connect(t, svc, "alice")
	_, err := svc.CompleteAuthorization(context.Background(), "code", ticket)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestCompleteAuthorization_NeedsPendingVerifier(t *testing.T) {
	h := newHarness()
	svc := newSong(h, &fakeMusicClient{})

	state, err := svc.sign("alice", audienceState, oauthStateTTL)
	require.NoError(t, err)
	_, err = svc.CompleteAuthorization(context.Background(), "code", state)
	assert.ErrorIs(t, err, ErrNoPendingAuthorization)
}

func TestCompleteAuthorization_ExchangeFailureKeepsVerifier(t *testing.T) {
	h := newHarness()
	client := &fakeMusicClient{exchangeErr: errors.New("bad code")}
	svc := newSong(h, client)

	authURL, err := svc.BeginAuthorization("alice", connect(t, svc, "alice"))
	require.NoError(t, err)
	_, err = svc.CompleteAuthorization(context.Background(), "code", stateFrom(t, authURL))
	require.Error(t, err)

	h.store.Update(func(st *models.State) {
		assert.Contains(t, st.MusicVerifiers, "alice")
		assert.NotContains(t, st.MusicTokens, "alice")
	})
}

func TestNowPlaying_NotConnected(t *testing.T) {
	h := newHarness()
	svc := newSong(h, &fakeMusicClient{})

	_, err := svc.NowPlaying(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestNowPlaying_UsesValidTokenAndCaches(t *testing.T) {
	h := newHarness()
	client := &fakeMusicClient{track: &models.Track{Name: "Song", Artists: "A, B", IsPlaying: true}}
	svc := newSong(h, client)
	h.store.Update(func(st *models.State) {
		st.MusicTokens["alice"] = &models.MusicToken{AccessToken: "live", RefreshToken: "r", ExpiresAt: epoch.Add(time.Hour)}
	})

	track, err := svc.NowPlaying(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Song", track.Name)
	assert.Equal(t, "live", client.lastAccess)

	track, err = svc.NowPlaying(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, "A, B", track.Artists)
	assert.Equal(t, 1, client.playingCalls)
	assert.Zero(t, client.refreshCalls)
}

func TestNowPlaying_RefreshesExpiredToken(t *testing.T) {
	h := newHarness()
	client := &fakeMusicClient{
		refreshed: &models.MusicToken{AccessToken: "fresh", ExpiresAt: epoch.Add(time.Hour)},
	}
	svc := newSong(h, client)
	h.store.Update(func(st *models.State) {
		st.MusicTokens["alice"] = &models.MusicToken{AccessToken: "stale", RefreshToken: "keep-me", ExpiresAt: epoch}
	})

	track, err := svc.NowPlaying(context.Background(), "alice")
	require.NoError(t, err)
	assert.Nil(t, track)
	assert.Equal(t, "fresh", client.lastAccess)

	h.store.Update(func(st *models.State) {
		assert.Equal(t, "fresh", st.MusicTokens["alice"].AccessToken)
		assert.Equal(t, "keep-me", st.MusicTokens["alice"].RefreshToken)
	})
}

func TestNowPlaying_RefreshFailure(t *testing.T) {
	h := newHarness()
	client := &fakeMusicClient{refreshErr: errors.New("revoked")}
	svc := newSong(h, client)
	h.store.Update(func(st *models.State) {
		st.MusicTokens["alice"] = &models.MusicToken{AccessToken: "stale", RefreshToken: "r", ExpiresAt: epoch.Add(-time.Minute)}
	})

	_, err := svc.NowPlaying(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Equal(t, 1, h.logger.Count("warn", "revoked"))
}
