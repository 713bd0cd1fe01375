package clients

import (
	"coinbot/internal/services"
	"coinbot/internal/structures"
	"coinbot/internal/testutil"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helixServer(t *testing.T, live bool) (*httptest.Server, *atomic.Int32) {
	lookups := &atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		lookups.Add(1)
		assert.Equal(t, "cid", r.Header.Get("Client-ID"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if r.URL.Query().Get("login") != "streamer" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"42","login":"streamer"}]}`))
	})
	mux.HandleFunc("/channels/followers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("broadcaster_id"))
		assert.Equal(t, "1", r.URL.Query().Get("first"))
		_, _ = w.Write([]byte(`{"total":10,"data":[{"user_id":"7","user_login":"fan","user_name":"Fan"}]}`))
	})
	mux.HandleFunc("/streams", func(w http.ResponseWriter, r *http.Request) {
		if !live {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"viewer_count":123}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, lookups
}

func helixConfig(url, broadcaster string) *structures.Config {
	return &structures.Config{
		Bot:       structures.BotConfig{Channels: []string{"#Streamer"}},
		Followers: structures.FollowersConfig{ClientID: "cid", BroadcasterName: broadcaster, APIURL: url + "/"},
	}
}

func TestHelix_LatestFollowerAndViewers(t *testing.T) {
	srv, lookups := helixServer(t, true)
	cache := testutil.NewMockCache()
	c := NewHelixClient(helixConfig(srv.URL, ""), &structures.Secrets{HelixToken: "tok"}, cache)
	require.True(t, c.Configured())

	f, err := c.LatestFollower(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &services.Follower{ID: "7", Name: "Fan"}, f)

	count, live, err := c.ViewerCount(context.Background())
	require.NoError(t, err)
	assert.True(t, live)
	assert.Equal(t, int64(123), count)

	assert.Equal(t, int32(1), lookups.Load(), "broadcaster id is cached")
	_, ok := cache.Get("helix:user:streamer")
	assert.True(t, ok)
}

func TestHelix_Offline(t *testing.T) {
	srv, _ := helixServer(t, false)
	c := NewHelixClient(helixConfig(srv.URL, "streamer"), &structures.Secrets{HelixToken: "tok"}, testutil.NewMockCache())

	_, live, err := c.ViewerCount(context.Background())
	require.NoError(t, err)
	assert.False(t, live)
}

func TestHelix_UnknownBroadcaster(t *testing.T) {
	srv, _ := helixServer(t, true)
	c := NewHelixClient(helixConfig(srv.URL, "nobody"), &structures.Secrets{HelixToken: "tok"}, testutil.NewMockCache())

	_, err := c.LatestFollower(context.Background())
	assert.ErrorIs(t, err, ErrUnknownBroadcaster)
}

func TestHelix_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := NewHelixClient(helixConfig(srv.URL, "streamer"), &structures.Secrets{HelixToken: "tok"}, testutil.NewMockCache())

	_, err := c.LatestFollower(context.Background())
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusUnauthorized, status.Code)
}

func TestHelix_NotConfigured(t *testing.T) {
	c := NewHelixClient(helixConfig("http://localhost", ""), &structures.Secrets{}, testutil.NewMockCache())
	assert.False(t, c.Configured())
}
