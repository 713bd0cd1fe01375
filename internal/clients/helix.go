package clients

import (
	"coinbot/internal/providers"
	"coinbot/internal/services"
	"coinbot/internal/structures"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrUnknownBroadcaster = errors.New("helix: broadcaster not found")

// HelixClient reads follower and stream data from the Twitch Helix API.
// The broadcaster id is looked up once per cache TTL.
type HelixClient struct {
	baseURL     string
	clientID    string
	token       string
	broadcaster string
	http        *http.Client
	cache       providers.CacheProviderInterface
}

func NewHelixClient(conf *structures.Config, secrets *structures.Secrets, cache providers.CacheProviderInterface) *HelixClient {
	name := conf.Followers.BroadcasterName
	if name == "" && len(conf.Bot.Channels) > 0 {
		name = conf.Bot.Channels[0]
	}
	return &HelixClient{
		baseURL:     strings.TrimRight(conf.Followers.APIURL, "/"),
		clientID:    conf.Followers.ClientID,
		token:       secrets.HelixToken,
		broadcaster: strings.ToLower(strings.TrimPrefix(name, "#")),
		http:        newHTTPClient(),
		cache:       cache,
	}
}

// Configured reports whether the credentials needed for polling are present.
func (c *HelixClient) Configured() bool {
	return c.clientID != "" && c.token != "" && c.broadcaster != ""
}

func (c *HelixClient) header() http.Header {
	h := http.Header{}
	h.Set("Client-ID", c.clientID)
	h.Set("Authorization", "Bearer "+c.token)
	return h
}

type helixUsers struct {
	Data []struct {
		ID    string `json:"id"`
		Login string `json:"login"`
	} `json:"data"`
}

type helixFollowers struct {
	Data []struct {
		UserID    string `json:"user_id"`
		UserLogin string `json:"user_login"`
		UserName  string `json:"user_name"`
	} `json:"data"`
}

type helixStreams struct {
	Data []struct {
		ViewerCount int64 `json:"viewer_count"`
	} `json:"data"`
}

func (c *HelixClient) broadcasterID(ctx context.Context) (string, error) {
	key := "helix:user:" + c.broadcaster
	if id, ok := c.cache.Get(key); ok {
		return string(id), nil
	}

	var users helixUsers
	u := fmt.Sprintf("%s/users?login=%s", c.baseURL, url.QueryEscape(c.broadcaster))
	if _, err := getJSON(ctx, c.http, u, c.header(), &users); err != nil {
		return "", err
	}
	if len(users.Data) == 0 || users.Data[0].ID == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownBroadcaster, c.broadcaster)
	}
	id := users.Data[0].ID
	c.cache.Set(key, []byte(id))
	return id, nil
}

func (c *HelixClient) LatestFollower(ctx context.Context) (*services.Follower, error) {
	id, err := c.broadcasterID(ctx)
	if err != nil {
		return nil, err
	}
	var followers helixFollowers
	u := fmt.Sprintf("%s/channels/followers?broadcaster_id=%s&first=1", c.baseURL, url.QueryEscape(id))
	if _, err := getJSON(ctx, c.http, u, c.header(), &followers); err != nil {
		return nil, err
	}
	if len(followers.Data) == 0 {
		return nil, nil
	}
	f := followers.Data[0]
	name := f.UserName
	if name == "" {
		name = f.UserLogin
	}
	return &services.Follower{ID: f.UserID, Name: name}, nil
}

func (c *HelixClient) ViewerCount(ctx context.Context) (int64, bool, error) {
	id, err := c.broadcasterID(ctx)
	if err != nil {
		return 0, false, err
	}
	var streams helixStreams
	u := fmt.Sprintf("%s/streams?user_id=%s", c.baseURL, url.QueryEscape(id))
	if _, err := getJSON(ctx, c.http, u, c.header(), &streams); err != nil {
		return 0, false, err
	}
	if len(streams.Data) == 0 {
		return 0, false, nil
	}
	return streams.Data[0].ViewerCount, true, nil
}
