package services

import (
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"coinbot/internal/structures"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

const (
	audienceConnect = "coinbot:connect"
	audienceState   = "coinbot:oauth-state"

	connectTicketTTL = 15 * time.Minute
	oauthStateTTL    = 10 * time.Minute
)

type SongServiceInterface interface {
	ConnectLink(user string) (string, error)
	BeginAuthorization(user, ticket string) (string, error)
	CompleteAuthorization(ctx context.Context, code, state string) (string, error)
	NowPlaying(ctx context.Context, user string) (*models.Track, error)
}

type SongService struct {
	store   *models.Store
	conf    *structures.Config
	secrets *structures.Secrets
	clock   providers.Clock
	client  MusicClient
	cache   providers.CacheProviderInterface
	logger  providers.Logger
}

func NewSongService(store *models.Store, conf *structures.Config, secrets *structures.Secrets, clock providers.Clock, client MusicClient, cache providers.CacheProviderInterface, logger providers.Logger) *SongService {
	return &SongService{
		store:   store,
		conf:    conf,
		secrets: secrets,
		clock:   clock,
		client:  client,
		cache:   cache,
		logger:  logger,
	}
}

func (s *SongService) sign(user, audience string, ttl time.Duration) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secrets.LinkSecret))
}

func (s *SongService) verify(token, audience string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.secrets.LinkSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	user := models.NormalizeUser(claims.Subject)
	if user == "" {
		return "", ErrInvalidTicket
	}
	return user, nil
}

// ConnectLink returns the public URL a user opens to link their music
// account. The ticket proves the link was handed out to that user.
func (s *SongService) ConnectLink(user string) (string, error) {
	user = models.NormalizeUser(user)
	ticket, err := s.sign(user, audienceConnect, connectTicketTTL)
	if err != nil {
		return "", fmt.Errorf("sign connect ticket: %w", err)
	}
	base := strings.TrimRight(s.conf.WebServer.PublicURL, "/")
	q := url.Values{"user": {user}, "ticket": {ticket}}
	return base + "/spotify/connect?" + q.Encode(), nil
}

// BeginAuthorization checks the ticket, stores a fresh PKCE verifier for the
// user and returns the provider consent URL.
func (s *SongService) BeginAuthorization(user, ticket string) (string, error) {
	user = models.NormalizeUser(user)
	owner, err := s.verify(ticket, audienceConnect)
	if err != nil {
		return "", err
	}
	if owner != user {
		return "", ErrInvalidTicket
	}

	state, err := s.sign(user, audienceState, oauthStateTTL)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	authURL, verifier := s.client.AuthorizationURL(state)
	s.store.Update(func(st *models.State) {
		st.MusicVerifiers[user] = verifier
	})
	s.logger.Infof(providers.TypeOAuth, "Authorization started for %s", user)
	return authURL, nil
}

// CompleteAuthorization exchanges code for tokens. The network exchange runs
// without holding the store lock.
func (s *SongService) CompleteAuthorization(ctx context.Context, code, state string) (string, error) {
	user, err := s.verify(state, audienceState)
	if err != nil {
		return "", err
	}

	var verifier string
	s.store.Update(func(st *models.State) {
		verifier = st.MusicVerifiers[user]
	})
	if verifier == "" {
		return "", ErrNoPendingAuthorization
	}

	token, err := s.client.Exchange(ctx, code, verifier)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}

	s.store.Update(func(st *models.State) {
		st.MusicTokens[user] = token
		if st.MusicVerifiers[user] == verifier {
			delete(st.MusicVerifiers, user)
		}
	})
	s.logger.Infof(providers.TypeOAuth, "Music account connected for %s", user)
	return user, nil
}

func (s *SongService) accessToken(ctx context.Context, user string) (string, error) {
	var current models.MusicToken
	found := false
	s.store.Update(func(st *models.State) {
		if tok, ok := st.MusicTokens[user]; ok && tok != nil {
			current, found = *tok, true
		}
	})
	if !found {
		return "", ErrNotConnected
	}
	if s.clock.Now().Before(current.ExpiresAt) {
		return current.AccessToken, nil
	}

	fresh, err := s.client.Refresh(ctx, current.RefreshToken)
	if err != nil {
		s.logger.Warnf(providers.TypeOAuth, "Token refresh failed for %s: %s", user, err)
		return "", fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}

	// Only replace the token we refreshed; a reconnect in the meantime wins.
	s.store.Update(func(st *models.State) {
		if tok, ok := st.MusicTokens[user]; ok && tok != nil && tok.AccessToken == current.AccessToken {
			st.MusicTokens[user] = fresh
		}
	})
	return fresh.AccessToken, nil
}

type cachedTrack struct {
	Track *models.Track `json:"track"`
}

// NowPlaying returns the user's current track, or nil when nothing plays.
// Answers are cached briefly per user.
func (s *SongService) NowPlaying(ctx context.Context, user string) (*models.Track, error) {
	user = models.NormalizeUser(user)
	key := "song:" + user
	if raw, ok := s.cache.Get(key); ok {
		var c cachedTrack
		if err := json.Unmarshal(raw, &c); err == nil {
			return c.Track, nil
		}
	}

	access, err := s.accessToken(ctx, user)
	if err != nil {
		return nil, err
	}
	track, err := s.client.CurrentlyPlaying(ctx, access)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(cachedTrack{Track: track}); err == nil {
		s.cache.Set(key, raw)
	}
	return track, nil
}
