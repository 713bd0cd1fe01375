package services

import (
	"coinbot/internal/models"
	"context"
)

type Persister interface {
	Persist() error
}

// Broadcaster sends one message to every configured channel.
type Broadcaster interface {
	Broadcast(text string)
}

type MusicClient interface {
	// AuthorizationURL builds the consent URL carrying state and returns the
	// PKCE verifier that must accompany the code exchange.
	AuthorizationURL(state string) (url string, verifier string)
	Exchange(ctx context.Context, code, verifier string) (*models.MusicToken, error)
	Refresh(ctx context.Context, refreshToken string) (*models.MusicToken, error)
	// CurrentlyPlaying returns nil when nothing is playing.
	CurrentlyPlaying(ctx context.Context, accessToken string) (*models.Track, error)
}

type Follower struct {
	ID   string
	Name string
}

type FollowerSource interface {
	// LatestFollower returns nil when the channel has no followers.
	LatestFollower(ctx context.Context) (*Follower, error)
	// ViewerCount reports the live viewer count; live is false when offline.
	ViewerCount(ctx context.Context) (count int64, live bool, err error)
}
