package clients

import (
	"coinbot/internal/models"
	"coinbot/internal/structures"
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const spotifyScope = "user-read-currently-playing"

// SpotifyClient implements the PKCE authorization-code flow and the
// currently-playing lookup.
type SpotifyClient struct {
	oauth  *oauth2.Config
	apiURL string
	http   *http.Client
}

func NewSpotifyClient(conf *structures.Config, secrets *structures.Secrets) *SpotifyClient {
	return &SpotifyClient{
		oauth: &oauth2.Config{
			ClientID:     conf.Spotify.ClientID,
			ClientSecret: secrets.SpotifyClientSecret,
			RedirectURL:  conf.Spotify.RedirectURL,
			Scopes:       []string{spotifyScope},
			Endpoint: oauth2.Endpoint{
				AuthURL:   conf.Spotify.AuthURL,
				TokenURL:  conf.Spotify.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL: strings.TrimRight(conf.Spotify.APIURL, "/"),
		http:   newHTTPClient(),
	}
}

func (c *SpotifyClient) ctx(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

func (c *SpotifyClient) AuthorizationURL(state string) (string, string) {
	verifier := oauth2.GenerateVerifier()
	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), verifier
}

func toMusicToken(tok *oauth2.Token) *models.MusicToken {
	return &models.MusicToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
}

func (c *SpotifyClient) Exchange(ctx context.Context, code, verifier string) (*models.MusicToken, error) {
	tok, err := c.oauth.Exchange(c.ctx(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("spotify exchange: %w", err)
	}
	return toMusicToken(tok), nil
}

// Refresh trades refreshToken for a new access token. A response without a
// new refresh token keeps the old one.
func (c *SpotifyClient) Refresh(ctx context.Context, refreshToken string) (*models.MusicToken, error) {
	tok, err := c.oauth.TokenSource(c.ctx(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("spotify refresh: %w", err)
	}
	out := toMusicToken(tok)
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}
	return out, nil
}

type currentlyPlaying struct {
	IsPlaying bool `json:"is_playing"`
	Item      *struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		Album struct {
			Name string `json:"name"`
		} `json:"album"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	} `json:"item"`
}

func (c *SpotifyClient) CurrentlyPlaying(ctx context.Context, accessToken string) (*models.Track, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)

	var body currentlyPlaying
	status, err := getJSON(ctx, c.http, c.apiURL+"/me/player/currently-playing", header, &body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || body.Item == nil {
		return nil, nil
	}

	artists := make([]string, 0, len(body.Item.Artists))
	for _, a := range body.Item.Artists {
		artists = append(artists, a.Name)
	}
	return &models.Track{
		Name:      body.Item.Name,
		Artists:   strings.Join(artists, ", "),
		Album:     body.Item.Album.Name,
		URL:       body.Item.ExternalURLs.Spotify,
		IsPlaying: body.IsPlaying,
	}, nil
}
