package controllers

import (
	"coinbot/internal/providers"
	"coinbot/internal/services"
	"coinbot/internal/structures"
	"errors"
	"fmt"
	"html"
	"net/http"
)

// OAuthController serves the two browser legs of the music account link.
type OAuthController struct {
	conf      *structures.Config
	songs     services.SongServiceInterface
	persister services.Persister
	logger    providers.Logger
}

func NewOAuthController(conf *structures.Config, songs services.SongServiceInterface, persister services.Persister, logger providers.Logger) *OAuthController {
	return &OAuthController{conf: conf, songs: songs, persister: persister, logger: logger}
}

func (oc *OAuthController) Connect(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		http.Error(w, "Missing user parameter", http.StatusBadRequest)
		return
	}

	authURL, err := oc.songs.BeginAuthorization(user, r.URL.Query().Get("ticket"))
	if errors.Is(err, services.ErrInvalidTicket) {
		http.Error(w, "This link is invalid or has expired. Ask for a new one in chat.", http.StatusForbidden)
		return
	}
	if err != nil {
		oc.logger.Errorf(providers.TypeOAuth, "Begin authorization for %s: %s", user, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	_ = oc.persister.Persist()

	http.Redirect(w, r, authURL, http.StatusFound)
}

func (oc *OAuthController) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
		return
	}

	user, err := oc.songs.CompleteAuthorization(r.Context(), code, state)
	switch {
	case errors.Is(err, services.ErrNoPendingAuthorization), errors.Is(err, services.ErrInvalidTicket):
		http.Error(w, "No authorization request found for this user", http.StatusBadRequest)
		return
	case err != nil:
		oc.logger.Errorf(providers.TypeOAuth, "Complete authorization: %s", err)
		http.Error(w, "Error connecting Spotify: "+err.Error(), http.StatusInternalServerError)
		return
	}
	_ = oc.persister.Persist()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "<h1>Success!</h1><p>Your Spotify account is now connected to your Twitch bot, %s. "+
		"You can close this window and use <strong>%ssong</strong> in chat!</p>",
		html.EscapeString(user), html.EscapeString(oc.conf.Bot.Prefix))
}
