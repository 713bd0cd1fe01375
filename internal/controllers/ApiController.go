package controllers

import (
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"coinbot/internal/services"
	"coinbot/internal/structures"
	json "github.com/goccy/go-json"
	"net/http"
	"strconv"
)

const maxListLimit = 100

// ApiController exposes read-only JSON views of the economy and chat stats.
// List responses are cached for the configured cache TTL.
type ApiController struct {
	conf    *structures.Config
	logger  providers.Logger
	economy services.EconomyServiceInterface
	stats   services.StatsServiceInterface
	cache   providers.CacheProviderInterface
}

type rankEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type balanceResponse struct {
	User    string `json:"user"`
	Balance int64  `json:"balance"`
}

type summaryResponse struct {
	Subscriptions int64      `json:"subscriptions"`
	Follows       int64      `json:"follows"`
	TopChatter    *rankEntry `json:"top_chatter,omitempty"`
	TopBits       *rankEntry `json:"top_bits,omitempty"`
	PeakViewers   int64      `json:"peak_viewers,omitempty"`
	AvgViewers    int64      `json:"avg_viewers,omitempty"`
}

func NewApiController(conf *structures.Config, logger providers.Logger, economy services.EconomyServiceInterface, stats services.StatsServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		conf:    conf,
		logger:  logger,
		economy: economy,
		stats:   stats,
		cache:   cache,
	}
}

func ranked(entries []models.TallyEntry) []rankEntry {
	out := make([]rankEntry, 0, len(entries))
	for i, e := range entries {
		out = append(out, rankEntry{Rank: i + 1, Name: e.Key, Count: e.Count})
	}
	return out
}

func (ac *ApiController) limit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return ac.conf.Stats.TopSize
	}
	return min(n, maxListLimit)
}

func (ac *ApiController) channel(r *http.Request) string {
	if ch := models.NormalizeChannel(r.URL.Query().Get("ch")); ch != "" {
		return ch
	}
	if len(ac.conf.Bot.Channels) > 0 {
		return models.NormalizeChannel(ac.conf.Bot.Channels[0])
	}
	return ""
}

func writeJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeJSON(w, data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Encoding %s: %s", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeJSON(w, gson)
}

func (ac *ApiController) GetBalance(w http.ResponseWriter, r *http.Request) {
	user := models.NormalizeUser(r.URL.Query().Get("user"))
	if user == "" {
		http.Error(w, "Missing user parameter", http.StatusBadRequest)
		return
	}
	balance, _ := ac.economy.Peek(user)
	gson, err := json.Marshal(balanceResponse{User: user, Balance: balance})
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, gson)
}

func (ac *ApiController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := ac.limit(r)
	ac.serveFromCacheOrCompute(w, "api:rich:"+strconv.Itoa(n), func() (any, error) {
		return ranked(ac.economy.Richest(n)), nil
	})
}

func (ac *ApiController) GetTopChatters(w http.ResponseWriter, r *http.Request) {
	n := ac.limit(r)
	ac.serveFromCacheOrCompute(w, "api:chatters:"+strconv.Itoa(n), func() (any, error) {
		return ranked(ac.stats.TopChatters(n)), nil
	})
}

func (ac *ApiController) GetTopEmotes(w http.ResponseWriter, r *http.Request) {
	ch := ac.channel(r)
	n := ac.limit(r)
	ac.serveFromCacheOrCompute(w, "api:emotes:"+ch+":"+strconv.Itoa(n), func() (any, error) {
		return ranked(ac.stats.TopEmotes(ch, n)), nil
	})
}

func (ac *ApiController) GetSummary(w http.ResponseWriter, _ *http.Request) {
	ac.serveFromCacheOrCompute(w, "api:summary", func() (any, error) {
		sum := ac.stats.Summary()
		resp := summaryResponse{
			Subscriptions: sum.Subscriptions,
			Follows:       sum.Follows,
		}
		if sum.TopChatter != nil {
			resp.TopChatter = &rankEntry{Rank: 1, Name: sum.TopChatter.Key, Count: sum.TopChatter.Count}
		}
		if sum.TopBits != nil {
			resp.TopBits = &rankEntry{Rank: 1, Name: sum.TopBits.Key, Count: sum.TopBits.Count}
		}
		if sum.HasViewers {
			resp.PeakViewers = sum.PeakViewers
			resp.AvgViewers = sum.AvgViewers
		}
		return resp, nil
	})
}
