package internal

import (
	"coinbot/internal/controllers"
	"coinbot/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController, oauthController *controllers.OAuthController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/api/balance", http.HandlerFunc(apiController.GetBalance))
	routers.Get("/api/leaderboard", http.HandlerFunc(apiController.GetLeaderboard))
	routers.Get("/api/chatters", http.HandlerFunc(apiController.GetTopChatters))
	routers.Get("/api/emotes", http.HandlerFunc(apiController.GetTopEmotes))
	routers.Get("/api/summary", http.HandlerFunc(apiController.GetSummary))
	routers.Get("/spotify/connect", http.HandlerFunc(oauthController.Connect))
	routers.Get("/spotify/callback", http.HandlerFunc(oauthController.Callback))
	return routers
}
