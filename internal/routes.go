package internal

import (
	"minelens/internal/controllers"
	"minelens/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController, adminController *controllers.AdminController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/hp/network", http.HandlerFunc(apiController.GetNetwork))
	routers.Get("/hp/history", http.HandlerFunc(apiController.GetHistory))
	routers.Get("/hp/wallet", http.HandlerFunc(apiController.GetWallet))
	routers.Get("/reward/estimate", http.HandlerFunc(apiController.GetRewardEstimate))
	routers.Get("/stake/weighted", http.HandlerFunc(apiController.GetWeightedStake))

	routers.Post("/admin/stake/recompute", http.HandlerFunc(adminController.Recompute))
	routers.Get("/admin/stake/runs", http.HandlerFunc(adminController.Runs))
	routers.Post("/admin/health/economic", http.HandlerFunc(adminController.Economic))
	routers.Get("/admin/health/technical", http.HandlerFunc(adminController.Technical))
	routers.Post("/admin/telemetry", http.HandlerFunc(adminController.Telemetry))
	routers.Get("/admin/alerts", http.HandlerFunc(adminController.Alerts))
	routers.Post("/admin/alerts/resolve", http.HandlerFunc(adminController.ResolveAlert))
	return routers
}
