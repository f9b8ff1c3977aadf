package internal

import (
	"net/http"
	"tsd/internal/controllers"
	"tsd/internal/providers"
	"tsd/internal/structures"
)

func InitRoutes(streamController *controllers.StreamController, adminController *controllers.AdminController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/streams", http.HandlerFunc(streamController.CreateStream))
	routers.Post("/streams/batch", http.HandlerFunc(streamController.CreateBatchStreams))
	routers.Post("/streams/withdraw", http.HandlerFunc(streamController.Withdraw))
	routers.Post("/streams/cancel", http.HandlerFunc(streamController.CancelStream))
	routers.Post("/streams/transfer", http.HandlerFunc(streamController.TransferReceiver))
	routers.Post("/streams/extend", http.HandlerFunc(streamController.ExtendStreamTTL))
	routers.Get("/streams/list", http.HandlerFunc(streamController.ListStreams))
	routers.Get("/stream", http.HandlerFunc(streamController.GetStream))

	routers.Post("/accounts/deposit", http.HandlerFunc(streamController.Deposit))
	routers.Get("/accounts/balance", http.HandlerFunc(streamController.GetBalance))

	routers.Post("/admin/initialize", http.HandlerFunc(adminController.Initialize))
	routers.Post("/admin/fee/initialize", http.HandlerFunc(adminController.InitializeFee))
	routers.Post("/admin/fee", http.HandlerFunc(adminController.UpdateFee))
	routers.Post("/admin/pause", http.HandlerFunc(adminController.SetPause))
	routers.Post("/admin/migrate", http.HandlerFunc(adminController.Migrate))
	routers.Post("/admin/migrate/stream", http.HandlerFunc(adminController.MigrateSingleStream))
	routers.Get("/version", http.HandlerFunc(adminController.GetVersion))

	return routers
}
