package restapi

import (
	"github.com/gin-gonic/gin"
)

// RegisterWalletRoutes настраивает маршруты кошелька на переданном роутере.
func RegisterWalletRoutes(router *gin.Engine, handler *WalletHandler) {
	v1 := router.Group("/api/v1")
	{
		v1.GET("/state", handler.GetStateHandler)
		v1.POST("/refresh", handler.RefreshHandler)
		v1.POST("/connection/reinitialize", handler.ReinitializeConnectionHandler)
		v1.PUT("/user/credential", handler.SetUserCredentialHandler)
		v1.POST("/balances/multi-network", handler.FetchMultiNetworkBalancesHandler)
	}

	router.GET("/healthz", handler.HealthHandler)
}
