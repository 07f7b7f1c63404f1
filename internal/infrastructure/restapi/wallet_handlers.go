package restapi

import (
	"net/http"

	"wallet_sync/internal/app/port"
	"wallet_sync/internal/domain/entity"
	"wallet_sync/internal/infrastructure/httpclient"

	"github.com/gin-gonic/gin"
)

// WalletHandler обрабатывает HTTP запросы, связанные с состоянием кошелька.
type WalletHandler struct {
	walletService port.WalletService
	catalog       port.NetworkCatalog
	prober        httpclient.RPCProber
	logger        port.Logger
}

// NewWalletHandler создает новый экземпляр WalletHandler.
func NewWalletHandler(ws port.WalletService, catalog port.NetworkCatalog, prober httpclient.RPCProber, log port.Logger) *WalletHandler {
	return &WalletHandler{
		walletService: ws,
		catalog:       catalog,
		prober:        prober,
		logger:        log,
	}
}

// stateResponse wraps a WalletState snapshot for API consumers.
type stateResponse struct {
	Data          entity.WalletState `json:"data"`
	HasConnection bool               `json:"hasConnection"`
}

// credentialRequest is the body of the set-user-credential endpoint.
type credentialRequest struct {
	PrivateKey string `json:"privateKey"`
}

// GetStateHandler returns the current wallet state snapshot.
func (h *WalletHandler) GetStateHandler(c *gin.Context) {
	snapshot := h.walletService.Snapshot()
	c.JSON(http.StatusOK, stateResponse{
		Data:          snapshot,
		HasConnection: snapshot.HasConnection(),
	})
}

// RefreshHandler re-queries balances for the existing accounts.
func (h *WalletHandler) RefreshHandler(c *gin.Context) {
	h.walletService.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

// ReinitializeConnectionHandler re-derives the primary connection.
func (h *WalletHandler) ReinitializeConnectionHandler(c *gin.Context) {
	if err := h.walletService.ReinitializeConnection(c.Request.Context()); err != nil {
		// Ошибка уже записана в LastError; отдаем ее и клиенту.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "initialized"})
}

// SetUserCredentialHandler replaces or clears the user account credential.
func (h *WalletHandler) SetUserCredentialHandler(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	h.walletService.SetUserCredential(c.Request.Context(), req.PrivateKey)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// FetchMultiNetworkBalancesHandler triggers a full multi-network fetch cycle
// and returns the committed mapping.
func (h *WalletHandler) FetchMultiNetworkBalancesHandler(c *gin.Context) {
	balances := h.walletService.FetchMultiNetworkBalances(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// HealthHandler probes the primary RPC endpoint and reports reachability.
func (h *WalletHandler) HealthHandler(c *gin.Context) {
	primary := h.catalog.Primary()
	chainID, err := h.prober.Probe(primary.RPCURL)
	if err != nil {
		h.logger.Warn("Health probe failed", "network", primary.Identifier, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"network": primary.Identifier,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"network": primary.Identifier,
		"chainId": chainID,
	})
}
