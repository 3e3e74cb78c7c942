package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"www.github.com/Wanderer0074348/ModelMux/src/models"
)

// RouteHandler exposes the routing engine over HTTP.
type RouteHandler struct {
	router models.RequestRouter
}

func NewRouteHandler(r models.RequestRouter) *RouteHandler {
	return &RouteHandler{router: r}
}

// HandleRoute executes one routing request.
func (h *RouteHandler) HandleRoute(c *gin.Context) {
	var req models.RoutingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.router.Route(c.Request.Context(), &req)
	if err != nil {
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// errorResponse maps the routing error taxonomy onto HTTP statuses.
func errorResponse(err error) (int, gin.H) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field}
	}

	var fe *models.FallbackExhaustedError
	if errors.As(err, &fe) {
		return http.StatusBadGateway, gin.H{"error": fe.Error(), "attempts": len(fe.Attempts)}
	}

	var ee *models.EnsembleExhaustedError
	if errors.As(err, &ee) {
		return http.StatusBadGateway, gin.H{"error": ee.Error(), "members": len(ee.Members)}
	}

	var ce *models.CombineError
	if errors.As(err, &ce) {
		return http.StatusInternalServerError, gin.H{"error": ce.Error()}
	}

	var pe *models.ProviderError
	if errors.As(err, &pe) {
		if pe.Timeout {
			return http.StatusGatewayTimeout, gin.H{"error": pe.Error(), "provider": pe.Provider}
		}
		return http.StatusBadGateway, gin.H{"error": pe.Error(), "provider": pe.Provider}
	}

	return http.StatusInternalServerError, gin.H{"error": err.Error()}
}

// HandleModels lists the registered model catalog.
func (h *RouteHandler) HandleModels(c *gin.Context) {
	descriptors := h.router.AvailableModels()
	c.JSON(http.StatusOK, gin.H{
		"models": descriptors,
		"count":  len(descriptors),
	})
}

// HandleMetrics returns live per-model counters.
func (h *RouteHandler) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":   h.router.MetricsSnapshot(),
		"timestamp": time.Now(),
	})
}

// HandlePreferredProvider overrides the default preferred provider.
func (h *RouteHandler) HandlePreferredProvider(c *gin.Context) {
	var body struct {
		Provider string `json:"provider" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.router.SwitchPreferredProvider(body.Provider); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferred_provider": body.Provider})
}

// HealthCheck reports provider reachability. All providers down means the
// service cannot route anything and reports unhealthy.
func (h *RouteHandler) HealthCheck(c *gin.Context) {
	providers := h.router.ProviderHealth(c.Request.Context())

	up := 0
	for _, ok := range providers {
		if ok {
			up++
		}
	}

	status := "healthy"
	code := http.StatusOK
	switch {
	case len(providers) > 0 && up == 0:
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	case up < len(providers):
		status = "degraded"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"providers": providers,
		"timestamp": time.Now(),
	})
}
