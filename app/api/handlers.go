package api

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veilletech/rss-engine/app/query"
	"github.com/veilletech/rss-engine/app/refresh"
	"github.com/veilletech/rss-engine/app/sources"
	"github.com/veilletech/rss-engine/app/update"
)

func NewHandler(engines map[update.Domain]*query.Engine,
	orchestrators map[update.Domain]*refresh.Orchestrator,
	configCache *sources.ConfigCache, dataDir string) *Handler {
	return &Handler{
		engines:       engines,
		orchestrators: orchestrators,
		configCache:   configCache,
		dataDir:       dataDir,
	}
}

func (h *Handler) domainOf(c *gin.Context) (update.Domain, bool) {
	domain, ok := update.ParseDomain(c.Param("domain"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown domain: " + c.Param("domain")})
		return "", false
	}
	return domain, true
}

// limitParam parses ?limit=N. Malformed or absent values fall back to zero,
// which each query operation maps to its documented default.
func limitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func (h *Handler) GetUpdates(c *gin.Context) {
	domain, ok := h.domainOf(c)
	if !ok {
		return
	}

	result := h.engines[domain].List(query.Filter{
		Category:    c.Query("category"),
		Provider:    c.Query("provider"),
		ServiceType: c.Query("service_type"),
		Limit:       limitParam(c),
	})

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetLatest(c *gin.Context) {
	domain, ok := h.domainOf(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.engines[domain].Latest(limitParam(c)))
}

func (h *Handler) GetStats(c *gin.Context) {
	domain, ok := h.domainOf(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.engines[domain].Stats())
}

func (h *Handler) GetCategories(c *gin.Context) {
	domain, ok := h.domainOf(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.engines[domain].Categories())
}

func (h *Handler) PostRefresh(c *gin.Context) {
	domain, ok := h.domainOf(c)
	if !ok {
		return
	}

	result, err := h.orchestrators[domain].Run(c.Request.Context())
	if errors.Is(err, refresh.ErrInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "A refresh is already running for this domain"})
		return
	}
	if err != nil {
		slog.Error("Refresh failed", "domain", domain, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Refresh failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHealth serves GET /api/test, the service health probe the frontend polls.
func (h *Handler) GetHealth(c *gin.Context) {
	storageStatus := "ok"
	if _, err := os.Stat(h.dataDir); err != nil {
		storageStatus = "unavailable"
	}

	rssStatus := "ok"
	if h.configCache.SourceCount() == 0 {
		rssStatus = "no sources configured"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "RSS Veille API",
		"status":  "ok",
		"services": gin.H{
			"frontend": "external",
			"api":      "ok",
			"storage":  storageStatus,
			"rss":      rssStatus,
		},
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}
