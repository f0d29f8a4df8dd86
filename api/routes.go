// Package api stellt die HTTP-Schnittstelle unter /api/v1 bereit.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"citegraph/models"
	"citegraph/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StatisticsComputer berechnet den Korpus-Report.
type StatisticsComputer interface {
	Compute(ctx context.Context) (*models.StatisticsReport, error)
}

// Generator befüllt die Datenbank mit synthetischen Daten.
type Generator interface {
	Generate(ctx context.Context) (*services.GenerateResult, error)
}

// GraphClearer löscht den gesamten Zitationsgraphen.
type GraphClearer interface {
	ClearAll(ctx context.Context) (papersDeleted, citationsDeleted int64, err error)
}

// Handler bündelt die Abhängigkeiten der Endpunkte.
type Handler struct {
	TopPapers *services.TopPapersCache
	Stats     StatisticsComputer
	Generator Generator
	Graph     GraphClearer
	Logger    *zap.Logger
}

// NewRouter baut die gin-Engine mit Middleware, /metrics und allen API-Routen.
func NewRouter(h *Handler, apiKey string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(h.Logger))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	SetupRoutes(router, h, apiKey)
	return router
}

// SetupRoutes registriert /api/v1. Schreibende Endpunkte verlangen den API-Key.
func SetupRoutes(router *gin.Engine, h *Handler, apiKey string) {
	rg := router.Group("/api/v1")
	admin := apiKeyAuthMiddleware(apiKey)

	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	rg.GET("/top-papers", h.topPapers)
	rg.GET("/top-papers-db", h.topPapersDB)
	rg.GET("/stats", h.stats)

	rg.POST("/generate", admin, h.generate)
	rg.DELETE("/clear", admin, h.clear)
	rg.DELETE("/cache/:topic/:limit", admin, h.clearCache)
}

// topPapersParams liest topic (Pflicht, darf leer sein) und limit (Default 50).
func topPapersParams(c *gin.Context) (string, int, bool) {
	topic, ok := c.GetQuery("topic")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'topic' is required"})
		return "", 0, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultLimit)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return "", 0, false
	}
	if err := services.ValidateLimit(limit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", 0, false
	}
	return topic, limit, true
}

func (h *Handler) topPapers(c *gin.Context) {
	topic, limit, ok := topPapersParams(c)
	if !ok {
		return
	}
	res, err := h.TopPapers.GetOrCompute(c.Request.Context(), topic, limit)
	if err != nil {
		h.rankingError(c, err)
		return
	}
	c.Header("X-Cache-Status", string(res.Status))
	c.Header("X-Cache-Key", res.Key)
	c.JSON(http.StatusOK, res.Papers)
}

func (h *Handler) topPapersDB(c *gin.Context) {
	topic, limit, ok := topPapersParams(c)
	if !ok {
		return
	}
	res, err := h.TopPapers.Bypass(c.Request.Context(), topic, limit)
	if err != nil {
		h.rankingError(c, err)
		return
	}
	c.Header("X-Cache-Status", string(res.Status))
	c.Header("X-Cache-Key", res.Key)
	c.Header("X-Source", "DATABASE")
	c.JSON(http.StatusOK, res.Papers)
}

func (h *Handler) rankingError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidLimit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	requestLog(c, h.Logger).Error("Ranking query failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
}

func (h *Handler) stats(c *gin.Context) {
	report, err := h.Stats.Compute(c.Request.Context())
	if err != nil {
		requestLog(c, h.Logger).Error("Statistics query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) generate(c *gin.Context) {
	res, err := h.Generator.Generate(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrGenerationRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		requestLog(c, h.Logger).Error("Generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Citation generation completed",
		"papers_created":    res.PapersCreated,
		"citations_created": res.CitationsCreated,
	})
}

func (h *Handler) clear(c *gin.Context) {
	log := requestLog(c, h.Logger)
	log.Warn("Clearing all database data")

	papers, citations, err := h.Graph.ClearAll(c.Request.Context())
	if err != nil {
		log.Error("Clearing database failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	keys := h.TopPapers.ClearAll(c.Request.Context())

	log.Info("Database cleared",
		zap.Int64("papers_deleted", papers),
		zap.Int64("citations_deleted", citations),
		zap.Int64("cache_keys_deleted", keys))
	c.JSON(http.StatusOK, gin.H{
		"message":            "Database cleared successfully",
		"papers_deleted":     papers,
		"citations_deleted":  citations,
		"cache_keys_deleted": keys,
	})
}

func (h *Handler) clearCache(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}
	key, cleared := h.TopPapers.ClearOne(c.Request.Context(), c.Param("topic"), limit)
	if !cleared {
		c.JSON(http.StatusOK, gin.H{"message": "Error clearing cache", "cache_key": key})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared", "cache_key": key})
}
