package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formulynx/backend/internal/domain"
)

// IngredientAnalyzer is the analysis entry point the handlers invoke.
type IngredientAnalyzer interface {
	Analyze(ctx context.Context, ingredients []string) (*domain.AnalysisResult, error)
}

// CatalogReloader refreshes the catalog snapshot from its seed.
type CatalogReloader interface {
	Reload() error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer IngredientAnalyzer
	catalog  CatalogReloader
}

// NewHandler creates a new HTTP handler
func NewHandler(analyzer IngredientAnalyzer, catalog CatalogReloader) *Handler {
	return &Handler{
		analyzer: analyzer,
		catalog:  catalog,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "formulynx-backend",
		"version": "1.0.0",
	})
}

// analyzeRequest accepts either a pre-split ingredient list or one raw INCI
// string as scraped/OCR'd from a label; exactly one must be present.
type analyzeRequest struct {
	Ingredients []string `json:"ingredients"`
	InciString  string   `json:"inciString"`
}

// AnalyzeINCI handles ingredient analysis requests
func (h *Handler) AnalyzeINCI(c *gin.Context) {
	if h.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Analysis service not available",
		})
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := req.Ingredients
	if len(input) == 0 && req.InciString != "" {
		input = []string{req.InciString}
	}
	if len(input) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide 'ingredients' or 'inciString'"})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no usable ingredient names in request"})
			return
		}
		log.Printf("[HTTP] analysis failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingredient analysis failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReloadCatalog triggers an explicit catalog snapshot refresh
func (h *Handler) ReloadCatalog(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Catalog reload not available",
		})
		return
	}

	if err := h.catalog.Reload(); err != nil {
		log.Printf("[HTTP] catalog reload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog reload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}
