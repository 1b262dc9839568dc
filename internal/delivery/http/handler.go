package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/flexfinder/backend/internal/domain"
	"github.com/flexfinder/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service *usecase.RecommendService
	leads   domain.LeadStore
	quotes  domain.QuoteRenderer
	version string
}

// NewHandler creates a new HTTP handler
func NewHandler(service *usecase.RecommendService, leads domain.LeadStore, quotes domain.QuoteRenderer, version string) *Handler {
	return &Handler{
		service: service,
		leads:   leads,
		quotes:  quotes,
		version: version,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "flexfinder-api",
		"version": h.version,
	})
}

// recommendRequest is the room profile the demo UI submits.
type recommendRequest struct {
	RoomType string `json:"room_type"`
	Platform string `json:"platform"`
	Needs    string `json:"needs"`
}

// Recommend runs the guided-selling flow: model recommendations, then URL,
// image, and embed resolution for every product.
func (h *Handler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.RoomType == "" {
		req.RoomType = "Medium"
	}
	if req.Platform == "" {
		req.Platform = "Zoom"
	}

	reco, resolved, err := h.service.Recommend(c.Request.Context(), req.RoomType, req.Platform, req.Needs)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrAPIKeyMissing) {
			status = http.StatusServiceUnavailable
		}
		logrus.Errorf("[HTTP] recommendation failed: %v", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	blob, err := json.Marshal(reco)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not serialize recommendation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rationale":           reco.Rationale,
		"products":            resolved,
		"html":                renderProductCards(reco.Rationale, resolved),
		"recommendation_json": string(blob),
	})
}

// ResolveProduct resolves a single product stub without a model round trip.
// Resolution always produces a usable result, so the only failure mode is a
// malformed body.
func (h *Handler) ResolveProduct(c *gin.Context) {
	var stub domain.ProductStub
	if err := c.ShouldBindJSON(&stub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	c.JSON(http.StatusOK, h.service.Resolve(c.Request.Context(), stub))
}

// leadRequest is the contact form plus the recommendation it refers to.
type leadRequest struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Company            string `json:"company"`
	Phone              string `json:"phone"`
	RoomType           string `json:"room_type"`
	Platform           string `json:"platform"`
	Notes              string `json:"notes"`
	RecommendationJSON string `json:"recommendation_json"`
}

// SubmitLead validates and records a quote-request lead.
func (h *Handler) SubmitLead(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	lead := &domain.Lead{
		Name:               req.Name,
		Email:              req.Email,
		Company:            req.Company,
		Phone:              req.Phone,
		RoomType:           req.RoomType,
		Platform:           req.Platform,
		Notes:              req.Notes,
		RecommendationJSON: req.RecommendationJSON,
	}
	if err := lead.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.leads.Append(lead); err != nil {
		logrus.Errorf("[HTTP] lead append failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record lead"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"lead_id":    lead.LeadID,
		"created_at": lead.CreatedAt,
	})
}

// quoteRequest carries the room profile and the recommendation to lay out.
type quoteRequest struct {
	RoomType           string `json:"room_type"`
	Platform           string `json:"platform"`
	Needs              string `json:"needs"`
	RecommendationJSON string `json:"recommendation_json"`
}

// QuotePDF renders the recommendation as a downloadable PDF quote. Products
// are resolved again on the way in; repeat resolutions are answered from the
// cache.
func (h *Handler) QuotePDF(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// A missing or malformed recommendation still yields a placeholder quote.
	var reco domain.Recommendation
	if req.RecommendationJSON != "" {
		if err := json.Unmarshal([]byte(req.RecommendationJSON), &reco); err != nil {
			logrus.Warnf("[HTTP] ignoring malformed recommendation payload: %v", err)
			reco = domain.Recommendation{}
		}
	}

	quote := &domain.QuoteRequest{
		RoomType:  req.RoomType,
		Platform:  req.Platform,
		UserNeeds: req.Needs,
		Rationale: reco.Rationale,
		Products:  h.service.ResolveAll(c.Request.Context(), reco.Products),
	}

	doc, err := h.quotes.Render(c.Request.Context(), quote)
	if err != nil {
		logrus.Errorf("[HTTP] quote render failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render quote"})
		return
	}

	filename := fmt.Sprintf("crestron_flex_recommendation_%s.pdf", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", doc)
}
