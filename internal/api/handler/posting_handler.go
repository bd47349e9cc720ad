package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cuongbtq/jobboard/internal/api/dto"
	"github.com/cuongbtq/jobboard/internal/search"
	"github.com/cuongbtq/jobboard/internal/storage"
)

// SearchPostings handles GET /api/v1/postings/search
// Ranks active postings against the query and filters
func (h *PostingHandler) SearchPostings(c *gin.Context) {
	start := time.Now()

	var req dto.SearchPostingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	query, filter, err := buildQuery(&req)
	if err != nil {
		h.logger.Warn("Rejected search request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}
	filter.Limit = h.searchLimit

	postings, err := h.postings.ListActivePostings(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list postings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list postings",
		})
		return
	}

	results := search.Search(postings, query)
	total := len(results)
	if req.Limit > 0 && req.Limit < len(results) {
		results = results[:req.Limit]
	}

	response := dto.SearchPostingsResponse{
		Results: make([]dto.PostingResult, len(results)),
		Total:   total,
	}
	for i, r := range results {
		response.Results[i] = toPostingResult(r)
	}

	h.metrics.RecordSearch(time.Since(start), total)
	h.logger.Debug("Search served",
		slog.String("q", req.Query),
		slog.Int("candidates", len(postings)),
		slog.Int("total", total),
	)

	c.JSON(http.StatusOK, response)
}

// Suggestions handles GET /api/v1/postings/suggestions
// Returns word completions for a partial query
func (h *PostingHandler) Suggestions(c *gin.Context) {
	var req dto.SuggestionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > search.DefaultSuggestionLimit {
		limit = search.DefaultSuggestionLimit
	}

	if req.Query == "" {
		c.JSON(http.StatusOK, dto.SuggestionsResponse{Suggestions: []string{}})
		return
	}

	postings, err := h.postings.ListActivePostings(c.Request.Context(), storage.PostingFilter{Limit: h.searchLimit})
	if err != nil {
		h.logger.Error("Failed to list postings", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list postings",
		})
		return
	}

	c.JSON(http.StatusOK, dto.SuggestionsResponse{
		Suggestions: search.Suggest(req.Query, postings, limit),
	})
}
