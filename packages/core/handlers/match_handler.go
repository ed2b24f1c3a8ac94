package handlers

import (
	"net/http"
	"strconv"

	"fantasy-doubles-api/packages/core/apperrors"
	"fantasy-doubles-api/packages/core/models"
	"fantasy-doubles-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	matchService *services.MatchService
}

func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// GetMatches retrieves matches with pagination and filters
// @Summary Get matches with pagination and filters
// @Description Get matches filtered by competition, matchweek and completion
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number (default: 1)" default(1)
// @Param per_page query int false "Items per page (default: 20, max: 100)" default(20)
// @Param competition_id query int false "Filter by competition"
// @Param matchweek query int false "Filter by matchweek"
// @Param is_completed query bool false "Filter by completion"
// @Success 200 {object} models.PaginatedMatchResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/matches [get]
func (h *MatchHandler) GetMatches(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return
	}

	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if err != nil || perPage < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid per_page parameter"})
		return
	}

	// Limit per_page to maximum 100
	if perPage > 100 {
		perPage = 100
	}

	filters := services.MatchFilters{
		Page:    page,
		PerPage: perPage,
	}

	var ok bool
	if filters.CompetitionID, ok = optionalUint(c, "competition_id"); !ok {
		return
	}
	if filters.Matchweek, ok = optionalInt(c, "matchweek"); !ok {
		return
	}
	if raw := c.Query("is_completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_completed parameter"})
			return
		}
		filters.IsCompleted = &completed
	}

	matches, err := h.matchService.GetMatches(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "Failed to retrieve matches")
		return
	}

	c.JSON(http.StatusOK, matches)
}

// GetMatch retrieves one match
// @Summary Get a match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/matches/{id} [get]
func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID, ok := parseID(c, "id")
	if !ok {
		return
	}

	match, err := h.matchService.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err, "Failed to retrieve match")
		return
	}

	c.JSON(http.StatusOK, match)
}

// SubmitMatchResult records a match result and propagates its points
// @Summary Submit a match result
// @Description Save set scores and winner, then compute player points and update every roster of the matchweek. Resubmitting corrects a previous result.
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param request body models.SubmitMatchResultRequest true "Match result"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string "Result saved but scoring rules are missing or invalid"
// @Failure 500 {object} map[string]string
// @Router /admin/matches/{id}/results [put]
func (h *MatchHandler) SubmitMatchResult(c *gin.Context) {
	matchID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.SubmitMatchResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.matchService.SubmitMatchResult(c.Request.Context(), matchID, req)
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.CodeConfigNotFound, apperrors.CodeInvalidScoringRules:
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":        err.Error(),
				"code":         apperrors.CodeOf(err),
				"result_saved": true,
			})
		default:
			respondError(c, err, "Failed to submit match result")
		}
		return
	}

	c.JSON(http.StatusOK, match)
}

// RecalculateMatch clears and recomputes the points of a match
// @Summary Recalculate match points
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/matches/{id}/recalculate [post]
func (h *MatchHandler) RecalculateMatch(c *gin.Context) {
	matchID, ok := parseID(c, "id")
	if !ok {
		return
	}

	match, err := h.matchService.RecalculateMatch(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err, "Failed to recalculate match points")
		return
	}

	c.JSON(http.StatusOK, match)
}

// DeleteMatch deletes a match and its player points
// @Summary Delete a match
// @Description Delete a match, remove its player points and recompute the rosters of its matchweek.
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/matches/{id} [delete]
func (h *MatchHandler) DeleteMatch(c *gin.Context) {
	matchID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.matchService.DeleteMatch(c.Request.Context(), matchID); err != nil {
		respondError(c, err, "Failed to delete match")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Match deleted"})
}
