package handlers

import (
	"net/http"

	"fantasy-doubles-api/packages/core/models"
	"fantasy-doubles-api/packages/core/services"

	authMiddleware "fantasy-doubles-api/packages/auth/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type MonitoringHandler struct {
	monitoringService *services.MonitoringService
}

func NewMonitoringHandler(monitoringService *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		monitoringService: monitoringService,
	}
}

// GetAnomalies lists scoring inconsistencies
// @Summary Detect anomalies
// @Description Report matches without results, matches without points, completed matches without player points and rosters whose total drifted from their weekly points.
// @Tags monitoring
// @Security BearerAuth
// @Produce json
// @Param competition_id query int false "Filter by competition"
// @Param matchweek query int false "Filter by matchweek"
// @Success 200 {array} models.AnomalyReport
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/monitoring/anomalies [get]
func (h *MonitoringHandler) GetAnomalies(c *gin.Context) {
	filter, ok := anomalyFilter(c)
	if !ok {
		return
	}

	reports, err := h.monitoringService.DetectAnomalies(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to detect anomalies")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anomalies": reports,
		"total":     len(reports),
	})
}

// FixErrors repairs detected inconsistencies
// @Summary Fix errors
// @Tags monitoring
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.FixErrorsRequest true "Repair scope"
// @Success 200 {object} models.FixResult
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/monitoring/fix-errors [post]
func (h *MonitoringHandler) FixErrors(c *gin.Context) {
	var req models.FixErrorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fix_type is required (recalculate_match_points, recalculate_fantasy_points or both)"})
		return
	}

	filter := models.AnomalyFilter{CompetitionID: req.CompetitionID, Matchweek: req.Matchweek}
	if userID, ok := authMiddleware.GetUserID(c); ok {
		zerolog.Ctx(c.Request.Context()).Info().Uint("user_id", userID).Str("fix_type", req.FixType).Msg("Repair requested")
	}
	result, err := h.monitoringService.FixErrors(c.Request.Context(), req.FixType, filter)
	if err != nil {
		respondError(c, err, "Failed to fix errors")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSquads lists every roster of a competition for one matchweek
// @Summary Get squads for a matchweek
// @Tags monitoring
// @Security BearerAuth
// @Produce json
// @Param competition_id query int true "Competition ID"
// @Param matchweek query int true "Matchweek"
// @Success 200 {array} models.SquadView
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/monitoring/squads [get]
func (h *MonitoringHandler) GetSquads(c *gin.Context) {
	filter, ok := anomalyFilter(c)
	if !ok {
		return
	}
	if filter.CompetitionID == nil || filter.Matchweek == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide competition_id and matchweek"})
		return
	}

	squads, err := h.monitoringService.GetSquads(c.Request.Context(), *filter.CompetitionID, *filter.Matchweek)
	if err != nil {
		respondError(c, err, "Failed to retrieve squads")
		return
	}

	c.JSON(http.StatusOK, squads)
}

// GetPlayerScores lists player totals from the ledger
// @Summary Get player scores
// @Tags monitoring
// @Security BearerAuth
// @Produce json
// @Param competition_id query int false "Filter by competition"
// @Param matchweek query int false "Filter by matchweek"
// @Success 200 {array} models.PlayerScore
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/monitoring/player-scores [get]
func (h *MonitoringHandler) GetPlayerScores(c *gin.Context) {
	filter, ok := anomalyFilter(c)
	if !ok {
		return
	}

	scores, err := h.monitoringService.GetPlayerScores(c.Request.Context(), filter.CompetitionID, filter.Matchweek)
	if err != nil {
		respondError(c, err, "Failed to retrieve player scores")
		return
	}

	c.JSON(http.StatusOK, scores)
}

// GetDashboard retrieves platform counters
// @Summary Get dashboard statistics
// @Tags monitoring
// @Security BearerAuth
// @Produce json
// @Param competition_id query int false "Filter by competition"
// @Success 200 {object} models.Dashboard
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /admin/monitoring/dashboard [get]
func (h *MonitoringHandler) GetDashboard(c *gin.Context) {
	competitionID, ok := optionalUint(c, "competition_id")
	if !ok {
		return
	}

	dashboard, err := h.monitoringService.GetDashboard(c.Request.Context(), competitionID)
	if err != nil {
		respondError(c, err, "Failed to retrieve dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func anomalyFilter(c *gin.Context) (models.AnomalyFilter, bool) {
	var filter models.AnomalyFilter
	var ok bool
	if filter.CompetitionID, ok = optionalUint(c, "competition_id"); !ok {
		return filter, false
	}
	if filter.Matchweek, ok = optionalInt(c, "matchweek"); !ok {
		return filter, false
	}
	return filter, true
}
