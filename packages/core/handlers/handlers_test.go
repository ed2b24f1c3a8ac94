package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fantasy-doubles-api/packages/core/models"
	"fantasy-doubles-api/packages/core/services"
	"fantasy-doubles-api/packages/core/testutil"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type testServer struct {
	router *gin.Engine
	seed   *testutil.Seed
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.OpenDB(t)
	log := zerolog.Nop()
	rules := services.NewRulesService(db)
	ledger := services.NewLedgerService(db)
	rosters := services.NewRosterService(db, ledger, log)
	matches := services.NewMatchService(db, rules, ledger, rosters, log)
	monitoring := services.NewMonitoringService(db, matches, ledger, rosters, 1, log)

	matchHandler := NewMatchHandler(matches)
	monitoringHandler := NewMonitoringHandler(monitoring)

	r := gin.New()
	r.GET("/admin/matches", matchHandler.GetMatches)
	r.GET("/admin/matches/:id", matchHandler.GetMatch)
	r.PUT("/admin/matches/:id/results", matchHandler.SubmitMatchResult)
	r.POST("/admin/matches/:id/recalculate", matchHandler.RecalculateMatch)
	r.DELETE("/admin/matches/:id", matchHandler.DeleteMatch)
	r.GET("/admin/monitoring/anomalies", monitoringHandler.GetAnomalies)
	r.POST("/admin/monitoring/fix-errors", monitoringHandler.FixErrors)
	r.GET("/admin/monitoring/squads", monitoringHandler.GetSquads)
	r.GET("/admin/monitoring/player-scores", monitoringHandler.GetPlayerScores)
	r.GET("/admin/monitoring/dashboard", monitoringHandler.GetDashboard)

	return &testServer{router: r, seed: testutil.NewSeed(t, db)}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			payload.WriteString(b)
		default:
			if err := json.NewEncoder(&payload).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

// scheduled seeds one unplayed match and returns it with its pairs.
func (s *testServer) scheduled(rules *models.ScoringRules) (models.Match, models.Pair, models.Pair) {
	competition := s.seed.Competition(rules)
	players := s.seed.Players(4)
	pairA := s.seed.Pair(competition.ID, 1, players[0], players[1])
	pairB := s.seed.Pair(competition.ID, 1, players[2], players[3])
	s.seed.Roster(competition.ID, 1, players[:2], players[2:])
	return s.seed.Match(competition.ID, 1, pairA, pairB), pairA, pairB
}

func result(winner uint) models.SubmitMatchResultRequest {
	return models.SubmitMatchResultRequest{
		Set1:     models.SetScore{Pair1Score: 21, Pair2Score: 15},
		Set2:     models.SetScore{Pair1Score: 18, Pair2Score: 21},
		Set3:     models.SetScore{Pair1Score: 21, Pair2Score: 19},
		WinnerID: &winner,
	}
}

func TestSubmitMatchResult(t *testing.T) {
	s := newTestServer(t)
	match, pairA, _ := s.scheduled(&models.ScoringRules{})

	w, body := s.do(t, http.MethodPut, fmt.Sprintf("/admin/matches/%d/results", match.ID), result(pairA.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if body["points_calculated"] != true || body["is_completed"] != true {
		t.Fatalf("body = %v, want completed and calculated", body)
	}
}

func TestSubmitMatchResultErrors(t *testing.T) {
	s := newTestServer(t)
	match, pairA, pairB := s.scheduled(&models.ScoringRules{})
	unconfigured, unconfiguredPair, _ := s.scheduled(nil)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{
			name:   "invalid id",
			path:   "/admin/matches/abc/results",
			body:   result(pairA.ID),
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed body",
			path:   fmt.Sprintf("/admin/matches/%d/results", match.ID),
			body:   "{not json",
			status: http.StatusBadRequest,
		},
		{
			name:   "winner not in match",
			path:   fmt.Sprintf("/admin/matches/%d/results", match.ID),
			body:   result(pairB.ID + 100),
			status: http.StatusBadRequest,
			code:   "INVALID_WINNER",
		},
		{
			name:   "unknown match",
			path:   "/admin/matches/9999/results",
			body:   result(pairA.ID),
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "competition without rules",
			path:   fmt.Sprintf("/admin/matches/%d/results", unconfigured.ID),
			body:   result(unconfiguredPair.ID),
			status: http.StatusUnprocessableEntity,
			code:   "CONFIG_NOT_FOUND",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := s.do(t, http.MethodPut, tt.path, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			if tt.code != "" && body["code"] != tt.code {
				t.Fatalf("code = %v, want %s", body["code"], tt.code)
			}
		})
	}

	_, body := s.do(t, http.MethodPut, fmt.Sprintf("/admin/matches/%d/results", unconfigured.ID), result(unconfiguredPair.ID))
	if body["result_saved"] != true {
		t.Fatalf("result_saved = %v, want true", body["result_saved"])
	}
}

func TestMatchLifecycle(t *testing.T) {
	s := newTestServer(t)
	match, pairA, _ := s.scheduled(&models.ScoringRules{})
	path := fmt.Sprintf("/admin/matches/%d", match.ID)

	if w, _ := s.do(t, http.MethodPut, path+"/results", result(pairA.ID)); w.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", w.Code, w.Body.String())
	}

	w, body := s.do(t, http.MethodGet, "/admin/matches?matchweek=1&is_completed=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", w.Code, w.Body.String())
	}
	if body["total"] != float64(1) {
		t.Fatalf("total = %v, want 1", body["total"])
	}

	if w, _ := s.do(t, http.MethodGet, "/admin/matches?page=0", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("page=0 status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	if w, _ := s.do(t, http.MethodPost, path+"/recalculate", nil); w.Code != http.StatusOK {
		t.Fatalf("recalculate status = %d: %s", w.Code, w.Body.String())
	}

	if w, _ := s.do(t, http.MethodDelete, path, nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", w.Code, w.Body.String())
	}

	w, body = s.do(t, http.MethodGet, path, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
	details, _ := body["details"].(map[string]interface{})
	if details["match_id"] != fmt.Sprint(match.ID) {
		t.Fatalf("details = %v, want match_id %d", body["details"], match.ID)
	}
}

func TestMonitoringEndpoints(t *testing.T) {
	s := newTestServer(t)
	match, _, _ := s.scheduled(&models.ScoringRules{})

	w, body := s.do(t, http.MethodGet, fmt.Sprintf("/admin/monitoring/anomalies?competition_id=%d", match.CompetitionID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("anomalies status = %d: %s", w.Code, w.Body.String())
	}
	if body["total"] != float64(1) {
		t.Fatalf("total = %v, want 1 (match without result)", body["total"])
	}

	if w, _ := s.do(t, http.MethodGet, "/admin/monitoring/anomalies?matchweek=x", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad matchweek status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w, body = s.do(t, http.MethodPost, "/admin/monitoring/fix-errors", gin.H{"fix_type": "both"})
	if w.Code != http.StatusOK {
		t.Fatalf("fix status = %d: %s", w.Code, w.Body.String())
	}
	if body["fix_type"] != "both" || body["failures"] != float64(0) {
		t.Fatalf("fix body = %v", body)
	}

	w, body = s.do(t, http.MethodPost, "/admin/monitoring/fix-errors", gin.H{"fix_type": "everything"})
	if w.Code != http.StatusBadRequest || body["code"] != "INVALID_FIX_TYPE" {
		t.Fatalf("invalid fix = (%d, %v), want (400, INVALID_FIX_TYPE)", w.Code, body["code"])
	}

	if w, _ := s.do(t, http.MethodPost, "/admin/monitoring/fix-errors", gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing fix_type status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	if w, _ := s.do(t, http.MethodGet, "/admin/monitoring/squads?matchweek=1", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("squads without competition status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	squads := httptest.NewRecorder()
	s.router.ServeHTTP(squads, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/admin/monitoring/squads?competition_id=%d&matchweek=1", match.CompetitionID), nil))
	var views []models.SquadView
	if err := json.Unmarshal(squads.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode squads: %v", err)
	}
	if squads.Code != http.StatusOK || len(views) != 1 {
		t.Fatalf("squads = (%d, %d views), want (200, 1)", squads.Code, len(views))
	}

	if w, _ := s.do(t, http.MethodGet, "/admin/monitoring/player-scores", nil); w.Code != http.StatusOK {
		t.Fatalf("player scores status = %d: %s", w.Code, w.Body.String())
	}

	w, body = s.do(t, http.MethodGet, "/admin/monitoring/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d: %s", w.Code, w.Body.String())
	}
	if body["total_matches"] != float64(1) || body["active_players"] != float64(4) {
		t.Fatalf("dashboard = %v", body)
	}
}
