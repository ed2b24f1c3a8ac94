package core

import (
	"fantasy-doubles-api/packages/core/cron"
	"fantasy-doubles-api/packages/core/handlers"
	"fantasy-doubles-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Options struct {
	RepairWorkers int
	SweepEnabled  bool
	SweepSchedule string
}

type Module struct {
	RulesService      *services.RulesService
	LedgerService     *services.LedgerService
	RosterService     *services.RosterService
	MatchService      *services.MatchService
	MonitoringService *services.MonitoringService
	MatchHandler      *handlers.MatchHandler
	MonitoringHandler *handlers.MonitoringHandler
	Scheduler         *cron.Scheduler
	opts              Options
	log               zerolog.Logger
}

func NewModule(db *gorm.DB, log zerolog.Logger, opts Options) *Module {
	rulesService := services.NewRulesService(db)
	ledgerService := services.NewLedgerService(db)
	rosterService := services.NewRosterService(db, ledgerService, log)
	matchService := services.NewMatchService(db, rulesService, ledgerService, rosterService, log)
	monitoringService := services.NewMonitoringService(db, matchService, ledgerService, rosterService, opts.RepairWorkers, log)

	return &Module{
		RulesService:      rulesService,
		LedgerService:     ledgerService,
		RosterService:     rosterService,
		MatchService:      matchService,
		MonitoringService: monitoringService,
		MatchHandler:      handlers.NewMatchHandler(matchService),
		MonitoringHandler: handlers.NewMonitoringHandler(monitoringService),
		Scheduler:         cron.NewScheduler(monitoringService, opts.SweepSchedule, log),
		opts:              opts,
		log:               log,
	}
}

// SetupRoutes mounts the admin API behind guards.
func (m *Module) SetupRoutes(r *gin.Engine, guards ...gin.HandlerFunc) {
	admin := r.Group("/admin", guards...)

	matches := admin.Group("/matches")
	{
		matches.GET("", m.MatchHandler.GetMatches)
		matches.GET("/:id", m.MatchHandler.GetMatch)
		matches.PUT("/:id/results", m.MatchHandler.SubmitMatchResult)
		matches.POST("/:id/recalculate", m.MatchHandler.RecalculateMatch)
		matches.DELETE("/:id", m.MatchHandler.DeleteMatch)
	}

	monitoring := admin.Group("/monitoring")
	{
		monitoring.GET("/anomalies", m.MonitoringHandler.GetAnomalies)
		monitoring.POST("/fix-errors", m.MonitoringHandler.FixErrors)
		monitoring.GET("/squads", m.MonitoringHandler.GetSquads)
		monitoring.GET("/player-scores", m.MonitoringHandler.GetPlayerScores)
		monitoring.GET("/dashboard", m.MonitoringHandler.GetDashboard)
	}
}

// StartScheduler starts the anomaly sweep when it is enabled.
func (m *Module) StartScheduler() error {
	if !m.opts.SweepEnabled {
		m.log.Info().Msg("Anomaly sweep disabled")
		return nil
	}
	return m.Scheduler.Start()
}

func (m *Module) StopScheduler() {
	if m.opts.SweepEnabled {
		m.Scheduler.Stop()
	}
}
