package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/saudkhanbpk/EMS-sub000/internal/config"
	appHTTP "github.com/saudkhanbpk/EMS-sub000/internal/handler/http"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/cron"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/database"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/geoloc"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/jwt"
	"github.com/saudkhanbpk/EMS-sub000/internal/repository/postgresql"
	sessionService "github.com/saudkhanbpk/EMS-sub000/internal/service/session"
	statsService "github.com/saudkhanbpk/EMS-sub000/internal/service/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		fmt.Println("Error loading timezone:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	sessionRepo := postgresql.NewSessionRepository(db)
	breakRepo := postgresql.NewBreakRepository(db)
	absenceRepo := postgresql.NewAbsenceRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	// Requests normally carry a device reading; the fixed provider answers
	// for clients that send none.
	provider := geoloc.Fixed{Coord: geoloc.Coordinate{
		Latitude:  cfg.Attendance.OfficeLatitude,
		Longitude: cfg.Attendance.OfficeLongitude,
	}}

	tracker := sessionService.NewBreakTracker(
		cfg.Attendance.LateBreakEndCutoff,
		cfg.Attendance.DefaultMissingBreakHours,
		loc,
	)
	sessionSvc := sessionService.NewSessionService(db, sessionRepo, breakRepo, provider, tracker, cfg.Attendance, loc)
	statsSvc := statsService.NewStatsService(sessionRepo, breakRepo, absenceRepo, tracker, cfg.Attendance, loc)

	sessionHandler := appHTTP.NewSessionHandler(sessionSvc)
	statsHandler := appHTTP.NewStatsHandler(statsSvc, loc)

	scheduler := cron.NewScheduler()
	sessionJobs := cron.NewSessionJobs(sessionRepo, breakRepo, tracker, cfg.Attendance, loc)
	sessionJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(JWTService, sessionHandler, statsHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
