package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/gilitu/attendance-backend-go/internal/config"
	appHTTP "github.com/gilitu/attendance-backend-go/internal/handler/http"
	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
	"github.com/gilitu/attendance-backend-go/internal/pkg/cron"
	"github.com/gilitu/attendance-backend-go/internal/pkg/database"
	"github.com/gilitu/attendance-backend-go/internal/pkg/geofence"
	"github.com/gilitu/attendance-backend-go/internal/pkg/jwt"
	"github.com/gilitu/attendance-backend-go/internal/policy"
	"github.com/gilitu/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/gilitu/attendance-backend-go/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}
	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	clk := clock.New(cfg.Attendance.Timezone)
	fence := geofence.New(cfg.Geofence.Latitude, cfg.Geofence.Longitude, cfg.Geofence.RadiusMeters)
	pol := policy.New(policy.DefaultWindows(), policy.DefaultGuards(cfg.Attendance.FieldFollowsStaff))

	attendanceSvc := attendanceService.NewAttendanceService(
		db,
		attendanceRepo,
		employeeRepo,
		clk,
		fence,
		pol,
	)

	scheduler := cron.NewScheduler(clk)
	jobs := cron.NewAttendanceJobs(attendanceRepo, clk, cfg.Attendance)
	jobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(JWTService, attendanceHandler)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "addr", addr, "env", cfg.App.Env)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal("Server failed: ", err)
	}
}
