package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gilitu/attendance-backend-go/internal/pkg/clock"
	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	App        AppConfig
	JWT        JWTConfig
	Geofence   GeofenceConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// JWTConfig holds token verification configuration. Token issuance lives
// in the identity service, not here.
type JWTConfig struct {
	Secret string
}

type GeofenceConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// AttendanceConfig holds the reconciliation cadence and the role mapping
// the window policy leaves to deployment configuration.
type AttendanceConfig struct {
	Timezone          string
	ExemptRoles       []string
	FieldFollowsStaff bool
	DayOpenSkipDays   []time.Weekday

	DayOpenAt          clock.TimeOfDay
	NightAutoCloseAt   clock.TimeOfDay
	DayAutoCloseAt     clock.TimeOfDay
	SaturdayCheckoutAt clock.TimeOfDay
	FinalizeAt         clock.TimeOfDay

	// Synthetic checkout times written by finalize for dangling records.
	DayShiftEnd   clock.TimeOfDay
	NightShiftEnd clock.TimeOfDay
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "gilitu_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Geofence configuration
	lat, err := getEnvFloat("GEOFENCE_LAT", -3.69019)
	if err != nil {
		return nil, err
	}
	lng, err := getEnvFloat("GEOFENCE_LNG", 33.41387)
	if err != nil {
		return nil, err
	}
	radius, err := getEnvFloat("GEOFENCE_RADIUS_METERS", 100)
	if err != nil {
		return nil, err
	}
	config.Geofence = GeofenceConfig{Latitude: lat, Longitude: lng, RadiusMeters: radius}

	// Attendance reconciliation configuration
	att := AttendanceConfig{
		Timezone:          getEnv("ATTENDANCE_TIMEZONE", clock.DefaultTimezone),
		ExemptRoles:       getEnvSlice("ATTENDANCE_EXEMPT_ROLES", "admin"),
		FieldFollowsStaff: getEnv("ATTENDANCE_FIELD_FOLLOWS_STAFF", "true") == "true",
	}

	att.DayOpenSkipDays, err = parseWeekdays(getEnvSlice("ATTENDANCE_DAY_OPEN_SKIP_DAYS", ""))
	if err != nil {
		return nil, err
	}

	times := []struct {
		key      string
		fallback string
		dst      *clock.TimeOfDay
	}{
		{"ATTENDANCE_DAY_OPEN_AT", "00:00:00", &att.DayOpenAt},
		{"ATTENDANCE_NIGHT_AUTO_CLOSE_AT", "06:00:00", &att.NightAutoCloseAt},
		{"ATTENDANCE_DAY_AUTO_CLOSE_AT", "19:00:00", &att.DayAutoCloseAt},
		{"ATTENDANCE_SATURDAY_CHECKOUT_AT", "15:00:00", &att.SaturdayCheckoutAt},
		{"ATTENDANCE_FINALIZE_AT", "09:48:00", &att.FinalizeAt},
		{"ATTENDANCE_DAY_SHIFT_END", "18:00:00", &att.DayShiftEnd},
		{"ATTENDANCE_NIGHT_SHIFT_END", "06:00:00", &att.NightShiftEnd},
	}
	for _, tc := range times {
		tod, err := clock.ParseTimeOfDay(getEnv(tc.key, tc.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", tc.key, err)
		}
		*tc.dst = tod
	}

	config.Attendance = att

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	// Finalize must run strictly after the last possible checkout window
	// for the previous business date (the night checkout window ends at
	// 07:55). This is a scheduling precondition: the reconciliation state
	// machine only commutes when finalize is the last writer.
	nightCheckoutEnd := clock.MustTimeOfDay("07:55:00")
	if !c.Attendance.FinalizeAt.After(nightCheckoutEnd) {
		return fmt.Errorf("ATTENDANCE_FINALIZE_AT (%s) must be after the night checkout window end (%s)",
			c.Attendance.FinalizeAt, nightCheckoutEnd)
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseWeekdays(names []string) ([]time.Weekday, error) {
	byName := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	var days []time.Weekday
	for _, name := range names {
		day, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", name)
		}
		days = append(days, day)
	}
	return days, nil
}
