package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/saudkhanbpk/EMS-sub000/internal/pkg/geo"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
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

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	AccessExpiration  string
	RefreshExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	Timezone string
}

// AttendanceConfig holds the attendance policy surface consumed by the
// session state machine and the aggregation engine.
type AttendanceConfig struct {
	OfficeLatitude              float64
	OfficeLongitude             float64
	GeofenceRadiusKm            float64
	LateCheckInCutoff           int // minutes since local midnight
	LateBreakEndCutoff          int // minutes since local midnight
	DefaultMissingBreakHours    float64
	DefaultMissingCheckoutHours float64
	DailyHourCap                float64
	ExpectedHoursPerWorkday     float64
	GeoReadTimeout              time.Duration
}

func Load() (*Config, error) {
	// .env is optional; a real environment wins either way.
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
		Name:     getEnv("DB_NAME", "ems_attendance"),
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
		Timezone: getEnv("APP_TIMEZONE", "Asia/Karachi"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
	}

	// Attendance policy configuration
	attendance, err := loadAttendance()
	if err != nil {
		return nil, err
	}
	config.Attendance = attendance

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (AttendanceConfig, error) {
	officeLat, err := getEnvFloat("OFFICE_LATITUDE", 33.626057)
	if err != nil {
		return AttendanceConfig{}, err
	}
	officeLon, err := getEnvFloat("OFFICE_LONGITUDE", 73.071442)
	if err != nil {
		return AttendanceConfig{}, err
	}
	radiusKm, err := getEnvFloat("GEOFENCE_RADIUS_KM", 0.5)
	if err != nil {
		return AttendanceConfig{}, err
	}

	checkInCutoff, err := ParseClock(getEnv("LATE_CHECK_IN_CUTOFF", "09:30"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid LATE_CHECK_IN_CUTOFF: %w", err)
	}
	breakEndCutoff, err := ParseClock(getEnv("LATE_BREAK_END_CUTOFF", "14:10"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid LATE_BREAK_END_CUTOFF: %w", err)
	}

	missingBreak, err := getEnvFloat("DEFAULT_MISSING_BREAK_HOURS", 1)
	if err != nil {
		return AttendanceConfig{}, err
	}
	missingCheckout, err := getEnvFloat("DEFAULT_MISSING_CHECKOUT_HOURS", 4)
	if err != nil {
		return AttendanceConfig{}, err
	}
	dailyCap, err := getEnvFloat("DAILY_HOUR_CAP", 12)
	if err != nil {
		return AttendanceConfig{}, err
	}
	expectedHours, err := getEnvFloat("EXPECTED_HOURS_PER_WORKDAY", 8)
	if err != nil {
		return AttendanceConfig{}, err
	}

	geoTimeout, err := time.ParseDuration(getEnv("GEO_READ_TIMEOUT", "10s"))
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("invalid GEO_READ_TIMEOUT: %w", err)
	}

	return AttendanceConfig{
		OfficeLatitude:              officeLat,
		OfficeLongitude:             officeLon,
		GeofenceRadiusKm:            radiusKm,
		LateCheckInCutoff:           checkInCutoff,
		LateBreakEndCutoff:          breakEndCutoff,
		DefaultMissingBreakHours:    missingBreak,
		DefaultMissingCheckoutHours: missingCheckout,
		DailyHourCap:                dailyCap,
		ExpectedHoursPerWorkday:     expectedHours,
		GeoReadTimeout:              geoTimeout,
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if !geo.ValidCoordinate(c.Attendance.OfficeLatitude, c.Attendance.OfficeLongitude) {
		return fmt.Errorf("OFFICE_LATITUDE/OFFICE_LONGITUDE must be a valid coordinate")
	}
	if c.Attendance.GeofenceRadiusKm <= 0 {
		return fmt.Errorf("GEOFENCE_RADIUS_KM must be positive")
	}
	if c.Attendance.DailyHourCap <= 0 {
		return fmt.Errorf("DAILY_HOUR_CAP must be positive")
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

// ParseClock parses an "HH:MM" wall-clock cutoff into minutes since local
// midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
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
