package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment       string
	Port              string
	DatabaseURL       string
	JWTSecret         string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	LocalStoreDir     string
	UploadsDir        string
	LogFile           string
	SyncTime          string // HH:MM, local to SyncUTCOffset
	SyncUTCOffset     string // e.g. +01:00
	MirrorGoalName    string
	SignUpRedirectURL string
}

// Load reads .env (if present) and the environment. Values already set on v,
// such as bound cobra flags, take precedence.
func Load(v *viper.Viper) *Config {
	_ = godotenv.Load()

	if v == nil {
		v = viper.New()
	}
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "lockedin.db")
	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCAL_STORE_DIR", "data/local")
	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("LOG_FILE", "logs/lockedin.log")
	v.SetDefault("SYNC_TIME", "12:00")
	v.SetDefault("SYNC_UTC_OFFSET", "+01:00")
	v.SetDefault("MIRROR_GOAL_NAME", "Daily")
	v.SetDefault("SIGNUP_REDIRECT_URL", "http://localhost:8080"+Redirects.AuthConfirm)

	return &Config{
		Environment:       v.GetString("ENVIRONMENT"),
		Port:              v.GetString("PORT"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		LocalStoreDir:     v.GetString("LOCAL_STORE_DIR"),
		UploadsDir:        v.GetString("UPLOADS_DIR"),
		LogFile:           v.GetString("LOG_FILE"),
		SyncTime:          v.GetString("SYNC_TIME"),
		SyncUTCOffset:     v.GetString("SYNC_UTC_OFFSET"),
		MirrorGoalName:    v.GetString("MIRROR_GOAL_NAME"),
		SignUpRedirectURL: v.GetString("SIGNUP_REDIRECT_URL"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SyncClock parses SyncTime into hour and minute.
func (c *Config) SyncClock() (hour, minute int, err error) {
	h, m, ok := strings.Cut(c.SyncTime, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid SYNC_TIME %q: want HH:MM", c.SyncTime)
	}
	if hour, err = strconv.Atoi(h); err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid SYNC_TIME hour %q", h)
	}
	if minute, err = strconv.Atoi(m); err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid SYNC_TIME minute %q", m)
	}
	return hour, minute, nil
}

// SyncLocation returns a fixed zone for SyncUTCOffset (e.g. "+01:00" is WAT).
func (c *Config) SyncLocation() (*time.Location, error) {
	ref, err := time.Parse("-07:00", c.SyncUTCOffset)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_UTC_OFFSET %q: %w", c.SyncUTCOffset, err)
	}
	_, offset := ref.Zone()
	return time.FixedZone("UTC"+c.SyncUTCOffset, offset), nil
}
