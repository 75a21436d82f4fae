package main

import (
	"context"
	"fmt"

	"github.com/freedompraise/lockedin/internal/auth"
	"github.com/freedompraise/lockedin/internal/config"
	"github.com/freedompraise/lockedin/internal/database"
	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/handlers"
	"github.com/freedompraise/lockedin/internal/localstore"
	"github.com/freedompraise/lockedin/internal/logger"
	"github.com/freedompraise/lockedin/internal/mirror"
	"github.com/freedompraise/lockedin/internal/profile"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bindFlag lets a flag override the env key, but only when it was set.
func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// app holds everything a command needs.
type app struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	db      *gorm.DB
	store   localstore.Store
	syncer  *mirror.Syncer
	handler *handlers.Handler
}

func newApp(ctx context.Context, v *viper.Viper) (*app, error) {
	cfg := config.Load(v)
	log := logger.New(cfg.LogFile, cfg.IsProduction())

	loc, err := cfg.SyncLocation()
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	store, err := localstore.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.LocalStoreDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	var sessions auth.SessionStore = auth.NewGormSessionStore(db)
	if rs, ok := store.(*localstore.RedisStore); ok {
		sessions = auth.NewRedisSessionStore(rs.Client())
	}

	authSvc := auth.NewService(db, sessions, auth.NewTokens(cfg.JWTSecret), log)
	profiles := goals.NewGormStore(db)
	repo := goals.NewRepository(profiles, log)
	syncer := mirror.NewSyncer(store, repo, log, cfg.MirrorGoalName, loc)

	return &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		store:  store,
		syncer: syncer,
		handler: &handlers.Handler{
			Config:   cfg,
			Auth:     authSvc,
			Goals:    repo,
			Mirrors:  mirror.NewRegistry(store, loc),
			Syncer:   syncer,
			Profiles: profile.NewRegistry(authSvc, profiles, store, log),
			Hub:      handlers.NewHub(log),
			Log:      log,
		},
	}, nil
}

func (a *app) Close() {
	if rs, ok := a.store.(*localstore.RedisStore); ok {
		rs.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.log.Sync()
}
