package root

import (
	"context"
	"database/sql"

	"conquer/internal/config"
	"conquer/internal/engine"
	"conquer/internal/storage"
)

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, func(), error) {
	path := cfg.DBPath
	if path == "" {
		var err error
		path, err = storage.ResolveDBPath()
		if err != nil {
			return nil, nil, err
		}
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := engine.NewServiceWith(db, engine.Options{
		SubtaskBonusXP: cfg.SubtaskBonusXP,
		RewardCap:      cfg.RewardCap,
	})
	return svc, cleanup, nil
}
