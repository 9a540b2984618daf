package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
)

// PostgresRepo implements Repo on PostgreSQL through GORM.
type PostgresRepo struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenPostgres connects to dsn and migrates the schedules table.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).AutoMigrate(&row{}); err != nil {
		return nil, err
	}
	return &PostgresRepo{db: db, now: time.Now}, nil
}

func (r *PostgresRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *PostgresRepo) Upsert(ctx context.Context, rec *domain.Record) error {
	if rec == nil {
		return errors.New("nil record")
	}
	w := toRow(rec, r.now())
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"daily_minute", "next_trigger", "postpone_sec", "updated_at"}),
		}).
		Create(&w).Error
}

func (r *PostgresRepo) Get(ctx context.Context, userID int64) (*domain.Record, error) {
	var w row
	err := r.db.WithContext(ctx).First(&w, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := w.record()
	return &rec, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&row{}, "user_id = ?", userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]domain.Record, error) {
	var rows []row
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Record, 0, len(rows))
	for _, w := range rows {
		res = append(res, w.record())
	}
	return res, nil
}
