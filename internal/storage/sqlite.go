package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Compile-time interface check.
var _ domain.FavoritesStore = (*SQLiteFavorites)(nil)

const maxRetries = 5

// SQLiteFavorites stores favorites and their steps in SQLite through GORM.
type SQLiteFavorites struct {
	db  *gorm.DB
	log *logger.Logger
}

// gormLogger routes GORM output into the application logger.
type gormLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{log: l.log, level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info(msg, data...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(msg, data...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error(msg, data...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < gormlogger.Warn {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.Error("gorm: %v (sql=%q rows=%d took=%s)", err, sql, rows, elapsed)
	case elapsed > 200*time.Millisecond:
		l.log.Warn("gorm: slow query (sql=%q rows=%d took=%s)", sql, rows, elapsed)
	default:
		l.log.Debug("gorm: %s (rows=%d took=%s)", sql, rows, elapsed)
	}
}

// NewSQLiteFavorites opens (or creates) the favorites database at dbPath
// and migrates its schema.
func NewSQLiteFavorites(dbPath string, log *logger.Logger) (*SQLiteFavorites, error) {
	if len(dbPath) > 0 && dbPath[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	level := gormlogger.Warn
	if log.GetLevel() >= logger.LevelVerbose {
		level = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  (&gormLogger{log: log}).LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA foreign_keys=ON")

	if err := db.AutoMigrate(&FavoriteModel{}, &FavoriteStepModel{}); err != nil {
		return nil, fmt.Errorf("migrating favorites schema: %w", err)
	}

	log.Info("favorites database ready at %s", dbPath)
	return &SQLiteFavorites{db: db, log: log}, nil
}

// Close closes the database connection.
func (s *SQLiteFavorites) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save upserts a favorite and replaces its steps.
func (s *SQLiteFavorites) Save(ctx context.Context, fav *domain.Favorite) error {
	model, err := toFavoriteModel(fav)
	if err != nil {
		return err
	}
	steps := model.Steps
	model.Steps = nil

	err = withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&model).Error; err != nil {
				return err
			}
			if err := tx.Where("signature = ?", model.Signature).Delete(&FavoriteStepModel{}).Error; err != nil {
				return err
			}
			if len(steps) == 0 {
				return nil
			}
			return tx.Create(&steps).Error
		})
	}, maxRetries)
	if err != nil {
		return fmt.Errorf("saving favorite %s: %w", fav.Signature, err)
	}

	s.log.Debug("saved favorite %s (%d steps)", fav.Signature, len(steps))
	return nil
}

// Get retrieves a favorite with its steps in order.
func (s *SQLiteFavorites) Get(ctx context.Context, sig domain.RecipeSignature) (*domain.Favorite, error) {
	var model FavoriteModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).
			Preload("Steps", orderByPosition).
			Where("signature = ?", string(sig)).
			First(&model).Error
	}, maxRetries)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading favorite %s: %w", sig, err)
	}
	return fromFavoriteModel(&model)
}

// List returns all favorites, newest first.
func (s *SQLiteFavorites) List(ctx context.Context) ([]*domain.Favorite, error) {
	var models []FavoriteModel
	err := withRetry(func() error {
		return s.db.WithContext(ctx).
			Preload("Steps", orderByPosition).
			Order("saved_at DESC").
			Find(&models).Error
	}, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}

	out := make([]*domain.Favorite, 0, len(models))
	for i := range models {
		fav, err := fromFavoriteModel(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, fav)
	}
	return out, nil
}

// Delete removes a favorite and its steps.
func (s *SQLiteFavorites) Delete(ctx context.Context, sig domain.RecipeSignature) error {
	var affected int64
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("signature = ?", string(sig)).Delete(&FavoriteStepModel{}).Error; err != nil {
				return err
			}
			res := tx.Where("signature = ?", string(sig)).Delete(&FavoriteModel{})
			affected = res.RowsAffected
			return res.Error
		})
	}, maxRetries)
	if err != nil {
		return fmt.Errorf("deleting favorite %s: %w", sig, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.log.Debug("deleted favorite %s", sig)
	return nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func toFavoriteModel(fav *domain.Favorite) (FavoriteModel, error) {
	ingredients, err := encodeList(fav.Ingredients)
	if err != nil {
		return FavoriteModel{}, err
	}

	m := FavoriteModel{
		Signature:   string(fav.Signature),
		RecipeName:  fav.RecipeName,
		Ingredients: ingredients,
		SavedAt:     fav.SavedAt.UTC(),
		Steps:       make([]FavoriteStepModel, 0, len(fav.Steps)),
	}
	for i, step := range fav.Steps {
		used, err := encodeList(step.IngredientsUsed)
		if err != nil {
			return FavoriteModel{}, err
		}
		m.Steps = append(m.Steps, FavoriteStepModel{
			Signature:       m.Signature,
			Position:        i,
			Number:          step.Number,
			Description:     step.Description,
			IngredientsUsed: used,
			TimeMinutes:     step.TimeMinutes,
		})
	}
	return m, nil
}

func fromFavoriteModel(m *FavoriteModel) (*domain.Favorite, error) {
	ingredients, err := decodeList(m.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("decoding ingredients of %s: %w", m.Signature, err)
	}

	fav := &domain.Favorite{
		Signature:   domain.RecipeSignature(m.Signature),
		RecipeName:  m.RecipeName,
		Ingredients: ingredients,
		SavedAt:     m.SavedAt,
		Steps:       make([]domain.CookingStep, 0, len(m.Steps)),
	}
	for _, sm := range m.Steps {
		used, err := decodeList(sm.IngredientsUsed)
		if err != nil {
			return nil, fmt.Errorf("decoding step %d of %s: %w", sm.Position, m.Signature, err)
		}
		fav.Steps = append(fav.Steps, domain.CookingStep{
			Number:          sm.Number,
			Description:     sm.Description,
			IngredientsUsed: used,
			TimeMinutes:     sm.TimeMinutes,
		})
	}
	return fav, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// withRetry retries fn while SQLite reports the database as busy or locked.
func withRetry(fn func() error, maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
			continue
		}

		return err
	}
	return fmt.Errorf("operation failed after %d retries: %w", maxRetries, err)
}
