// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cryptothud/solana-next-typescript-starter/internal/storage"
	"github.com/cryptothud/solana-next-typescript-starter/internal/storage/models"
)

const migrationLockID = 101

// gormLogger направляет логи GORM в zap
type gormLogger struct {
	zapLogger     *zap.Logger
	logLevel      logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(zapLogger *zap.Logger, level logger.LogLevel) logger.Interface {
	return &gormLogger{
		zapLogger:     zapLogger,
		logLevel:      level,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.zapLogger.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.zapLogger.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.zapLogger.Sugar().Errorf(msg, data...)
	}
}

// Trace пишет SQL: ошибки всегда (кроме not found), медленные запросы на Warn, остальное на Debug.
func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.logLevel >= logger.Error:
		l.zapLogger.Error("trace", append(fields, zap.Error(err))...)
	case elapsed > l.slowThreshold && l.logLevel >= logger.Warn:
		l.zapLogger.Warn("slow query", fields...)
	case l.logLevel >= logger.Info:
		l.zapLogger.Debug("trace", fields...)
	}
}

// Journal - журнал транзакций в Postgres.
type Journal struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ storage.Journal = (*Journal)(nil)

// Open подключается к базе. debug включает трассировку SQL.
func Open(dsn string, zapLogger *zap.Logger, debug bool) (*Journal, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(zapLogger.Named("gorm"), level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Journal{
		db:     db,
		logger: zapLogger.Named("journal"),
	}, nil
}

// RunMigrations выполняет AutoMigrate под advisory lock.
// Lock держится на сессии, поэтому lock, миграция и unlock идут через одно соединение пула.
func (j *Journal) RunMigrations(ctx context.Context) error {
	return j.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		var lockObtained bool
		if err := conn.Raw("SELECT pg_try_advisory_lock(?)", migrationLockID).Scan(&lockObtained).Error; err != nil {
			return fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		if !lockObtained {
			return fmt.Errorf("another migration is in progress")
		}
		defer func() {
			if err := conn.Exec("SELECT pg_advisory_unlock(?)", migrationLockID).Error; err != nil {
				j.logger.Warn("failed to release migration lock", zap.Error(err))
			}
		}()

		if err := conn.AutoMigrate(&models.Transaction{}); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		j.logger.Info("journal migrations applied")
		return nil
	})
}

func (j *Journal) Record(ctx context.Context, tx *models.Transaction) error {
	if err := j.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}

func (j *Journal) Get(ctx context.Context, correlationID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := j.db.WithContext(ctx).Where("correlation_id = ?", correlationID).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (j *Journal) List(ctx context.Context, walletAddress string, limit, offset int) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := j.db.WithContext(ctx).
		Where("wallet_address = ?", walletAddress).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	return txs, err
}

func (j *Journal) Count(ctx context.Context, walletAddress string) (int64, error) {
	var n int64
	err := j.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("wallet_address = ?", walletAddress).
		Count(&n).Error
	return n, err
}

// Close закрывает пул соединений.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
