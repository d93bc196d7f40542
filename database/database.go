package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fleet-charging/config"
	"fleet-charging/models"
	"fleet-charging/repositories"
	"fleet-charging/repositories/interfaces"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger adapts slog to be used as a GORM logger.
type gormLogger struct {
	slogger *slog.Logger
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}
func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.slogger.InfoContext(ctx, msg, "gorm_data", data)
}
func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.slogger.WarnContext(ctx, msg, "gorm_data", data)
}
func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.slogger.ErrorContext(ctx, msg, "gorm_data", data)
}
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("latency", elapsed.String()),
		slog.String("sql", sql),
		slog.Int64("rows_affected", rows),
	}

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		attrs = append(attrs, slog.Any("error", err))
		l.slogger.LogAttrs(ctx, slog.LevelError, "GORM Trace", attrs...)
	} else {
		l.slogger.LogAttrs(ctx, slog.LevelDebug, "GORM Trace", attrs...)
	}
}

// Database holds the DB connection, all repository instances, and the
// UnitOfWork.
type Database struct {
	DB          *gorm.DB
	UoW         UnitOfWorkInterface
	RobotRepo   interfaces.RobotRepositoryInterface
	StationRepo interfaces.StationRepositoryInterface
	OrderRepo   interfaces.OrderRepositoryInterface
	UserRepo    interfaces.UserRepositoryInterface
}

// NewDatabase creates a new database connection and initializes repositories.
func NewDatabase(cfg *config.Config, appLogger *slog.Logger) (*Database, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	dbLogger := appLogger.With("component", "database")
	dbLogger.Info("Connecting to database...", "host", cfg.DBHost, "port", cfg.DBPort, "user", cfg.DBUser)

	newGormLogger := &gormLogger{slogger: dbLogger}
	gormConfig := &gorm.Config{
		Logger: newGormLogger.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	dbLogger.Info("Database connected successfully")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	dbLogger.Info("Database migration completed successfully")

	return Wrap(db), nil
}

// Migrate runs the schema migration for all fleet entities.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Station{},
		&models.Robot{},
		&models.ChargingOrder{},
		&models.User{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Wrap builds the repository set around an existing connection. Used directly
// by tests running against an in-memory store.
func Wrap(db *gorm.DB) *Database {
	return &Database{
		DB:          db,
		UoW:         NewUnitOfWork(db),
		RobotRepo:   repositories.NewRobotRepository(db),
		StationRepo: repositories.NewStationRepository(db),
		OrderRepo:   repositories.NewOrderRepository(db),
		UserRepo:    repositories.NewUserRepository(db),
	}
}

// Snapshot is one consistent view of robots, stations and orders for the
// analytics engine, taken inside a single read transaction to avoid temporal
// skew between the three entity sets.
type Snapshot struct {
	Robots   []models.Robot
	Stations []models.Station
	Orders   []models.ChargingOrder
}

func (d *Database) TakeSnapshot() (*Snapshot, error) {
	snap := &Snapshot{}
	err := d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id asc").Find(&snap.Robots).Error; err != nil {
			return err
		}
		if err := tx.Order("id asc").Find(&snap.Stations).Error; err != nil {
			return err
		}
		return tx.Order("start_time asc, id asc").Find(&snap.Orders).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to take snapshot: %w", err)
	}
	return snap, nil
}
