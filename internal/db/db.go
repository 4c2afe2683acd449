package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/barbershop-admin/internal/auth"
	"github.com/BruksfildServices01/barbershop-admin/internal/config"
	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/models"
	"github.com/BruksfildServices01/barbershop-admin/internal/realtime"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
)

// NewDB connects, migrates and seeds. Any failure is fatal.
func NewDB(cfg *config.Config, log *logger.Logger) *gorm.DB {
	log = log.Named("db")

	db, err := Open(cfg.DBDriver, cfg.DBUrl, cfg.IsDevelopment())
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect database")
	}

	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	if cfg.DBDriver == "postgres" {
		if err := InstallTriggers(db); err != nil {
			log.Fatal().Err(err).Msg("failed to install change triggers")
		}
	}

	ctx := context.Background()
	if err := SeedSchedule(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed schedule")
	}
	if err := SeedAdmin(ctx, db, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")
	return db
}

// Open connects with the postgres driver or the pure-Go sqlite one.
func Open(driver, dsn string, verbose bool) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if verbose {
		gcfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if driver == "sqlite" {
		// one connection keeps an in-memory database alive and serialises writes
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.StaffUser{},
		&models.Barber{},
		&models.Service{},
		&models.GalleryImage{},
		&models.WeeklySchedule{},
		&models.Holiday{},
		&models.Appointment{},
		&models.AuditLog{},
	)
}

// InstallTriggers makes every synced table notify its changes.
func InstallTriggers(db *gorm.DB) error {
	for _, stmt := range realtime.TriggerStatements(store.SyncedTables...) {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedSchedule creates the seven weekdays once: Tuesday to Saturday open
// 09:00-18:00 with a lunch break, Sunday and Monday closed.
func SeedSchedule(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.WeeklySchedule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	days := make([]models.WeeklySchedule, 0, 7)
	for wd := 0; wd < 7; wd++ {
		day := models.WeeklySchedule{Weekday: wd}
		day.Version = 1
		if wd >= int(time.Tuesday) {
			day.Active = true
			day.OpenTime, day.CloseTime = "09:00", "18:00"
			day.BreakStart, day.BreakEnd = "12:00", "13:00"
		}
		days = append(days, day)
	}
	return db.WithContext(ctx).Create(&days).Error
}

// SeedAdmin creates the configured admin user when it does not exist.
func SeedAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var existing models.StaffUser
	err := db.WithContext(ctx).Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Create(&models.StaffUser{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		Active:       true,
	}).Error
}
