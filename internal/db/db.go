package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"exchangeapi/internal/config"
)

// ErrNotFound is returned by the stores when no row matches within the
// caller's scope.
var ErrNotFound = errors.New("record not found")

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
		// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
		PrepareStmt: true,
		Logger: gormlogger.New(
			log.New(io.Discard, "", log.LstdFlags),
			gormlogger.Config{LogLevel: gormlogger.Silent},
		),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Connect opens a GORM connection using APP_DATABASE_URL (PostgreSQL URL)
// and migrates the tables this service owns or reads.
func Connect(cfg config.StoreConfig) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	conn, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates the merchant, key and exchange tables.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&Merchant{}, &APIKey{}, &Exchange{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func Ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the pooled connections.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// EnsureBootstrapMerchant makes sure the development merchant from config
// exists with API access enabled and owns an active key matching the
// configured secret. Existing rows are left as-is apart from that key.
func EnsureBootstrapMerchant(conn *gorm.DB, cfg config.BootstrapConfig) error {
	if !cfg.Enabled() {
		return nil
	}

	id, err := uuid.Parse(cfg.MerchantID)
	if err != nil {
		return fmt.Errorf("APP_BOOTSTRAP_MERCHANT_ID must be a UUID: %w", err)
	}

	var count int64
	if err := conn.Model(&Merchant{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		merchant := &Merchant{
			ID:         id,
			Name:       cfg.Name,
			Email:      cfg.Email,
			APIEnabled: true,
		}
		if err := conn.Create(merchant).Error; err != nil {
			return err
		}
	}

	var keys []APIKey
	if err := conn.Where("merchant_id = ?", id).Find(&keys).Error; err != nil {
		return err
	}
	for _, k := range keys {
		if bcrypt.CompareHashAndPassword([]byte(k.KeyHash), []byte(cfg.Key)) == nil {
			if k.Active {
				return nil
			}
			return conn.Model(&k).Update("active", true).Error
		}
	}

	hash, err := HashAPIKey(cfg.Key)
	if err != nil {
		return err
	}
	key := &APIKey{
		MerchantID: id,
		Name:       "bootstrap",
		KeyPrefix:  DisplayPrefix(cfg.Key),
		KeyHash:    hash,
		Active:     true,
	}
	return conn.Create(key).Error
}
