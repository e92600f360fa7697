// Package sqlstore implements the label store on top of gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tournevent/ups/internal/store"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is the gorm implementation of store.Store.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and instruments it with OpenTelemetry.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, fmt.Errorf("instrumenting database: %w", err)
	}

	if driver == DriverSQLite {
		// An in-memory database lives in a single connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return New(db), nil
}

// New wraps an existing gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the label and attachment tables.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&ShipmentLabelModel{}, &AttachmentModel{})
}

// Label returns the label of a shipment.
func (s *Store) Label(ctx context.Context, shipmentID string) (*store.LabelRecord, error) {
	var m ShipmentLabelModel
	if err := s.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// SaveLabel inserts the label row and the attachment in one transaction. The
// label insert is skipped on a primary key conflict, which turns the insert
// into a compare-and-set on "shipment has no tracking number".
func (s *Store) SaveLabel(ctx context.Context, rec store.LabelRecord, att store.Attachment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(labelFromDomain(rec))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing ShipmentLabelModel
			if err := tx.Where("shipment_id = ?", rec.ShipmentID).First(&existing).Error; err != nil {
				return err
			}
			return &shipper.DuplicateLabelError{ShipmentID: rec.ShipmentID, TrackingNumber: existing.TrackingNumber}
		}

		if att.ID == "" {
			att.ID = uuid.NewString()
		}
		att.ShipmentID = rec.ShipmentID
		return tx.Create(attachmentFromDomain(att)).Error
	})
}

// Attachments returns the attachments of a shipment.
func (s *Store) Attachments(ctx context.Context, shipmentID string) ([]store.Attachment, error) {
	var models []AttachmentModel
	err := s.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	result := make([]store.Attachment, len(models))
	for i := range models {
		result[i] = models[i].ToDomain()
	}
	return result, nil
}

// Close closes the database connection.
func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ store.Store = (*Store)(nil)
