package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tournevent/ups/internal/store"
)

// ShipmentLabelModel is the label row of a shipment. The shipment id is the
// primary key, so a shipment holds at most one label.
type ShipmentLabelModel struct {
	ShipmentID                   string          `gorm:"primaryKey;size:64"`
	Carrier                      string          `gorm:"size:32;not null"`
	TrackingNumber               string          `gorm:"size:64;not null;index"`
	ShipmentIdentificationNumber string          `gorm:"size:64"`
	Cost                         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency                     string          `gorm:"size:3;not null"`
	CreatedAt                    time.Time
}

// TableName returns the table name.
func (ShipmentLabelModel) TableName() string {
	return "shipment_labels"
}

// ToDomain converts the model to a store record.
func (m *ShipmentLabelModel) ToDomain() *store.LabelRecord {
	return &store.LabelRecord{
		ShipmentID:                   m.ShipmentID,
		Carrier:                      m.Carrier,
		TrackingNumber:               m.TrackingNumber,
		ShipmentIdentificationNumber: m.ShipmentIdentificationNumber,
		Cost:                         m.Cost,
		Currency:                     m.Currency,
		CreatedAt:                    m.CreatedAt,
	}
}

func labelFromDomain(r store.LabelRecord) *ShipmentLabelModel {
	return &ShipmentLabelModel{
		ShipmentID:                   r.ShipmentID,
		Carrier:                      r.Carrier,
		TrackingNumber:               r.TrackingNumber,
		ShipmentIdentificationNumber: r.ShipmentIdentificationNumber,
		Cost:                         r.Cost,
		Currency:                     r.Currency,
		CreatedAt:                    r.CreatedAt,
	}
}

// AttachmentModel is a file attached to a shipment.
type AttachmentModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	ShipmentID  string `gorm:"size:64;not null;index"`
	Name        string `gorm:"size:255;not null"`
	ContentType string `gorm:"size:100"`
	Data        []byte
	CreatedAt   time.Time
}

// TableName returns the table name.
func (AttachmentModel) TableName() string {
	return "shipment_attachments"
}

// ToDomain converts the model to a store attachment.
func (m *AttachmentModel) ToDomain() store.Attachment {
	return store.Attachment{
		ID:          m.ID,
		ShipmentID:  m.ShipmentID,
		Name:        m.Name,
		ContentType: m.ContentType,
		Data:        m.Data,
		CreatedAt:   m.CreatedAt,
	}
}

func attachmentFromDomain(a store.Attachment) *AttachmentModel {
	return &AttachmentModel{
		ID:          a.ID,
		ShipmentID:  a.ShipmentID,
		Name:        a.Name,
		ContentType: a.ContentType,
		Data:        a.Data,
		CreatedAt:   a.CreatedAt,
	}
}
