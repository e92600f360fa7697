// Package mongostore implements the label store on MongoDB. A shipment's
// label and its attachments live in one document, so a single insert is
// atomic.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tournevent/ups/internal/store"
	"github.com/tournevent/ups/pkg/shipper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionLabels = "shipment_labels"
	defaultTimeout   = 10 * time.Second
)

// Config captures the settings required to reach MongoDB.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Store is the MongoDB implementation of store.Store.
type Store struct {
	client *mongo.Client
	col    *mongo.Collection
}

// Connect establishes a client and verifies connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Store{
		client: client,
		col:    client.Database(cfg.Database).Collection(collectionLabels),
	}, nil
}

type labelDocument struct {
	ShipmentID                   string               `bson:"_id"`
	Carrier                      string               `bson:"carrier"`
	TrackingNumber               string               `bson:"tracking_number"`
	ShipmentIdentificationNumber string               `bson:"shipment_identification_number"`
	Cost                         string               `bson:"cost"`
	Currency                     string               `bson:"currency"`
	CreatedAt                    time.Time            `bson:"created_at"`
	Attachments                  []attachmentDocument `bson:"attachments"`
}

type attachmentDocument struct {
	ID          string    `bson:"id"`
	Name        string    `bson:"name"`
	ContentType string    `bson:"content_type"`
	Data        []byte    `bson:"data"`
	CreatedAt   time.Time `bson:"created_at"`
}

func toDocument(rec store.LabelRecord, att store.Attachment) labelDocument {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	return labelDocument{
		ShipmentID:                   rec.ShipmentID,
		Carrier:                      rec.Carrier,
		TrackingNumber:               rec.TrackingNumber,
		ShipmentIdentificationNumber: rec.ShipmentIdentificationNumber,
		Cost:                         rec.Cost.String(),
		Currency:                     rec.Currency,
		CreatedAt:                    rec.CreatedAt,
		Attachments: []attachmentDocument{{
			ID:          att.ID,
			Name:        att.Name,
			ContentType: att.ContentType,
			Data:        att.Data,
			CreatedAt:   att.CreatedAt,
		}},
	}
}

func (d labelDocument) record() (*store.LabelRecord, error) {
	cost, err := decimal.NewFromString(d.Cost)
	if err != nil {
		return nil, fmt.Errorf("label %s: invalid cost %q: %w", d.ShipmentID, d.Cost, err)
	}
	return &store.LabelRecord{
		ShipmentID:                   d.ShipmentID,
		Carrier:                      d.Carrier,
		TrackingNumber:               d.TrackingNumber,
		ShipmentIdentificationNumber: d.ShipmentIdentificationNumber,
		Cost:                         cost,
		Currency:                     d.Currency,
		CreatedAt:                    d.CreatedAt,
	}, nil
}

func (d labelDocument) attachments() []store.Attachment {
	result := make([]store.Attachment, len(d.Attachments))
	for i, a := range d.Attachments {
		result[i] = store.Attachment{
			ID:          a.ID,
			ShipmentID:  d.ShipmentID,
			Name:        a.Name,
			ContentType: a.ContentType,
			Data:        a.Data,
			CreatedAt:   a.CreatedAt,
		}
	}
	return result
}

// Migrate creates the tracking number index.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tracking_number", Value: 1}},
	})
	return err
}

// Label returns the label of a shipment.
func (s *Store) Label(ctx context.Context, shipmentID string) (*store.LabelRecord, error) {
	doc, err := s.find(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	return doc.record()
}

// SaveLabel inserts the label document with its attachment. The shipment id
// is the document id, so a second label fails with a duplicate key error.
func (s *Store) SaveLabel(ctx context.Context, rec store.LabelRecord, att store.Attachment) error {
	insertCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.col.InsertOne(insertCtx, toDocument(rec, att))
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	existing, findErr := s.find(ctx, rec.ShipmentID)
	if findErr != nil {
		return findErr
	}
	return &shipper.DuplicateLabelError{ShipmentID: rec.ShipmentID, TrackingNumber: existing.TrackingNumber}
}

// Attachments returns the attachments of a shipment.
func (s *Store) Attachments(ctx context.Context, shipmentID string) ([]store.Attachment, error) {
	doc, err := s.find(ctx, shipmentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.attachments(), nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) find(ctx context.Context, shipmentID string) (*labelDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc labelDocument
	err := s.col.FindOne(ctx, bson.M{"_id": shipmentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

var _ store.Store = (*Store)(nil)
