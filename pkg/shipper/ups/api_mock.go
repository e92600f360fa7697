package ups

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnRate    func(ctx context.Context, req *RatingRequest) (*RatingResponse, error)
	OnConfirm func(ctx context.Context, req *ShipmentConfirmRequest) (*ShipmentConfirmResponse, error)
	OnAccept  func(ctx context.Context, req *ShipmentAcceptRequest) (*ShipmentAcceptResponse, error)

	mu       sync.Mutex
	rates    []*RatingRequest
	confirms []*ShipmentConfirmRequest
	accepts  []*ShipmentAcceptRequest
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// Rate returns mock rated shipments.
func (m *MockAPIClient) Rate(ctx context.Context, req *RatingRequest) (*RatingResponse, error) {
	m.mu.Lock()
	m.rates = append(m.rates, req)
	m.mu.Unlock()

	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnRate != nil {
		return m.OnRate(ctx, req)
	}

	if req.Shipment.Service != nil {
		return &RatingResponse{
			Response: Response{ResponseStatusCode: "1"},
			RatedShipments: []RatedShipment{
				mockRatedShipment(req.Shipment.Service.Code, "15.50", "2"),
			},
		}, nil
	}

	return &RatingResponse{
		Response: Response{ResponseStatusCode: "1"},
		RatedShipments: []RatedShipment{
			mockRatedShipment("03", "15.50", ""),
			mockRatedShipment("02", "32.10", "2"),
			mockRatedShipment("01", "58.75", "1"),
		},
	}, nil
}

// Confirm returns a mock confirmation.
func (m *MockAPIClient) Confirm(ctx context.Context, req *ShipmentConfirmRequest) (*ShipmentConfirmResponse, error) {
	m.mu.Lock()
	m.confirms = append(m.confirms, req)
	m.mu.Unlock()

	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnConfirm != nil {
		return m.OnConfirm(ctx, req)
	}

	return &ShipmentConfirmResponse{
		Response: Response{ResponseStatusCode: "1"},
		ShipmentCharges: ShipmentCharges{
			TotalCharges: MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "15.50"},
		},
		ShipmentIdentificationNumber: "1Z" + mockID(),
		ShipmentDigest:               "digest-" + uuid.New().String(),
	}, nil
}

// Accept returns a mock booked shipment with a single package.
func (m *MockAPIClient) Accept(ctx context.Context, req *ShipmentAcceptRequest) (*ShipmentAcceptResponse, error) {
	m.mu.Lock()
	m.accepts = append(m.accepts, req)
	m.mu.Unlock()

	if err := m.simulate(); err != nil {
		return nil, err
	}

	if m.OnAccept != nil {
		return m.OnAccept(ctx, req)
	}

	id := mockID()
	return &ShipmentAcceptResponse{
		Response: Response{ResponseStatusCode: "1"},
		ShipmentResults: ShipmentResults{
			ShipmentCharges: ShipmentCharges{
				TotalCharges: MonetaryAmount{CurrencyCode: "USD", MonetaryValue: "15.50"},
			},
			ShipmentIdentificationNumber: "1Z" + id,
			PackageResults: []PackageResult{
				{
					TrackingNumber: "1Z" + id + "01",
					LabelImage: LabelImage{
						LabelImageFormat: CodeDescription{Code: "GIF"},
						GraphicImage:     base64.StdEncoding.EncodeToString([]byte("GIF89a mock label")),
					},
				},
			},
		},
	}, nil
}

// RateRequests returns the rating requests received so far.
func (m *MockAPIClient) RateRequests() []*RatingRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*RatingRequest(nil), m.rates...)
}

// ConfirmRequests returns the confirm requests received so far.
func (m *MockAPIClient) ConfirmRequests() []*ShipmentConfirmRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*ShipmentConfirmRequest(nil), m.confirms...)
}

// AcceptRequests returns the accept requests received so far.
func (m *MockAPIClient) AcceptRequests() []*ShipmentAcceptRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*ShipmentAcceptRequest(nil), m.accepts...)
}

// Calls returns the total number of requests received.
func (m *MockAPIClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rates) + len(m.confirms) + len(m.accepts)
}

func (m *MockAPIClient) simulate() error {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.SimulateErrors {
		return &APIError{Code: "MOCK_ERROR", Description: "Simulated API error"}
	}
	return nil
}

func mockRatedShipment(code, amount, days string) RatedShipment {
	return RatedShipment{
		Service:                  CodeDescription{Code: code},
		TotalCharges:             MonetaryAmount{CurrencyCode: "USD", MonetaryValue: amount},
		GuaranteedDaysToDelivery: days,
	}
}

func mockID() string {
	return uuid.New().String()[:8]
}

var _ APIClient = (*MockAPIClient)(nil)
