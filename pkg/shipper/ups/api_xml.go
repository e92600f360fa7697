package ups

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	productionURL = "https://onlinetools.ups.com"
	sandboxURL    = "https://wwwcie.ups.com"

	maxResponseSize = 10 << 20
)

// XMLAPIClient is the production implementation of APIClient using the UPS
// XML tools endpoints.
type XMLAPIClient struct {
	baseURL    string
	access     AccessRequest
	httpClient *http.Client
}

// RequestTimeout bounds a single call to the UPS XML API.
const RequestTimeout = 30 * time.Second

// XMLAPIClientConfig holds configuration for the XML client.
type XMLAPIClientConfig struct {
	BaseURL    string
	Sandbox    bool
	LicenseKey string
	UserID     string
	Password   string
	Timeout    time.Duration
}

// NewXMLAPIClient creates a new XML API client for production use.
func NewXMLAPIClient(cfg XMLAPIClientConfig) *XMLAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = RequestTimeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = productionURL
		if cfg.Sandbox {
			baseURL = sandboxURL
		}
	}

	return &XMLAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		access: AccessRequest{
			AccessLicenseNumber: cfg.LicenseKey,
			UserID:              cfg.UserID,
			Password:            cfg.Password,
		},
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Rate fetches shipping rates from the Rating service.
func (c *XMLAPIClient) Rate(ctx context.Context, req *RatingRequest) (*RatingResponse, error) {
	var resp RatingResponse
	if err := c.do(ctx, "Rate", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Response.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Confirm validates a shipment with the Shipping service.
func (c *XMLAPIClient) Confirm(ctx context.Context, req *ShipmentConfirmRequest) (*ShipmentConfirmResponse, error) {
	var resp ShipmentConfirmResponse
	if err := c.do(ctx, "ShipConfirm", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Response.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Accept books a confirmed shipment with the Shipping service.
func (c *XMLAPIClient) Accept(ctx context.Context, req *ShipmentAcceptRequest) (*ShipmentAcceptResponse, error) {
	var resp ShipmentAcceptResponse
	if err := c.do(ctx, "ShipAccept", req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Response.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ============================================================================
// HTTP helpers
// ============================================================================

func (c *XMLAPIClient) do(ctx context.Context, tool string, doc, out any) error {
	body, err := c.buildBody(doc)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(tool), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			Code:        fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Description: strings.TrimSpace(string(data)),
			StatusCode:  resp.StatusCode,
		}
	}

	if err := xml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", tool, err)
	}
	return nil
}

// buildBody concatenates the access request and the request document, each
// with its own XML declaration, as the XML tools expect.
func (c *XMLAPIClient) buildBody(doc any) ([]byte, error) {
	var buf bytes.Buffer
	for _, part := range []any{c.access, doc} {
		buf.WriteString(xml.Header)
		enc := xml.NewEncoder(&buf)
		if err := enc.Encode(part); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (c *XMLAPIClient) endpoint(tool string) string {
	return c.baseURL + "/ups.app/xml/" + tool
}

var _ APIClient = (*XMLAPIClient)(nil)
