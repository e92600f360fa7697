package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/internal/lock"
	"github.com/tournevent/ups/internal/server"
	"github.com/tournevent/ups/internal/shipping"
	"github.com/tournevent/ups/internal/store/sqlstore"
	"github.com/tournevent/ups/pkg/shipper"
	"github.com/tournevent/ups/pkg/shipper/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *ups.MockAPIClient) {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	api := ups.NewMockAPIClient()
	registry := shipper.NewRegistry()
	registry.Register(ups.NewWithAPIClient(ups.Config{
		LicenseKey:    "license",
		UserID:        "user",
		Password:      "secret",
		ShipperNumber: "A1B2C3",
	}, api, logger, nil))

	st, err := sqlstore.Open(sqlstore.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	svc := shipping.NewService(registry, st, lock.NewMemory(), logger, shipping.Options{
		DefaultPackageType: ups.DefaultPackageType,
		DefaultServiceCode: "03",
		LockTTL:            time.Minute,
	})

	srv := server.New(server.Config{Port: 8080, Registry: prometheus.NewRegistry()}, svc, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, api
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Path       []interface{}          `json:"path"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func postGraphQL(t *testing.T, url, query string, vars map[string]interface{}) (int, gqlResponse) {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": vars})
	require.NoError(t, err)

	resp, err := http.Post(url+"/graphql", "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out gqlResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func address(street, city, subdivision, zip, phone string) map[string]interface{} {
	return map[string]interface{}{
		"street":          street,
		"city":            city,
		"countryCode":     "US",
		"subdivisionCode": subdivision,
		"postalCode":      zip,
		"party":           map[string]interface{}{"name": "Openlabs Inc", "phone": phone},
	}
}

func shipmentVars() map[string]interface{} {
	return map[string]interface{}{
		"input": map[string]interface{}{
			"id":              "SHIP-1",
			"state":           "PACKED",
			"carrier":         "ups",
			"company":         map[string]interface{}{"name": "Openlabs Inc"},
			"warehouse":       address("100 Dock Rd", "Miami", "US-FL", "33101", "+1 305 555 0100"),
			"deliveryAddress": address("1 Market St", "San Francisco", "US-CA", "94105", ""),
			"moves": []interface{}{
				map[string]interface{}{
					"product":  map[string]interface{}{"name": "Mug", "weight": "2.3", "weightUnit": "lb"},
					"quantity": "1",
				},
			},
			"serviceCode": "03",
		},
	}
}

func TestServer_Health(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestServer_GraphQL_UnsupportedTransport(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/graphql")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out gqlResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "transport not supported", out.Errors[0].Message)
}

func TestServer_GraphQL_InvalidJSON(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/graphql", "application/json", strings.NewReader("invalid json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_GraphQL_HealthQuery(t *testing.T) {
	ts, _ := newTestServer(t)

	status, out := postGraphQL(t, ts.URL, `query { health }`, nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, out.Errors)
	assert.JSONEq(t, `"ok"`, string(out.Data["health"]))
}

func TestServer_GraphQL_InvalidQuery(t *testing.T) {
	ts, _ := newTestServer(t)

	status, out := postGraphQL(t, ts.URL, `query { nope }`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotEmpty(t, out.Errors)
	assert.Nil(t, out.Data)
}

func TestServer_GraphQL_GenerateLabel(t *testing.T) {
	ts, api := newTestServer(t)
	const mutation = `mutation Label($input: ShipmentInput!) {
		generateShippingLabel(input: $input) {
			trackingNumber
			cost { amount currency }
			attachments { name contentType size }
		}
	}`

	status, out := postGraphQL(t, ts.URL, mutation, shipmentVars())
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, out.Errors)

	var label struct {
		TrackingNumber string `json:"trackingNumber"`
		Cost           struct {
			Amount   string `json:"amount"`
			Currency string `json:"currency"`
		} `json:"cost"`
		Attachments []struct {
			Name        string `json:"name"`
			ContentType string `json:"contentType"`
			Size        int    `json:"size"`
		} `json:"attachments"`
	}
	require.NoError(t, json.Unmarshal(out.Data["generateShippingLabel"], &label))
	assert.True(t, strings.HasPrefix(label.TrackingNumber, "1Z"))
	assert.Equal(t, "15.50", label.Cost.Amount)
	assert.Equal(t, "USD", label.Cost.Currency)
	require.Len(t, label.Attachments, 1)
	assert.Equal(t, "image/gif", label.Attachments[0].ContentType)
	assert.Equal(t, len("GIF89a mock label"), label.Attachments[0].Size)

	calls := api.Calls()
	status, out = postGraphQL(t, ts.URL, mutation, shipmentVars())
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, out.Data)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "DUPLICATE_LABEL", out.Errors[0].Extensions["code"])
	assert.Equal(t, []interface{}{"generateShippingLabel"}, out.Errors[0].Path)
	assert.Equal(t, calls, api.Calls())
}

func TestServer_Metrics(t *testing.T) {
	ts, _ := newTestServer(t)
	postGraphQL(t, ts.URL, `query { carriers }`, nil)

	vars := shipmentVars()
	status, out := postGraphQL(t, ts.URL, `query Cost($input: ShipmentInput!) { estimateShipmentCost(input: $input) { amount } }`, vars)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, out.Errors)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ups_requests_total{carrier="ups",operation="estimateShipmentCost",status="success"} 1`)
}
