package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/internal/config"
	"github.com/tournevent/ups/pkg/shipper/ups"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, 2*time.Minute, cfg.LabelLockTTL)
	assert.Equal(t, ups.UOMEnglish, cfg.UPSUOMSystem)
	assert.Empty(t, cfg.RedisAddr)
	assert.Nil(t, cfg.UPS().Services)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("UPS_LICENSE_KEY", "license")
	t.Setenv("UPS_SHIPPER_NUMBER", "A1B2C3")
	t.Setenv("UPS_NEGOTIATED_RATES", "true")
	t.Setenv("UPS_UOM_SYSTEM", "00")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("LABEL_LOCK_TTL", "30s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.LabelLockTTL)

	upsCfg := cfg.UPS()
	assert.Equal(t, "license", upsCfg.LicenseKey)
	assert.Equal(t, "A1B2C3", upsCfg.ShipperNumber)
	assert.True(t, upsCfg.NegotiatedRates)
	assert.Equal(t, "kg", upsCfg.WeightUnit())
}

func TestLoad_ServiceTable(t *testing.T) {
	t.Setenv("UPS_SERVICES", "03:Ground,12:3 Day Select")

	cfg, err := config.Load()
	require.NoError(t, err)

	services := cfg.UPS().Services
	assert.Equal(t, ups.ServiceTable{"03": "Ground", "12": "3 Day Select"}, services)
	assert.Equal(t, []string{"03", "12"}, services.Codes())

	name, ok := services.Name("12")
	assert.True(t, ok)
	assert.Equal(t, "3 Day Select", name)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestConfig_Attributes(t *testing.T) {
	cfg := &config.Config{ServiceName: "svc", Version: "1.0.0", UPSEnabled: true, StoreDriver: "sqlite"}

	attrs := cfg.Attributes()
	require.Len(t, attrs, 5)
	assert.Equal(t, "service.name", string(attrs[0].Key))
	assert.Equal(t, "svc", attrs[0].Value.AsString())
}
