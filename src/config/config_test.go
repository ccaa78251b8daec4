package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8888", cfg.HTTPAddr)
	assert.Equal(t, "shops", cfg.ElasticIndex)
	assert.Equal(t, "./src/templates/schema.json", cfg.SchemaPath)
	assert.Equal(t, "./src/templates/template.html", cfg.TemplatePath)
	assert.Equal(t, 4.0, cfg.DefaultRadiusKm)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTML_TEMPLATE", "/etc/shopfinder/shops.html")
	t.Setenv("ELASTIC_SCHEMA", "/etc/shopfinder/schema.json")
	t.Setenv("DEFAULT_RADIUS_KM", "2.5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/etc/shopfinder/shops.html", cfg.TemplatePath)
	assert.Equal(t, "/etc/shopfinder/schema.json", cfg.SchemaPath)
	assert.Equal(t, 2.5, cfg.DefaultRadiusKm)
}
