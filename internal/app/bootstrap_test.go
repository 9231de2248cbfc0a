package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/config"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(true, "/etc/mcp-odoo.yaml", "streamable-http", "1.2.3")

	assert.True(t, cfg.Debug)
	assert.Equal(t, "/etc/mcp-odoo.yaml", cfg.ConfigPath)
	assert.Equal(t, "streamable-http", cfg.Transport)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Nil(t, cfg.Odoo)
}

func TestNewApplication_PresetConfig(t *testing.T) {
	srv := newBackend(t)

	application, err := NewApplication(quietConfig(odooConfig(srv)))
	require.NoError(t, err)

	services := application.Services()
	require.NotNil(t, services)
	assert.NotNil(t, services.Connection)
	assert.NotNil(t, services.Controller)
	assert.NotNil(t, services.Provider)
	assert.NotNil(t, services.Server)
	assert.Nil(t, services.PolicyWatcher)
	assert.Equal(t, config.TransportStdio, services.Config.Transport)

	tools := services.Provider.GetTools()
	assert.Len(t, tools, 6)
}

func TestNewApplication_TransportOverride(t *testing.T) {
	srv := newBackend(t)

	cfg := quietConfig(odooConfig(srv))
	cfg.Transport = string(config.TransportStreamableHTTP)
	application, err := NewApplication(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.TransportStreamableHTTP, application.Services().Config.Transport)

	cfg = quietConfig(odooConfig(srv))
	cfg.Transport = "carrier-pigeon"
	_, err = NewApplication(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ODOO_MCP_TRANSPORT")
}

func TestNewApplication_DebugLogging(t *testing.T) {
	srv := newBackend(t)

	var logs bytes.Buffer
	cfg := quietConfig(odooConfig(srv))
	cfg.Debug = true
	cfg.LogOutput = &logs

	_, err := NewApplication(cfg)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), srv.URL)
}

func TestNewApplication_MissingCredentials(t *testing.T) {
	path := writeFile(t, "config.yaml", "url: http://127.0.0.1:1\n")

	cfg := NewConfig(false, path, "", "test")
	cfg.LogOutput = &bytes.Buffer{}
	application, err := NewApplication(cfg)
	require.NoError(t, err, "missing credentials must not prevent startup")

	_, err = application.Services().Connection.Authenticate(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthenticationError(err))
}

func TestNewApplication_InvalidConfigFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "url: [unterminated\n")

	cfg := NewConfig(false, path, "", "test")
	cfg.LogOutput = &bytes.Buffer{}
	_, err := NewApplication(cfg)
	require.Error(t, err)
}

func TestNewApplication_PolicyFile(t *testing.T) {
	srv := newBackend(t)

	odooCfg := odooConfig(srv)
	odooCfg.PolicyFile = writeFile(t, "policy.yaml", "models:\n  res.country: [read]\n")

	application, err := NewApplication(quietConfig(odooCfg))
	require.NoError(t, err)
	require.NotNil(t, application.Services().PolicyWatcher)

	models, err := application.Services().Controller.EnabledModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "res.country", models[0].Model)
	assert.True(t, models[0].Allows(api.OperationRead))
	assert.False(t, models[0].Allows(api.OperationWrite))
}

func TestNewApplication_InvalidPolicyFile(t *testing.T) {
	srv := newBackend(t)

	odooCfg := odooConfig(srv)
	odooCfg.PolicyFile = writeFile(t, "policy.yaml", "models:\n  res.country: [destroy]\n")

	_, err := NewApplication(quietConfig(odooCfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "destroy")
}
