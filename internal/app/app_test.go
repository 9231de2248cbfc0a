package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-odoo/internal/config"
	"github.com/giantswarm/mcp-odoo/internal/testing/mock"
)

func newBackend(t *testing.T) *mock.OdooServer {
	t.Helper()
	srv := mock.NewOdooServer()
	t.Cleanup(srv.Close)
	srv.AddModel("res.partner", "Contact", mock.PartnerFields(), mock.ReadOnly())
	srv.AddModel("res.country", "Country", map[string]map[string]interface{}{
		"name": {"type": "char", "string": "Country Name"},
	}, mock.FullAccess())
	srv.AddRecord("res.partner", map[string]interface{}{"name": "Azure Interior", "is_company": true})
	return srv
}

func odooConfig(srv *mock.OdooServer) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.URL = srv.URL
	cfg.APIKey = srv.APIKey
	return &cfg
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func quietConfig(odooCfg *config.Config) *Config {
	cfg := NewConfig(false, "", "", "test")
	cfg.Odoo = odooCfg
	cfg.LogOutput = &bytes.Buffer{}
	return cfg
}
