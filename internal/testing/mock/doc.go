// Package mock provides test doubles for the connector.
//
// OdooServer is an in-process fake of a backend with the MCP module
// installed. It speaks XML-RPC on /mcp/xmlrpc/{db,common,object} and serves
// the REST permission endpoints under /mcp/, backed by in-memory models and
// records. Every call is counted so tests can assert that a denied operation
// never reached the backend:
//
//	srv := mock.NewOdooServer()
//	defer srv.Close()
//	srv.AddModel("res.partner", "Contact", mock.PartnerFields(), mock.ReadOnly())
//	srv.AddRecord("res.partner", map[string]interface{}{"name": "Azure Interior"})
//	...
//	assert.Equal(t, 0, srv.Calls("res.partner.write"))
//
// MockClock is a manually advanced time source for TTL-driven code.
package mock
