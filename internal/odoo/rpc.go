package odoo

import (
	"context"
	"net/http"
	"strings"

	"github.com/kolo/xmlrpc"
)

// XML-RPC services exposed by the backend's MCP module.
const (
	ServiceDB     = "db"
	ServiceCommon = "common"
	ServiceObject = "object"

	xmlrpcPath = "/mcp/xmlrpc/"
)

// Caller performs a single XML-RPC call against one service endpoint.
// The reply is the decoded value: maps, []interface{}, int64, float64,
// string, bool or nil.
type Caller interface {
	Call(ctx context.Context, service, method string, args []interface{}) (interface{}, error)
}

// XMLRPCCaller is the Caller used in production.
type XMLRPCCaller struct {
	baseURL   string
	transport http.RoundTripper
}

// NewXMLRPCCaller returns a Caller for the backend at baseURL. A nil
// transport uses http.DefaultTransport.
func NewXMLRPCCaller(baseURL string, transport http.RoundTripper) *XMLRPCCaller {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &XMLRPCCaller{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
	}
}

// Endpoint returns the URL of service.
func (c *XMLRPCCaller) Endpoint(service string) string {
	return c.baseURL + xmlrpcPath + service
}

// Call implements Caller. A client is built per call so the request is bound
// to ctx; the xmlrpc package has no context support of its own.
func (c *XMLRPCCaller) Call(ctx context.Context, service, method string, args []interface{}) (interface{}, error) {
	client, err := xmlrpc.NewClient(c.Endpoint(service), &contextTransport{ctx: ctx, base: c.transport})
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var reply interface{}
	if err := client.Call(method, args, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// contextTransport attaches ctx to every request so deadlines and
// cancellation reach the underlying connection.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
