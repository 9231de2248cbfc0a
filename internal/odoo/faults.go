package odoo

import (
	"context"
	"errors"
	"net/rpc"
	"regexp"
	"strings"

	"github.com/kolo/xmlrpc"

	"github.com/giantswarm/mcp-odoo/internal/api"
)

// ErrSessionExpired is wrapped in the ConnectionError returned when the
// backend no longer accepts the current session.
var ErrSessionExpired = errors.New("session expired")

var faultPrefix = regexp.MustCompile(`^Fault\(-?\d+\):\s*`)

// backendFault is an unclassified server-side fault. It is reported as a
// ConnectionError but the transport worked, so it is not retried.
type backendFault struct {
	msg string
}

func (f *backendFault) Error() string { return f.msg }

// faultString extracts the fault text from err. The xmlrpc client reports
// faults either as FaultError or, through net/rpc, as a ServerError carrying
// the formatted fault.
func faultString(err error) (string, bool) {
	var fault xmlrpc.FaultError
	if errors.As(err, &fault) {
		return fault.String, true
	}
	var serverErr rpc.ServerError
	if errors.As(err, &serverErr) {
		return faultPrefix.ReplaceAllString(string(serverErr), ""), true
	}
	return "", false
}

// classify turns a failed call into one of the api error types.
func (c *Connection) classify(callCtx context.Context, op, model string, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &api.TimeoutError{Op: op, Timeout: c.cfg.Timeout}
	}
	if errors.Is(err, context.Canceled) {
		return &api.ConnectionError{Op: op, Err: context.Canceled}
	}
	if raw, ok := faultString(err); ok {
		return c.faultError(op, model, raw)
	}
	return &api.ConnectionError{Op: op, Err: errors.New(c.sanitizer.Redact(err.Error()))}
}

// faultError maps a backend fault onto the api error taxonomy.
func (c *Connection) faultError(op, model, raw string) error {
	msg := c.sanitizer.Fault(raw)

	switch {
	case strings.Contains(raw, "SessionExpired") || strings.Contains(raw, "Session expired"):
		return &api.ConnectionError{Op: op, Err: ErrSessionExpired}
	case strings.Contains(raw, "Access Denied") || strings.Contains(raw, "AccessDenied") || strings.Contains(raw, "AccessError"):
		return &api.PermissionError{Model: model, Operation: op, Reason: api.ReasonBackendDenied, Message: msg}
	case strings.Contains(raw, "MissingError"):
		return &api.NotFoundError{Model: model, Message: msg}
	case strings.Contains(raw, "Object does not exist") || strings.Contains(raw, "doesn't exist"):
		return &api.ValidationError{Field: "model", Message: msg}
	case strings.Contains(raw, "Invalid field"):
		field := ""
		if m := faultFieldPattern.FindStringSubmatch(raw); m != nil {
			field = m[1]
		}
		return &api.ValidationError{Field: field, Message: msg}
	case strings.Contains(raw, "ValidationError") || strings.Contains(raw, "UserError") ||
		strings.Contains(raw, "ValueError") || strings.Contains(raw, "IntegrityError"):
		return &api.ValidationError{Message: msg}
	default:
		return &api.ConnectionError{Op: op, Err: &backendFault{msg: msg}}
	}
}

// retryable reports whether err warrants dropping the session and trying
// again once. Timeouts and cancellations never do.
func retryable(err error) bool {
	var fault *backendFault
	return api.IsConnectionError(err) && !errors.Is(err, context.Canceled) && !errors.As(err, &fault)
}
