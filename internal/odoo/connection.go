package odoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/config"
	"github.com/giantswarm/mcp-odoo/internal/domain"
	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

// defaultDatabase is picked when several databases exist and none is configured.
const defaultDatabase = "odoo"

// ErrPermissionEndpointsUnavailable is returned by EnabledModels and
// ModelAccess when the connection authenticates with a password; the REST
// permission endpoints require an API key. Without any credentials they
// return an *api.AuthenticationError instead.
var ErrPermissionEndpointsUnavailable = errors.New("permission endpoints require API key authentication")

func errNoCredentials() error {
	return &api.AuthenticationError{Message: "no credentials configured: set ODOO_API_KEY or ODOO_USER and ODOO_PASSWORD"}
}

// permissionEndpointsError reports why the REST permission endpoints cannot
// be used, or nil when they can.
func (c *Connection) permissionEndpointsError() error {
	switch c.cfg.AuthMethod() {
	case config.AuthNone:
		return errNoCredentials()
	case config.AuthAPIKey:
		return nil
	default:
		return ErrPermissionEndpointsUnavailable
	}
}

type fieldsEntry struct {
	fields  Fields
	expires time.Time
}

// Option configures a Connection.
type Option func(*Connection)

// WithCaller replaces the XML-RPC caller.
func WithCaller(caller Caller) Option {
	return func(c *Connection) {
		c.caller = caller
	}
}

// WithTransport sets the HTTP transport used for both XML-RPC and REST calls.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Connection) {
		c.transport = transport
	}
}

// WithClock replaces time.Now for session idle and cache expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Connection) {
		c.now = now
	}
}

// Connection is the single owned handle to the backend. It is safe for
// concurrent use; calls are serialized.
type Connection struct {
	cfg       *config.Config
	caller    Caller
	transport http.RoundTripper
	rest      *restClient
	sanitizer *Sanitizer
	now       func() time.Time

	mu      sync.Mutex
	session *Session
	fields  map[string]fieldsEntry
	closed  bool
}

// NewConnection creates a Connection. No network traffic happens until the
// first call or an explicit Authenticate.
func NewConnection(cfg *config.Config, opts ...Option) *Connection {
	c := &Connection{
		cfg:       cfg,
		sanitizer: NewSanitizer(cfg.Secrets()...),
		now:       time.Now,
		fields:    make(map[string]fieldsEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.caller == nil {
		c.caller = NewXMLRPCCaller(cfg.URL, c.transport)
	}
	c.rest = newRESTClient(cfg.URL, cfg.APIKey, c.transport, c.sanitizer)
	return c
}

// Sanitizer returns the sanitizer configured with this connection's secrets.
func (c *Connection) Sanitizer() *Sanitizer {
	return c.sanitizer
}

// Session returns a copy of the current session, or nil before
// authentication.
func (c *Connection) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	s.secret = ""
	return &s
}

// Authenticate discards any current session and authenticates again.
func (c *Connection) Authenticate(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = nil
	sess, err := c.authenticateLocked(ctx)
	if err != nil {
		return nil, err
	}
	s := *sess
	s.secret = ""
	return &s, nil
}

// Close tears down the session. Later calls fail with a ConnectionError.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		logging.Info("Connection", "Closing session for user %d on %s", c.session.UserID, c.session.Database)
	}
	c.session = nil
	c.closed = true
	c.fields = make(map[string]fieldsEntry)
	return nil
}

func (c *Connection) authenticateLocked(ctx context.Context) (*Session, error) {
	if c.closed {
		return nil, &api.ConnectionError{Op: "authenticate", Err: errors.New("connection closed")}
	}

	method := c.cfg.AuthMethod()
	if method == config.AuthNone {
		return nil, errNoCredentials()
	}

	db, err := c.resolveDatabaseLocked(ctx)
	if err != nil {
		return nil, err
	}

	var sess *Session
	if method == config.AuthAPIKey {
		sess, err = c.authenticateAPIKeyLocked(ctx, db)
		if err != nil && api.IsAuthenticationError(err) && c.cfg.UsesCredentials() {
			logging.Warn("Connection", "API key authentication failed, falling back to username/password")
			sess, err = c.authenticatePasswordLocked(ctx, db)
		}
	} else {
		sess, err = c.authenticatePasswordLocked(ctx, db)
	}
	if err != nil {
		return nil, err
	}

	c.session = sess
	logging.Info("Connection", "Authenticated as user %d on database %s using %s", sess.UserID, sess.Database, sess.Method)
	return sess, nil
}

func (c *Connection) authenticateAPIKeyLocked(ctx context.Context, db string) (*Session, error) {
	var uid int
	err := c.restCall(ctx, "authenticate", func(ctx context.Context) error {
		var err error
		uid, err = c.rest.validateAPIKey(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := c.now()
	return &Session{
		UserID:      uid,
		Database:    db,
		Method:      config.AuthAPIKey,
		Established: now,
		LastUsed:    now,
		secret:      c.cfg.APIKey,
	}, nil
}

func (c *Connection) authenticatePasswordLocked(ctx context.Context, db string) (*Session, error) {
	reply, err := c.call(ctx, ServiceCommon, "authenticate", "", []interface{}{
		db, c.cfg.Username, c.cfg.Password, map[string]interface{}{},
	})
	if err != nil {
		if api.IsPermissionError(err) || api.IsValidationError(err) {
			return nil, &api.AuthenticationError{Message: "invalid username or password"}
		}
		return nil, err
	}

	uid, ok := toInt(reply)
	if !ok || uid <= 0 {
		return nil, &api.AuthenticationError{Message: "invalid username or password"}
	}

	now := c.now()
	return &Session{
		UserID:      uid,
		Database:    db,
		Method:      config.AuthPassword,
		Established: now,
		LastUsed:    now,
		secret:      c.cfg.Password,
	}, nil
}

// resolveDatabaseLocked returns the configured database or discovers one:
// the only database, else one named "odoo".
func (c *Connection) resolveDatabaseLocked(ctx context.Context) (string, error) {
	if c.cfg.Database != "" {
		return c.cfg.Database, nil
	}

	databases, err := c.listDatabasesLocked(ctx)
	if err != nil {
		if api.IsTimeoutError(err) {
			return "", err
		}
		return "", &api.ConnectionError{
			Op:  "database discovery",
			Err: fmt.Errorf("could not list databases, set ODOO_DB explicitly: %w", err),
		}
	}

	switch {
	case len(databases) == 0:
		return "", &api.ConnectionError{Op: "database discovery", Err: errors.New("no databases found on server")}
	case len(databases) == 1:
		logging.Info("Connection", "Auto-selected database %s", databases[0])
		return databases[0], nil
	}
	for _, db := range databases {
		if db == defaultDatabase {
			logging.Info("Connection", "Auto-selected database %s among %d", db, len(databases))
			return db, nil
		}
	}
	return "", &api.ConnectionError{
		Op:  "database discovery",
		Err: fmt.Errorf("multiple databases found (%d), set ODOO_DB to choose one", len(databases)),
	}
}

// ensureSessionLocked returns a usable session, authenticating when there is
// none and health-checking one that has been idle too long.
func (c *Connection) ensureSessionLocked(ctx context.Context) (*Session, error) {
	if c.closed {
		return nil, &api.ConnectionError{Op: "call", Err: errors.New("connection closed")}
	}
	if c.session == nil {
		return c.authenticateLocked(ctx)
	}

	if c.now().Sub(c.session.LastUsed) > c.cfg.HealthCheckInterval {
		if err := c.healthCheckLocked(ctx); err != nil {
			logging.Warn("Connection", "Health check failed, re-authenticating: %v", err)
			c.session = nil
			return c.authenticateLocked(ctx)
		}
		c.session.LastUsed = c.now()
	}
	return c.session, nil
}

// call performs one XML-RPC call under the configured timeout.
func (c *Connection) call(ctx context.Context, service, method, model string, args []interface{}) (interface{}, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if args == nil {
		args = []interface{}{}
	}
	reply, err := c.caller.Call(callCtx, service, method, args)
	if err != nil {
		return nil, c.classify(callCtx, service+"."+method, model, err)
	}
	return reply, nil
}

// restCall runs fn under the configured timeout.
func (c *Connection) restCall(ctx context.Context, op string, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	err := fn(callCtx)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &api.TimeoutError{Op: op, Timeout: c.cfg.Timeout}
	}
	return err
}

// execute runs model.method through execute_kw with one re-authentication
// and retry on transport failure or session expiry.
func (c *Connection) execute(ctx context.Context, model, method string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.ensureSessionLocked(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := c.executeOnce(ctx, sess, model, method, args, kwargs)
	if err == nil || !retryable(err) {
		return reply, err
	}

	logging.Warn("Connection", "%s.%s failed, re-authenticating and retrying once: %v", model, method, err)
	c.session = nil
	if sess, err = c.authenticateLocked(ctx); err != nil {
		return nil, err
	}
	return c.executeOnce(ctx, sess, model, method, args, kwargs)
}

func (c *Connection) executeOnce(ctx context.Context, sess *Session, model, method string, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	logging.Debug("Connection", "execute_kw %s.%s", model, method)

	reply, err := c.call(ctx, ServiceObject, "execute_kw", model, []interface{}{
		sess.Database, sess.UserID, sess.secret, model, method, args, kwargs,
	})
	if err != nil {
		var permErr *api.PermissionError
		if errors.As(err, &permErr) {
			permErr.Operation = method
		}
		return nil, err
	}
	sess.LastUsed = c.now()
	return reply, nil
}

// Search returns the ids of records matching d, in backend order.
func (c *Connection) Search(ctx context.Context, model string, d domain.Domain, opts SearchOptions) ([]int, error) {
	reply, err := c.execute(ctx, model, "search", []interface{}{d.Wire()}, searchKwargs(opts))
	if err != nil {
		return nil, err
	}
	return toIntSlice(reply), nil
}

// SearchCount returns the number of records matching d.
func (c *Connection) SearchCount(ctx context.Context, model string, d domain.Domain) (int, error) {
	reply, err := c.execute(ctx, model, "search_count", []interface{}{d.Wire()}, nil)
	if err != nil {
		return 0, err
	}
	n, ok := toInt(reply)
	if !ok {
		return 0, &api.ConnectionError{Op: "search_count", Err: fmt.Errorf("unexpected reply %T", reply)}
	}
	return n, nil
}

// Read returns the records for ids. Ids unknown to the backend are omitted.
// An empty fields list reads every field.
func (c *Connection) Read(ctx context.Context, model string, ids []int, fields []string) ([]Record, error) {
	if len(ids) == 0 {
		return []Record{}, nil
	}
	kwargs := map[string]interface{}{}
	if len(fields) > 0 {
		kwargs["fields"] = stringArgs(fields)
	}
	reply, err := c.execute(ctx, model, "read", []interface{}{toIntArgs(ids)}, kwargs)
	if err != nil {
		return nil, err
	}
	return toRecords(reply), nil
}

// SearchRead combines Search and Read in one backend call.
func (c *Connection) SearchRead(ctx context.Context, model string, d domain.Domain, fields []string, opts SearchOptions) ([]Record, error) {
	kwargs := searchKwargs(opts)
	if len(fields) > 0 {
		kwargs["fields"] = stringArgs(fields)
	}
	reply, err := c.execute(ctx, model, "search_read", []interface{}{d.Wire()}, kwargs)
	if err != nil {
		return nil, err
	}
	return toRecords(reply), nil
}

// FieldsGet returns the schema of model, cached for the configured TTL.
func (c *Connection) FieldsGet(ctx context.Context, model string) (Fields, error) {
	c.mu.Lock()
	entry, ok := c.fields[model]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expires) {
		return entry.fields, nil
	}

	reply, err := c.execute(ctx, model, "fields_get", []interface{}{}, nil)
	if err != nil {
		return nil, err
	}
	fields := parseFields(reply)

	c.mu.Lock()
	c.fields[model] = fieldsEntry{fields: fields, expires: c.now().Add(c.cfg.FieldsCacheTTL)}
	c.mu.Unlock()
	return fields, nil
}

// InvalidateFields drops the cached schema of every model.
func (c *Connection) InvalidateFields() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = make(map[string]fieldsEntry)
}

// Create inserts a record and returns its id.
func (c *Connection) Create(ctx context.Context, model string, values map[string]interface{}) (int, error) {
	reply, err := c.execute(ctx, model, "create", []interface{}{values}, nil)
	if err != nil {
		return 0, err
	}
	if ids := toIntSlice(reply); len(ids) > 0 {
		return ids[0], nil
	}
	id, ok := toInt(reply)
	if !ok {
		return 0, &api.ConnectionError{Op: "create", Err: fmt.Errorf("unexpected reply %T", reply)}
	}
	return id, nil
}

// Write updates the records ids with values.
func (c *Connection) Write(ctx context.Context, model string, ids []int, values map[string]interface{}) (bool, error) {
	reply, err := c.execute(ctx, model, "write", []interface{}{toIntArgs(ids), values}, nil)
	if err != nil {
		return false, err
	}
	return toBool(reply), nil
}

// Unlink deletes the records ids.
func (c *Connection) Unlink(ctx context.Context, model string, ids []int) (bool, error) {
	reply, err := c.execute(ctx, model, "unlink", []interface{}{toIntArgs(ids)}, nil)
	if err != nil {
		return false, err
	}
	return toBool(reply), nil
}

// HealthCheck calls common.version. It needs no session.
func (c *Connection) HealthCheck(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthCheckLocked(ctx)
}

func (c *Connection) healthCheckLocked(ctx context.Context) error {
	_, err := c.call(ctx, ServiceCommon, "version", "", nil)
	return err
}

// ServerVersion returns the backend's version information.
func (c *Connection) ServerVersion(ctx context.Context) (*VersionInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reply, err := c.call(ctx, ServiceCommon, "version", "", nil)
	if err != nil {
		return nil, err
	}
	m, _ := reply.(map[string]interface{})
	info := &VersionInfo{
		ServerVersion: toString(m["server_version"]),
		ServerSerie:   toString(m["server_serie"]),
	}
	info.ProtocolVersion, _ = toInt(m["protocol_version"])
	return info, nil
}

// ListDatabases returns the databases the server exposes, sorted.
func (c *Connection) ListDatabases(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listDatabasesLocked(ctx)
}

func (c *Connection) listDatabasesLocked(ctx context.Context) ([]string, error) {
	reply, err := c.call(ctx, ServiceDB, "list", "", nil)
	if err != nil {
		return nil, err
	}
	items, _ := reply.([]interface{})
	databases := make([]string, 0, len(items))
	for _, item := range items {
		if name := toString(item); name != "" {
			databases = append(databases, name)
		}
	}
	sort.Strings(databases)
	return databases, nil
}

// EnabledModels returns the models the backend exposes over MCP.
func (c *Connection) EnabledModels(ctx context.Context) ([]ModelInfo, error) {
	if err := c.permissionEndpointsError(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var models []ModelInfo
	err := c.restCall(ctx, "list models", func(ctx context.Context) error {
		var err error
		models, err = c.rest.enabledModels(ctx)
		return err
	})
	return models, err
}

// ModelAccess returns the backend's permissions for model.
func (c *Connection) ModelAccess(ctx context.Context, model string) (*ModelAccess, error) {
	if err := c.permissionEndpointsError(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var access *ModelAccess
	err := c.restCall(ctx, "model access", func(ctx context.Context) error {
		var err error
		access, err = c.rest.modelAccess(ctx, model)
		return err
	})
	return access, err
}

func searchKwargs(opts SearchOptions) map[string]interface{} {
	kwargs := map[string]interface{}{}
	if opts.Limit > 0 {
		kwargs["limit"] = opts.Limit
	}
	if opts.Offset > 0 {
		kwargs["offset"] = opts.Offset
	}
	if opts.Order != "" {
		kwargs["order"] = opts.Order
	}
	return kwargs
}

func stringArgs(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
