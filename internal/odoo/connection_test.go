package odoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kolo/xmlrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/config"
	"github.com/giantswarm/mcp-odoo/internal/domain"
	"github.com/giantswarm/mcp-odoo/internal/testing/mock"
)

const testPassword = "s3cret-password"

func passwordConfig() *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.URL = "http://odoo.test"
	cfg.Username = "admin"
	cfg.Password = testPassword
	return &cfg
}

func newStubConnection(t *testing.T, cfg *config.Config, opts ...Option) (*Connection, *stubCaller) {
	t.Helper()
	stub := newStubCaller()
	opts = append([]Option{WithCaller(stub)}, opts...)
	return NewConnection(cfg, opts...), stub
}

func fault(msg string) func([]interface{}) (interface{}, error) {
	return func([]interface{}) (interface{}, error) {
		return nil, xmlrpc.FaultError{Code: 1, String: msg}
	}
}

func TestConnection_PasswordAuthentication(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())

	sess, err := conn.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sess.UserID)
	assert.Equal(t, "odoo", sess.Database)
	assert.Equal(t, config.AuthPassword, sess.Method)

	call := stub.last("common.authenticate")
	require.Len(t, call.Args, 4)
	assert.Equal(t, "odoo", call.Args[0])
	assert.Equal(t, "admin", call.Args[1])
}

func TestConnection_PasswordRejected(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())
	stub.reply("common.authenticate", false)

	_, err := conn.Authenticate(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthenticationError(err))
	assert.NotContains(t, err.Error(), testPassword)
}

func TestConnection_MissingCredentials(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.URL = "http://odoo.test"
	conn, stub := newStubConnection(t, &cfg)

	_, err := conn.Search(context.Background(), "res.partner", nil, SearchOptions{})
	require.Error(t, err)
	assert.True(t, api.IsAuthenticationError(err))
	assert.Equal(t, 0, stub.count("res.partner.search"))
}

func TestConnection_DatabaseAutoSelection(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		available  []interface{}
		want       string
		wantErr    bool
	}{
		{name: "configured database wins", configured: "prod", available: []interface{}{"a", "b"}, want: "prod"},
		{name: "single database", available: []interface{}{"company"}, want: "company"},
		{name: "default among several", available: []interface{}{"demo", "odoo"}, want: "odoo"},
		{name: "ambiguous", available: []interface{}{"demo", "prod"}, wantErr: true},
		{name: "none", available: []interface{}{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := passwordConfig()
			cfg.Database = tt.configured
			conn, stub := newStubConnection(t, cfg)
			stub.reply("db.list", tt.available)

			sess, err := conn.Authenticate(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, api.IsConnectionError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sess.Database)
		})
	}
}

func TestConnection_SearchPassesOptions(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())
	stub.reply("res.partner.search", []interface{}{int64(7), int64(3)})

	d := domain.Domain{domain.Cond("is_company", "=", true)}
	ids, err := conn.Search(context.Background(), "res.partner", d, SearchOptions{Limit: 5, Offset: 10, Order: "name asc"})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3}, ids)

	call := stub.last("res.partner.search")
	require.Len(t, call.Args, 7)
	assert.Equal(t, testPassword, call.Args[2])
	kwargs := call.Args[6].(map[string]interface{})
	assert.Equal(t, 5, kwargs["limit"])
	assert.Equal(t, 10, kwargs["offset"])
	assert.Equal(t, "name asc", kwargs["order"])
}

func TestConnection_ReadEmptyIDsSkipsBackend(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())

	records, err := conn.Read(context.Background(), "res.partner", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, stub.count("res.partner.read"))
}

func TestConnection_RetriesOnceOnTransportError(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())
	attempts := 0
	stub.on("res.partner.search_count", func([]interface{}) (interface{}, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection reset by peer")
		}
		return int64(42), nil
	})

	n, err := conn.SearchCount(context.Background(), "res.partner", nil)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	assert.Equal(t, 2, stub.count("res.partner.search_count"))
	assert.Equal(t, 2, stub.count("common.authenticate"))
}

func TestConnection_GivesUpAfterOneRetry(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())
	stub.on("res.partner.search", func([]interface{}) (interface{}, error) {
		return nil, errors.New("connection refused")
	})

	_, err := conn.Search(context.Background(), "res.partner", nil, SearchOptions{})
	require.Error(t, err)
	assert.True(t, api.IsConnectionError(err))
	assert.Equal(t, 2, stub.count("res.partner.search"))
}

func TestConnection_NoRetryOnTimeout(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())
	stub.on("res.partner.search", func([]interface{}) (interface{}, error) {
		return nil, context.DeadlineExceeded
	})

	_, err := conn.Search(context.Background(), "res.partner", nil, SearchOptions{})
	require.Error(t, err)
	assert.True(t, api.IsTimeoutError(err))
	assert.Equal(t, 1, stub.count("res.partner.search"))
}

func TestConnection_SessionExpiredReauthenticates(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())
	expired := true
	stub.on("res.partner.read", func([]interface{}) (interface{}, error) {
		if expired {
			expired = false
			return nil, xmlrpc.FaultError{Code: 1, String: "odoo.http.SessionExpiredException: Session expired"}
		}
		return []interface{}{map[string]interface{}{"id": int64(1), "name": "Azure Interior"}}, nil
	})

	records, err := conn.Read(context.Background(), "res.partner", []int{1}, []string{"name"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].ID())
	assert.Equal(t, 2, stub.count("common.authenticate"))
}

func TestConnection_FaultMapping(t *testing.T) {
	tests := []struct {
		name  string
		fault string
		check func(error) bool
		calls int
	}{
		{
			name:  "access error",
			fault: "odoo.exceptions.AccessError: You are not allowed to modify 'Contact' (res.partner) records.",
			check: api.IsPermissionError,
			calls: 1,
		},
		{
			name:  "missing record",
			fault: "odoo.exceptions.MissingError: Record does not exist or has been deleted.",
			check: api.IsNotFound,
			calls: 1,
		},
		{
			name:  "invalid field",
			fault: "ValueError: Invalid field 'foo' on model 'res.partner'",
			check: api.IsValidationError,
			calls: 1,
		},
		{
			name:  "validation",
			fault: "odoo.exceptions.ValidationError: The field 'Name' is required.",
			check: api.IsValidationError,
			calls: 1,
		},
		{
			name:  "unknown model",
			fault: "Object res.nothing doesn't exist",
			check: api.IsValidationError,
			calls: 1,
		},
		{
			name:  "unclassified fault is not retried",
			fault: "KeyError: 'partner_id'",
			check: api.IsConnectionError,
			calls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, stub := newStubConnection(t, passwordConfig())
			stub.on("res.partner.write", fault(tt.fault))

			_, err := conn.Write(context.Background(), "res.partner", []int{1}, map[string]interface{}{"name": "x"})
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type %T: %v", err, err)
			assert.Equal(t, tt.calls, stub.count("res.partner.write"))
		})
	}
}

func TestConnection_BackendPermissionErrorNamesOperation(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())
	stub.on("res.partner.unlink", fault("odoo.exceptions.AccessError: not allowed"))

	_, err := conn.Unlink(context.Background(), "res.partner", []int{1})
	var permErr *api.PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Equal(t, "unlink", permErr.Operation)
	assert.Equal(t, "res.partner", permErr.Model)
	assert.Equal(t, api.ReasonBackendDenied, permErr.Reason)
}

func TestConnection_HealthCheckAfterIdle(t *testing.T) {
	clock := mock.NewMockClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := passwordConfig()
	cfg.HealthCheckInterval = time.Minute
	conn, stub := newStubConnection(t, cfg, WithClock(clock.Now))
	stub.reply("res.partner.search_count", int64(1))

	ctx := context.Background()
	_, err := conn.SearchCount(ctx, "res.partner", nil)
	require.NoError(t, err)
	_, err = conn.SearchCount(ctx, "res.partner", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stub.count("common.version"))

	clock.Advance(2 * time.Minute)
	_, err = conn.SearchCount(ctx, "res.partner", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.count("common.version"))
	assert.Equal(t, 1, stub.count("common.authenticate"))

	stub.on("common.version", func([]interface{}) (interface{}, error) {
		return nil, errors.New("connection refused")
	})
	clock.Advance(2 * time.Minute)
	_, err = conn.SearchCount(ctx, "res.partner", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.count("common.authenticate"))
}

func TestConnection_FieldsCache(t *testing.T) {
	clock := mock.NewMockClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := passwordConfig()
	cfg.FieldsCacheTTL = 5 * time.Minute
	cfg.HealthCheckInterval = time.Hour
	conn, stub := newStubConnection(t, cfg, WithClock(clock.Now))
	stub.reply("res.partner.fields_get", map[string]interface{}{
		"name":       map[string]interface{}{"type": "char", "string": "Name", "required": true},
		"country_id": map[string]interface{}{"type": "many2one", "string": "Country", "relation": "res.country"},
	})

	ctx := context.Background()
	fields, err := conn.FieldsGet(ctx, "res.partner")
	require.NoError(t, err)
	assert.Equal(t, []string{"country_id", "name"}, fields.Names())
	assert.Equal(t, KindRelationOne, fields["country_id"].Kind)

	_, err = conn.FieldsGet(ctx, "res.partner")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.count("res.partner.fields_get"))

	clock.Advance(6 * time.Minute)
	_, err = conn.FieldsGet(ctx, "res.partner")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.count("res.partner.fields_get"))

	conn.InvalidateFields()
	_, err = conn.FieldsGet(ctx, "res.partner")
	require.NoError(t, err)
	assert.Equal(t, 3, stub.count("res.partner.fields_get"))
}

func TestConnection_Close(t *testing.T) {
	conn, _ := newStubConnection(t, passwordConfig())
	_, err := conn.Authenticate(context.Background())
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	assert.Nil(t, conn.Session())

	_, err = conn.Search(context.Background(), "res.partner", nil, SearchOptions{})
	require.Error(t, err)
	assert.True(t, api.IsConnectionError(err))
}

func TestConnection_PermissionEndpointsNeedAPIKey(t *testing.T) {
	conn, _ := newStubConnection(t, passwordConfig())

	_, err := conn.EnabledModels(context.Background())
	assert.ErrorIs(t, err, ErrPermissionEndpointsUnavailable)

	_, err = conn.ModelAccess(context.Background(), "res.partner")
	assert.ErrorIs(t, err, ErrPermissionEndpointsUnavailable)
}

func TestConnection_PermissionEndpointsWithoutCredentials(t *testing.T) {
	cfg := passwordConfig()
	cfg.Username = ""
	cfg.Password = ""
	conn, stub := newStubConnection(t, cfg)

	_, err := conn.EnabledModels(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthenticationError(err))

	_, err = conn.ModelAccess(context.Background(), "res.partner")
	require.Error(t, err)
	assert.True(t, api.IsAuthenticationError(err))
	assert.Zero(t, stub.count("common.authenticate"))
}

func TestConnection_RedactsSecretsFromTransportErrors(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())
	stub.on("res.partner.search", func([]interface{}) (interface{}, error) {
		return nil, errors.New("dial failed for admin:" + testPassword + "@odoo.test")
	})

	_, err := conn.Search(context.Background(), "res.partner", nil, SearchOptions{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testPassword)
	assert.Contains(t, err.Error(), "***")
}

func TestConnection_ServerVersionAndDatabases(t *testing.T) {
	conn, stub := newStubConnection(t, passwordConfig())
	stub.reply("db.list", []interface{}{"zeta", "alpha"})

	info, err := conn.ServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "17.0", info.ServerVersion)
	assert.Equal(t, 1, info.ProtocolVersion)

	dbs, err := conn.ListDatabases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, dbs)
}
