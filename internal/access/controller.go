package access

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/giantswarm/mcp-odoo/internal/api"
	"github.com/giantswarm/mcp-odoo/internal/odoo"
	"github.com/giantswarm/mcp-odoo/pkg/logging"
)

const (
	refreshKey = "permissions"

	// maxConcurrentFetches bounds the per-model access requests of one refresh.
	maxConcurrentFetches = 4
)

// Source provides the backend's view of model permissions. *odoo.Connection
// implements it.
type Source interface {
	EnabledModels(ctx context.Context) ([]odoo.ModelInfo, error)
	ModelAccess(ctx context.Context, model string) (*odoo.ModelAccess, error)
}

// ModelPermissions is the effective permission set of one enabled model.
type ModelPermissions struct {
	Model      string
	Name       string
	Operations map[api.Operation]bool
}

// Allows reports whether op is permitted.
func (p ModelPermissions) Allows(op api.Operation) bool {
	return p.Operations[op]
}

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	Reason  api.DenialReason
	Message string
	// Err is the loading failure behind a ReasonNoPermissionData denial.
	Err error
}

type snapshot struct {
	models  map[string]ModelPermissions
	loaded  time.Time
	expires time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for snapshot expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithPolicy installs a local policy at construction time.
func WithPolicy(p *Policy) Option {
	return func(c *Controller) {
		c.policy.Store(p)
	}
}

// Controller answers permission questions from a cached snapshot.
type Controller struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	current atomic.Pointer[snapshot]
	policy  atomic.Pointer[Policy]
	group   singleflight.Group
}

// NewController creates a Controller. source may be nil when only a policy
// file provides permissions.
func NewController(source Source, ttl time.Duration, opts ...Option) *Controller {
	c := &Controller{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetPolicy replaces the local policy and drops the current snapshot so the
// next check sees the new policy. A nil policy removes it.
func (c *Controller) SetPolicy(p *Policy) {
	c.policy.Store(p)
	c.Invalidate()
}

// Invalidate drops the current snapshot.
func (c *Controller) Invalidate() {
	c.current.Store(nil)
}

// Refresh loads a new snapshot regardless of the current one's age.
func (c *Controller) Refresh(ctx context.Context) error {
	_, err := c.refresh(ctx, true)
	return err
}

// IsModelEnabled reports whether model is in the enabled set. It is false
// for unknown models and when no permission data is available.
func (c *Controller) IsModelEnabled(ctx context.Context, model string) bool {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return false
	}
	_, ok := snap.models[model]
	return ok
}

// CheckOperationAllowed decides whether op may run on model.
func (c *Controller) CheckOperationAllowed(ctx context.Context, model string, op api.Operation) Decision {
	snap, err := c.snapshot(ctx)
	if err != nil {
		logging.Warn("Access", "Denying %s on %s: %v", op, model, err)
		return Decision{
			Reason:  api.ReasonNoPermissionData,
			Message: "Permission data could not be loaded; all operations are denied until it is available",
			Err:     err,
		}
	}

	perms, ok := snap.models[model]
	if !ok {
		return Decision{
			Reason:  api.ReasonModelNotEnabled,
			Message: fmt.Sprintf("Model '%s' is not enabled for MCP access", model),
		}
	}
	if !op.Valid() || !perms.Allows(op) {
		return Decision{
			Reason:  api.ReasonOperationNotPermitted,
			Message: fmt.Sprintf("Operation '%s' is not allowed on model '%s'", op, model),
		}
	}
	return Decision{Allowed: true}
}

// Authorize is CheckOperationAllowed as an error: nil when allowed, a
// *api.PermissionError otherwise. When permissions could not be loaded
// because of bad credentials or an unavailable backend, that error is
// returned instead so callers see its kind.
func (c *Controller) Authorize(ctx context.Context, model string, op api.Operation) error {
	d := c.CheckOperationAllowed(ctx, model, op)
	if d.Allowed {
		return nil
	}
	if surfaced(d.Err) {
		return d.Err
	}
	logging.Debug("Access", "Denied %s on %s: %s", op, model, d.Reason)
	return &api.PermissionError{
		Model:     model,
		Operation: string(op),
		Reason:    d.Reason,
		Message:   d.Message,
	}
}

// EnabledModels returns every enabled model sorted by name.
func (c *Controller) EnabledModels(ctx context.Context) ([]ModelPermissions, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		if surfaced(err) {
			return nil, err
		}
		return nil, &api.PermissionError{Reason: api.ReasonNoPermissionData, Message: err.Error()}
	}

	models := make([]ModelPermissions, 0, len(snap.models))
	for _, p := range snap.models {
		models = append(models, p)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Model < models[j].Model })
	return models, nil
}

// surfaced reports whether a loading failure is passed to callers as is
// rather than as a permission denial.
func surfaced(err error) bool {
	return api.IsAuthenticationError(err) || api.IsConnectionError(err) || api.IsTimeoutError(err)
}

// snapshot returns an unexpired snapshot, loading one when needed. An
// expired snapshot is never returned, even when loading fails.
func (c *Controller) snapshot(ctx context.Context) (*snapshot, error) {
	if snap := c.fresh(); snap != nil {
		return snap, nil
	}
	return c.refresh(ctx, false)
}

func (c *Controller) fresh() *snapshot {
	snap := c.current.Load()
	if snap == nil || !c.now().Before(snap.expires) {
		return nil
	}
	return snap
}

func (c *Controller) refresh(ctx context.Context, force bool) (*snapshot, error) {
	result, err, _ := c.group.Do(refreshKey, func() (interface{}, error) {
		// another caller may have finished a refresh while we waited
		if !force {
			if snap := c.fresh(); snap != nil {
				return snap, nil
			}
		}

		// Shared by every waiter: detached from the first caller's
		// cancellation. Backend calls carry their own timeout.
		snap, err := c.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.current.Store(snap)
		logging.Info("Access", "Loaded permissions for %d models, valid for %s", len(snap.models), c.ttl)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*snapshot), nil
}

func (c *Controller) load(ctx context.Context) (*snapshot, error) {
	policy := c.policy.Load()

	var models map[string]ModelPermissions
	if c.source != nil {
		fetched, err := c.fetch(ctx)
		switch {
		case err == nil:
			models = policy.narrow(fetched)
		case errors.Is(err, odoo.ErrPermissionEndpointsUnavailable) && policy != nil:
			logging.Debug("Access", "Backend permission endpoints unavailable, using policy file only")
			models = policy.permissions()
		default:
			return nil, err
		}
	} else {
		if policy == nil {
			return nil, errors.New("no permission source configured")
		}
		models = policy.permissions()
	}

	now := c.now()
	return &snapshot{models: models, loaded: now, expires: now.Add(c.ttl)}, nil
}

// fetch reads the enabled models and then each model's operations.
func (c *Controller) fetch(ctx context.Context) (map[string]ModelPermissions, error) {
	infos, err := c.source.EnabledModels(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*odoo.ModelAccess, len(infos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, info := range infos {
		g.Go(func() error {
			access, err := c.source.ModelAccess(gctx, info.Model)
			if err != nil {
				return fmt.Errorf("failed to load access for %s: %w", info.Model, err)
			}
			results[i] = access
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	models := make(map[string]ModelPermissions, len(infos))
	for i, info := range infos {
		access := results[i]
		if access == nil || !access.Enabled {
			continue
		}
		perms := ModelPermissions{
			Model:      info.Model,
			Name:       info.Name,
			Operations: make(map[api.Operation]bool, len(api.Operations)),
		}
		for _, op := range api.Operations {
			perms.Operations[op] = access.Operations[string(op)]
		}
		models[info.Model] = perms
	}
	return models, nil
}
