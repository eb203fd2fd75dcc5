// Package publish drives one create or update of a plugin in the registry:
// token validation, plugin resolution, the update decision, the optional
// confirmation and the final write.
package publish

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stelitsyn-sc/zappifest/internal/cachemanager"
	"github.com/stelitsyn-sc/zappifest/internal/decision"
	"github.com/stelitsyn-sc/zappifest/internal/diff"
	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/manifest"
	"github.com/stelitsyn-sc/zappifest/internal/params"
	"github.com/stelitsyn-sc/zappifest/internal/resolver"
	"github.com/stelitsyn-sc/zappifest/internal/tracing"
	"github.com/stelitsyn-sc/zappifest/internal/transport"
	"github.com/stelitsyn-sc/zappifest/internal/zapp"
)

// ErrAuth is returned when the access token is missing or rejected.
var ErrAuth = errors.New("authentication failed")

// ErrConfirmationRequired is returned when an update by id needs approval
// but no Confirmer is configured.
var ErrConfirmationRequired = errors.New("confirmation required to update a plugin by id")

// ConfirmPrompt is passed to the Confirmer together with the diff.
const ConfirmPrompt = "Do you want to update the plugin with these changes?"

// Confirmer shows the diff between the remote and local manifests and
// reports whether to proceed.
type Confirmer func(prompt string, rows []diff.Row) (bool, error)

// Action is what a run did.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionDeclined  Action = "declined"
)

// Options are the inputs of one run.
type Options struct {
	Manifest    *manifest.Document
	AccessToken string

	// KnownID selects the plugin to update by id and asks for confirmation.
	KnownID string

	// OverrideURL replaces the admin base URL. Token validation is skipped
	// when it is set.
	OverrideURL string

	// New creates a plugin without looking up existing ones.
	New bool
}

// Result describes the outcome of a run.
type Result struct {
	Action   Action
	PluginID string
	Changes  []decision.Change
}

// snapshotKey identifies one registry listing in a run's snapshot cache.
type snapshotKey string

// Publisher runs the publish flow against one registry.
type Publisher struct {
	caller      zapp.Caller
	adminURL    string
	accountsURL string
	choose      resolver.Chooser
	confirm     Confirmer
	sink        Sink
	tracer      trace.Tracer
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAdminURL sets the admin API base URL.
func WithAdminURL(u string) Option {
	return func(p *Publisher) { p.adminURL = u }
}

// WithAccountsURL sets the accounts API base URL.
func WithAccountsURL(u string) Option {
	return func(p *Publisher) { p.accountsURL = u }
}

// WithChooser sets the function used to pick among several matches.
func WithChooser(c resolver.Chooser) Option {
	return func(p *Publisher) { p.choose = c }
}

// WithConfirmer sets the function that approves an update by id.
func WithConfirmer(c Confirmer) Option {
	return func(p *Publisher) { p.confirm = c }
}

// WithSink sets where user-facing messages go.
func WithSink(s Sink) Option {
	return func(p *Publisher) {
		if s != nil {
			p.sink = s
		}
	}
}

// WithTracer sets the tracer for the run spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Publisher) {
		if t != nil {
			p.tracer = t
		}
	}
}

// New creates a Publisher that sends its requests through caller.
func New(caller zapp.Caller, opts ...Option) *Publisher {
	p := &Publisher{
		caller:      caller,
		adminURL:    zapp.DefaultAdminURL,
		accountsURL: zapp.DefaultAccountsURL,
		sink:        discardSink{},
		tracer:      tracing.Tracer("zappifest/publish"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run publishes opts.Manifest. A declined confirmation returns
// ActionDeclined and a nil error.
func (p *Publisher) Run(ctx context.Context, opts Options) (res Result, err error) {
	ctx, span := p.tracer.Start(ctx, tracing.SpanPublish)
	defer func() {
		span.SetAttributes(attribute.String(tracing.AttrAction, string(res.Action)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if opts.Manifest == nil {
		return Result{}, errors.New("no manifest to publish")
	}
	span.SetAttributes(attribute.String(tracing.AttrPluginIdentifier, opts.Manifest.Identifier))

	if opts.AccessToken == "" {
		p.sink.Emit(LevelError, "Access token is missing")
		return Result{}, fmt.Errorf("%w: access token is missing", ErrAuth)
	}

	adminURL := p.adminURL
	if opts.OverrideURL != "" {
		adminURL = opts.OverrideURL
	}
	client := zapp.NewClient(p.caller, adminURL, p.accountsURL)

	if opts.OverrideURL == "" {
		if err := p.validateToken(ctx, client, opts.AccessToken); err != nil {
			return Result{}, err
		}
	} else {
		log.Info(log.CatPublish, "Skipping token validation", "admin_url", adminURL)
	}

	if opts.New {
		return p.create(ctx, client, opts)
	}

	// Listings are snapshotted for this run only; the next run lists again.
	snapshots := cachemanager.NewInMemoryCacheManager[snapshotKey, []zapp.Plugin](
		"plugin-snapshots", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval)
	defer func() { _ = snapshots.Flush(ctx) }()

	remote, err := p.resolve(ctx, client, snapshots, opts)
	if err != nil {
		return Result{}, err
	}
	id := remote.ID()
	span.SetAttributes(attribute.String(tracing.AttrPluginID, id))

	update := params.Build(opts.Manifest, id, opts.AccessToken)
	changes := p.decide(ctx, remote, update)
	if len(changes) == 0 {
		p.sink.Emit(LevelInfo, "Plugin is up to date, no changes needed")
		return Result{Action: ActionUnchanged, PluginID: id}, nil
	}

	if opts.KnownID != "" {
		ok, err := p.confirmChanges(remote, opts.Manifest)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			p.sink.Emit(LevelInfo, "Update cancelled, nothing was changed")
			return Result{Action: ActionDeclined, PluginID: id, Changes: changes}, nil
		}
	}

	if err := p.submit(ctx, func(ctx context.Context) (zapp.Plugin, error) {
		return client.UpdatePlugin(ctx, id, update.Without(params.KeyWhitelistedAccountIDs))
	}); err != nil {
		return Result{}, fmt.Errorf("updating plugin %s: %w", id, err)
	}
	p.sink.Emit(LevelSuccess, "Plugin updated!")
	return Result{Action: ActionUpdated, PluginID: id, Changes: changes}, nil
}

func (p *Publisher) validateToken(ctx context.Context, client *zapp.Client, token string) error {
	ctx, span := p.tracer.Start(ctx, tracing.SpanValidateToken)
	defer span.End()

	p.sink.Emit(LevelInfo, "Validating access token")
	if _, err := client.CurrentUser(ctx, token); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, transport.ErrUnauthorized) {
			p.sink.Emit(LevelError, "Access token is not valid")
			return fmt.Errorf("%w: %w", ErrAuth, err)
		}
		p.sink.Emit(LevelError, failureText(err))
		return fmt.Errorf("validating access token: %w", err)
	}
	log.Debug(log.CatPublish, "Access token accepted")
	return nil
}

func (p *Publisher) create(ctx context.Context, client *zapp.Client, opts Options) (Result, error) {
	var created zapp.Plugin
	err := p.submit(ctx, func(ctx context.Context) (zapp.Plugin, error) {
		var err error
		created, err = client.CreatePlugin(ctx, params.Build(opts.Manifest, "", opts.AccessToken))
		return created, err
	})
	if err != nil {
		return Result{}, fmt.Errorf("creating plugin: %w", err)
	}

	id := created.ID()
	if id == "" {
		p.sink.Emit(LevelSuccess, "Plugin created!")
	} else {
		p.sink.Emit(LevelSuccess, "Plugin created! id: "+id)
	}
	return Result{Action: ActionCreated, PluginID: id}, nil
}

func (p *Publisher) resolve(
	ctx context.Context,
	client *zapp.Client,
	snapshots cachemanager.CacheManager[snapshotKey, []zapp.Plugin],
	opts Options,
) (zapp.Plugin, error) {
	ctx, span := p.tracer.Start(ctx, tracing.SpanResolve)
	defer span.End()

	p.sink.Emit(LevelInfo, "Looking up plugin "+opts.Manifest.Identifier)
	listing := cachemanager.NewReadThroughCache(snapshots, func(ctx context.Context, pp params.Params) ([]zapp.Plugin, error) {
		return client.ListPlugins(ctx, pp)
	}, false)
	lister := &snapshotLister{cache: listing, key: snapshotKey(client.PluginsURL())}
	remote, err := resolver.New(lister, p.choose).Resolve(ctx, resolver.Request{
		Manifest:    opts.Manifest,
		AccessToken: opts.AccessToken,
		KnownID:     opts.KnownID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var noMatch *resolver.NoMatchError
		if errors.As(err, &noMatch) {
			p.sink.Emit(LevelError, noMatch.Error())
		} else {
			p.sink.Emit(LevelError, failureText(err))
		}
		return nil, err
	}
	span.SetAttributes(attribute.String(tracing.AttrPluginID, remote.ID()))
	log.Info(log.CatPublish, "Resolved plugin", "id", remote.ID(), "identifier", remote.ExternalIdentifier())
	p.sink.Emit(LevelInfo, fmt.Sprintf("Found plugin %s (id %s)", remote.ExternalIdentifier(), remote.ID()))
	return remote, nil
}

func (p *Publisher) decide(ctx context.Context, remote zapp.Plugin, update params.Params) []decision.Change {
	_, span := p.tracer.Start(ctx, tracing.SpanDecide)
	defer span.End()

	changes := decision.Changes(remote, update)
	span.SetAttributes(attribute.Bool(tracing.AttrNeedsUpdate, len(changes) > 0))
	for _, c := range changes {
		log.Debug(log.CatDecide, "Field differs", "field", c.Field, "remote", c.Remote, "local", c.Local)
	}
	return changes
}

func (p *Publisher) confirmChanges(remote zapp.Plugin, doc *manifest.Document) (bool, error) {
	if p.confirm == nil {
		return false, ErrConfirmationRequired
	}
	rows, err := diff.SideBySide(diff.RemoteManifest(remote, doc.Raw()), doc.Raw())
	if err != nil {
		return false, fmt.Errorf("building diff: %w", err)
	}
	ok, err := p.confirm(ConfirmPrompt, rows)
	if err != nil {
		return false, fmt.Errorf("confirming update: %w", err)
	}
	log.Info(log.CatPublish, "Confirmation answered", "approved", ok)
	return ok, nil
}

// submit performs a create or update. A body the registry accepted but that
// does not parse is reported as a warning.
func (p *Publisher) submit(ctx context.Context, write func(context.Context) (zapp.Plugin, error)) error {
	ctx, span := p.tracer.Start(ctx, tracing.SpanSubmit)
	defer span.End()

	_, err := write(ctx)
	var parseErr *transport.ParseError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &parseErr):
		log.Warn(log.CatPublish, "Response body did not parse", "error", parseErr.Err)
		p.sink.Emit(LevelWarn, "The registry accepted the request but its response could not be read")
		return nil
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.sink.Emit(LevelError, failureText(err))
		return err
	}
}

// failureText is the user-facing line for a failed registry call.
func failureText(err error) string {
	var netErr *transport.NetworkError
	switch {
	case errors.Is(err, transport.ErrServerError):
		return "Internal server error, please try again later"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "The registry did not respond in time"
	}
	return err.Error()
}

// snapshotLister serves the registry listing from the snapshot cache so a
// run lists at most once.
type snapshotLister struct {
	cache *cachemanager.ReadThroughCache[snapshotKey, []zapp.Plugin, params.Params]
	key   snapshotKey
}

func (l *snapshotLister) ListPlugins(ctx context.Context, p params.Params) ([]zapp.Plugin, error) {
	return l.cache.Get(ctx, l.key, p, cachemanager.NoExpiration)
}
