package sitecmd

import (
	"errors"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-flatcms/internal/commands"
	"github.com/goliatone/go-flatcms/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// Dependencies are the collaborators the site handlers run against.
type Dependencies struct {
	// LocalRoot is the directory web paths resolve against.
	LocalRoot string
	ProdHost  string
	Sitemap   SitemapSource
	Scanner   TreeScanner
	Store     PageStore
	// Recorder, when set, counts every command outcome.
	Recorder commands.CommandRecorder
}

// HandlerSet groups the handlers produced by RegisterSiteCommands.
type HandlerSet struct {
	WriteSitemap   *WriteSitemapHandler
	WriteRobots    *WriteRobotsHandler
	EnsureMetadata *EnsureMetadataHandler
}

// RegisterSiteCommands builds the site command handlers and registers them
// with reg when it is not nil.
func RegisterSiteCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if deps.Sitemap == nil {
		return nil, errors.New("site command registration: sitemap source is nil")
	}
	if deps.Scanner == nil || deps.Store == nil {
		return nil, errors.New("site command registration: scanner and store are required")
	}

	logger := commands.CommandLogger(provider, "site")

	set := &HandlerSet{
		WriteSitemap: NewWriteSitemapHandler(deps.Sitemap, logger,
			commands.WithTelemetry(commands.RecordingTelemetry(commands.DefaultTelemetry[WriteSitemapCommand](logger), deps.Recorder)),
		),
		WriteRobots: NewWriteRobotsHandler(deps.ProdHost, logger,
			commands.WithTelemetry(commands.RecordingTelemetry(commands.DefaultTelemetry[WriteRobotsCommand](logger), deps.Recorder)),
		),
		EnsureMetadata: NewEnsureMetadataHandler(deps.LocalRoot, deps.Scanner, deps.Store, logger,
			commands.WithTelemetry(commands.RecordingTelemetry(commands.DefaultTelemetry[EnsureMetadataCommand](logger), deps.Recorder)),
		),
	}

	if reg != nil {
		for _, handler := range []any{set.WriteSitemap, set.WriteRobots, set.EnsureMetadata} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// Subscribe attaches every handler of set to the go-command dispatcher. The
// returned function removes the subscriptions.
func Subscribe(set *HandlerSet) func() {
	if set == nil {
		return func() {}
	}
	unsubscribe := []func(){
		dispatcher.SubscribeCommand(set.WriteSitemap).Unsubscribe,
		dispatcher.SubscribeCommand(set.WriteRobots).Unsubscribe,
		dispatcher.SubscribeCommand(set.EnsureMetadata).Unsubscribe,
	}
	return func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}
}
