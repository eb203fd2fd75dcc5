// Package resolver narrows the registry listing down to the one plugin a
// manifest refers to.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/stelitsyn-sc/zappifest/internal/log"
	"github.com/stelitsyn-sc/zappifest/internal/manifest"
	"github.com/stelitsyn-sc/zappifest/internal/params"
	"github.com/stelitsyn-sc/zappifest/internal/zapp"
)

// SelectPrompt is shown when several plugins match.
const SelectPrompt = "Please select your plugin"

// Lister returns every plugin visible to the caller. *zapp.Client implements it.
type Lister interface {
	ListPlugins(ctx context.Context, p params.Params) ([]zapp.Plugin, error)
}

// Chooser picks one of options and returns its zero-based index.
type Chooser func(prompt string, options []string) (int, error)

// NoMatchError is returned when no plugin matches the manifest.
type NoMatchError struct {
	Identifier string
	KnownID    string
}

func (e *NoMatchError) Error() string {
	if e.KnownID != "" {
		return fmt.Sprintf("no plugin with id %s is visible to this token", e.KnownID)
	}
	return fmt.Sprintf("no plugin found matching %s. please check the identifier and try again; "+
		"to create a plugin with a new identifier use the --new option", e.Identifier)
}

// AmbiguousMatchError is returned when the chooser gives an index outside
// the candidate list.
type AmbiguousMatchError struct {
	Index      int
	Candidates []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("selection %d is out of range for %d candidates (%s)",
		e.Index, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// Request identifies what to resolve.
type Request struct {
	Manifest    *manifest.Document
	AccessToken string

	// KnownID, when set, selects the plugin with that id instead of matching
	// by name and identifier, so a renamed plugin can still be updated.
	KnownID string
}

// Resolver matches a manifest against the registry listing.
type Resolver struct {
	lister Lister
	choose Chooser
}

// New creates a Resolver. choose is only called when several plugins match.
func New(lister Lister, choose Chooser) *Resolver {
	return &Resolver{lister: lister, choose: choose}
}

// Resolve returns exactly one plugin or an error.
func (r *Resolver) Resolve(ctx context.Context, req Request) (zapp.Plugin, error) {
	doc := req.Manifest
	// The listing only needs the token; manifest fields stay out of the URL.
	plugins, err := r.lister.ListPlugins(ctx, params.New(
		params.Field{Key: params.KeyAccessToken, Value: params.Text(req.AccessToken)},
	))
	if err != nil {
		return nil, err
	}

	var candidates []zapp.Plugin
	if req.KnownID != "" {
		candidates = withID(plugins, req.KnownID)
	} else {
		candidates = Candidates(doc, plugins)
	}
	log.Debug(log.CatResolve, "Matched candidates",
		"identifier", doc.Identifier,
		"listed", len(plugins),
		"candidates", len(candidates))

	switch len(candidates) {
	case 0:
		return nil, &NoMatchError{Identifier: doc.Identifier, KnownID: req.KnownID}
	case 1:
		return candidates[0], nil
	}

	identifiers := make([]string, len(candidates))
	for i, c := range candidates {
		identifiers[i] = c.ExternalIdentifier()
	}

	if r.choose == nil {
		return nil, &AmbiguousMatchError{Index: -1, Candidates: identifiers}
	}
	index, err := r.choose(SelectPrompt, identifiers)
	if err != nil {
		return nil, fmt.Errorf("selecting plugin: %w", err)
	}
	if index < 0 || index >= len(candidates) {
		return nil, &AmbiguousMatchError{Index: index, Candidates: identifiers}
	}
	log.Info(log.CatResolve, "Candidate selected", "index", index, "identifier", identifiers[index])
	return candidates[index], nil
}

// Candidates returns, in listing order, the plugins whose name equals the
// manifest name or whose external identifier matches the manifest identifier
// exactly or after ShortIdentifier normalization of both sides.
func Candidates(doc *manifest.Document, plugins []zapp.Plugin) []zapp.Plugin {
	short := manifest.ShortIdentifier(doc.Identifier)
	var out []zapp.Plugin
	for _, p := range plugins {
		ext := p.ExternalIdentifier()
		switch {
		case p.Name() == doc.Name:
		case ext == doc.Identifier:
		case ext != "" && manifest.ShortIdentifier(ext) == short:
		default:
			continue
		}
		out = append(out, p)
	}
	return out
}

func withID(plugins []zapp.Plugin, id string) []zapp.Plugin {
	var out []zapp.Plugin
	for _, p := range plugins {
		if p.ID() == id {
			out = append(out, p)
		}
	}
	return out
}
