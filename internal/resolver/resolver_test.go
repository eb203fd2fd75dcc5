package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/stelitsyn-sc/zappifest/internal/manifest"
	"github.com/stelitsyn-sc/zappifest/internal/params"
	"github.com/stelitsyn-sc/zappifest/internal/zapp"
)

type fakeLister struct {
	plugins []zapp.Plugin
	err     error
	calls   int
	got     params.Params
}

func (f *fakeLister) ListPlugins(ctx context.Context, p params.Params) ([]zapp.Plugin, error) {
	f.calls++
	f.got = p
	return f.plugins, f.err
}

type recordingChooser struct {
	index   int
	err     error
	calls   int
	prompt  string
	options []string
}

func (c *recordingChooser) choose(prompt string, options []string) (int, error) {
	c.calls++
	c.prompt = prompt
	c.options = options
	return c.index, c.err
}

func fooManifest(t require.TestingT) *manifest.Document {
	doc, err := manifest.Parse([]byte(`{"name":"Foo","identifier":"foo-plugin"}`))
	require.NoError(t, err)
	return doc
}

func request(t require.TestingT) Request {
	return Request{Manifest: fooManifest(t), AccessToken: "tok"}
}

func TestResolve_ZeroCandidates(t *testing.T) {
	lister := &fakeLister{plugins: []zapp.Plugin{
		{"id": "1", "name": "Bar", "external_identifier": "bar"},
	}}
	chooser := &recordingChooser{}

	_, err := New(lister, chooser.choose).Resolve(context.Background(), request(t))

	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
	require.Equal(t, "foo-plugin", noMatch.Identifier)
	require.Contains(t, err.Error(), "--new")
	require.Equal(t, 0, chooser.calls)
}

func TestResolve_SingleCandidateSkipsChooser(t *testing.T) {
	lister := &fakeLister{plugins: []zapp.Plugin{
		{"id": "1", "name": "Bar", "external_identifier": "bar"},
		{"id": "2", "name": "Other", "external_identifier": "foo-plugin"},
	}}
	chooser := &recordingChooser{}

	got, err := New(lister, chooser.choose).Resolve(context.Background(), request(t))
	require.NoError(t, err)
	require.Equal(t, "2", got.ID())
	require.Equal(t, 0, chooser.calls)
}

func TestResolve_ListsWithTokenOnly(t *testing.T) {
	lister := &fakeLister{plugins: []zapp.Plugin{{"id": "1", "name": "Foo"}}}
	req := request(t)
	req.KnownID = "1"

	_, err := New(lister, nil).Resolve(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, lister.calls)
	require.Equal(t, 1, lister.got.Len())
	token, ok := lister.got.Get(params.KeyAccessToken)
	require.True(t, ok)
	require.Equal(t, params.Text("tok"), token)
	_, ok = lister.got.Get(params.KeyDescription)
	require.False(t, ok)
}

func TestResolve_TwoCandidatesUsesChooser(t *testing.T) {
	lister := &fakeLister{plugins: []zapp.Plugin{
		{"id": "11", "name": "Foo", "external_identifier": "foo-plugin-1"},
		{"id": "12", "name": "Foo", "external_identifier": "foo-plugin-2"},
	}}
	chooser := &recordingChooser{index: 1}

	got, err := New(lister, chooser.choose).Resolve(context.Background(), request(t))
	require.NoError(t, err)
	require.Equal(t, "12", got.ID())
	require.Equal(t, 1, chooser.calls)
	require.Equal(t, SelectPrompt, chooser.prompt)
	require.Equal(t, []string{"foo-plugin-1", "foo-plugin-2"}, chooser.options)
}

func TestResolve_ChooserOutOfRange(t *testing.T) {
	lister := &fakeLister{plugins: []zapp.Plugin{
		{"id": "11", "name": "Foo"},
		{"id": "12", "name": "Foo"},
	}}

	for _, index := range []int{-1, 2, 99} {
		t.Run(fmt.Sprint(index), func(t *testing.T) {
			chooser := &recordingChooser{index: index}
			_, err := New(lister, chooser.choose).Resolve(context.Background(), request(t))

			var ambiguous *AmbiguousMatchError
			require.ErrorAs(t, err, &ambiguous)
			require.Equal(t, index, ambiguous.Index)
		})
	}
}

func TestResolve_NilChooserIsAmbiguous(t *testing.T) {
	lister := &fakeLister{plugins: []zapp.Plugin{{"name": "Foo"}, {"name": "Foo"}}}

	_, err := New(lister, nil).Resolve(context.Background(), request(t))
	var ambiguous *AmbiguousMatchError
	require.ErrorAs(t, err, &ambiguous)
}

func TestResolve_ChooserError(t *testing.T) {
	lister := &fakeLister{plugins: []zapp.Plugin{{"name": "Foo"}, {"name": "Foo"}}}
	cancelled := errors.New("cancelled")
	chooser := &recordingChooser{err: cancelled}

	_, err := New(lister, chooser.choose).Resolve(context.Background(), request(t))
	require.ErrorIs(t, err, cancelled)
}

func TestResolve_ListerError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(&fakeLister{err: boom}, nil).Resolve(context.Background(), request(t))
	require.ErrorIs(t, err, boom)
}

func TestResolve_KnownID(t *testing.T) {
	lister := &fakeLister{plugins: []zapp.Plugin{
		{"id": float64(11), "name": "Foo", "external_identifier": "foo-plugin"},
		{"id": float64(12), "name": "Renamed", "external_identifier": "renamed"},
	}}
	req := request(t)
	req.KnownID = "12"

	got, err := New(lister, nil).Resolve(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name())

	req.KnownID = "13"
	_, err = New(lister, nil).Resolve(context.Background(), req)
	var noMatch *NoMatchError
	require.ErrorAs(t, err, &noMatch)
	require.Equal(t, "13", noMatch.KnownID)
}

func TestCandidates_MatchRules(t *testing.T) {
	doc, err := manifest.Parse([]byte(`{"name":"Foo","identifier":"com.applicaster.Foo-Plugin"}`))
	require.NoError(t, err)

	plugins := []zapp.Plugin{
		{"id": "1", "name": "Foo"},
		{"id": "2", "external_identifier": "com.applicaster.Foo-Plugin"},
		{"id": "3", "external_identifier": "foo-plugin"},
		{"id": "4", "external_identifier": "org.other.foo-plugin"},
		{"id": "5", "name": "foo", "external_identifier": "foo-plugin-2"},
		{"id": "6"},
	}

	var ids []string
	for _, p := range Candidates(doc, plugins) {
		ids = append(ids, p.ID())
	}
	require.Equal(t, []string{"1", "2", "3", "4"}, ids)
}

func TestResolve_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		matching := rapid.IntRange(0, 5).Draw(rt, "matching")
		others := rapid.IntRange(0, 5).Draw(rt, "others")

		var plugins []zapp.Plugin
		var wantIDs []string
		for i := 0; i < matching+others; i++ {
			id := fmt.Sprint(i)
			if i < matching {
				plugins = append(plugins, zapp.Plugin{"id": id, "name": "Foo", "external_identifier": "foo-" + id})
				wantIDs = append(wantIDs, "foo-"+id)
			} else {
				plugins = append(plugins, zapp.Plugin{"id": id, "name": "Bar", "external_identifier": "bar-" + id})
			}
		}

		index := 0
		if matching > 0 {
			index = rapid.IntRange(0, matching-1).Draw(rt, "index")
		}
		chooser := &recordingChooser{index: index}

		got, err := New(&fakeLister{plugins: plugins}, chooser.choose).Resolve(context.Background(), request(rt))

		switch {
		case matching == 0:
			var noMatch *NoMatchError
			require.ErrorAs(rt, err, &noMatch)
			require.Equal(rt, 0, chooser.calls)
		case matching == 1:
			require.NoError(rt, err)
			require.Equal(rt, "0", got.ID())
			require.Equal(rt, 0, chooser.calls)
		default:
			require.NoError(rt, err)
			require.Equal(rt, 1, chooser.calls)
			require.Equal(rt, wantIDs, chooser.options)
			require.Equal(rt, fmt.Sprint(index), got.ID())
		}
	})
}
