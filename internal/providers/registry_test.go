package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoProvider is a deterministic backend used to exercise registry extension.
type echoProvider struct {
	prefix string
}

func (e *echoProvider) Name() string { return "echo" }

func (e *echoProvider) Assist(_ context.Context, prompt string) string {
	return e.prefix + prompt
}

func echoEntry() Entry {
	return Entry{
		Name:    "echo",
		Aliases: []string{"mirror"},
		Section: "echo",
		New: func(opts Options) (Provider, error) {
			return &echoProvider{prefix: opts["prefix"]}, nil
		},
	}
}

func requireResolutionError(t *testing.T, err error) *ResolutionError {
	t.Helper()
	require.Error(t, err)
	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr), "expected *ResolutionError, got %T: %v", err, err)
	return resErr
}

func TestResolve_UnknownProvider(t *testing.T) {
	for _, name := range []string{"openai", "gemini-pro", "local server", "cloudy"} {
		t.Run(name, func(t *testing.T) {
			p, resolved, err := Resolve(name, Sections{
				SectionCloud:       {"api_key": "k"},
				SectionLocalServer: {},
			})

			assert.Nil(t, p)
			assert.Empty(t, resolved)
			resErr := requireResolutionError(t, err)
			assert.ErrorIs(t, err, ErrUnknownProvider)
			assert.Equal(t, name, resErr.Provider)
			assert.Contains(t, err.Error(), "cloud, local-server")
		})
	}
}

func TestResolve_MissingProviderName(t *testing.T) {
	p, _, err := Resolve("  ", Sections{})

	assert.Nil(t, p)
	requireResolutionError(t, err)
	assert.ErrorIs(t, err, ErrMissingProvider)
}

func TestResolve_LocalServerMissingSection(t *testing.T) {
	p, _, err := Resolve("local-server", Sections{SectionCloud: {"api_key": "k"}})

	assert.Nil(t, p)
	resErr := requireResolutionError(t, err)
	assert.ErrorIs(t, err, ErrMissingSection)
	assert.Equal(t, SectionLocalServer, resErr.Section)
	assert.Contains(t, err.Error(), `section "local_server"`)
}

func TestResolve_NilSectionIsMissing(t *testing.T) {
	p, _, err := Resolve("local-server", Sections{SectionLocalServer: nil})

	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrMissingSection)
}

func TestResolve_LocalServer(t *testing.T) {
	p, name, err := Resolve("local-server", Sections{
		SectionLocalServer: {"host": "http://example:9999", "model": "mistral", "timeout": "45s"},
	})
	require.NoError(t, err)

	assert.Equal(t, KindLocalServer, name)
	ls, ok := p.(*LocalServer)
	require.True(t, ok, "got %T", p)
	assert.Equal(t, "http://example:9999/api/generate", ls.Endpoint())
	assert.Equal(t, "mistral", ls.Model())
	assert.Equal(t, "45s", ls.timeout.String())
}

func TestResolve_LocalServerEmptySectionUsesDefaults(t *testing.T) {
	p, _, err := Resolve("local-server", Sections{SectionLocalServer: {}})
	require.NoError(t, err)

	ls := p.(*LocalServer)
	assert.Equal(t, "http://localhost:11434/api/generate", ls.Endpoint())
	assert.Equal(t, DefaultLocalServerModel, ls.Model())
}

func TestResolve_Cloud(t *testing.T) {
	p, name, err := Resolve("cloud", Sections{SectionCloud: {"api_key": "real-key"}})
	require.NoError(t, err)

	assert.Equal(t, KindCloud, name)
	c, ok := p.(*Cloud)
	require.True(t, ok, "got %T", p)
	assert.Equal(t, DefaultCloudModel, c.Model())
}

func TestResolve_CloudCredentialFailures(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"missing key", Options{}, ErrMissingCredential},
		{"empty key", Options{"api_key": ""}, ErrMissingCredential},
		{"placeholder key", Options{"api_key": PlaceholderAPIKey}, ErrPlaceholderCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, err := Resolve("cloud", Sections{SectionCloud: tt.opts})

			assert.Nil(t, p)
			resErr := requireResolutionError(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, SectionCloud, resErr.Section)
			assert.Equal(t, "api_key", resErr.Option)
		})
	}
}

func TestResolve_InvalidOptions(t *testing.T) {
	tests := []struct {
		name       string
		provider   string
		opts       Options
		wantOption string
	}{
		{"bad host", "local-server", Options{"host": "not a url"}, "host"},
		{"bad timeout", "local-server", Options{"timeout": "soon"}, ""},
		{"negative timeout", "local-server", Options{"timeout": "-5s"}, "timeout"},
		{"unknown option", "local-server", Options{"colour": "blue"}, ""},
		{"bad base url", "cloud", Options{"api_key": "k", "base_url": "::nope"}, "base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, err := Resolve(tt.provider, Sections{
				SectionCloud:       tt.opts,
				SectionLocalServer: tt.opts,
			})

			assert.Nil(t, p)
			resErr := requireResolutionError(t, err)
			assert.ErrorIs(t, err, ErrInvalidOption)
			assert.Equal(t, tt.wantOption, resErr.Option)
		})
	}
}

func TestResolve_Aliases(t *testing.T) {
	sections := Sections{
		SectionCloud:       {"api_key": "k"},
		SectionLocalServer: {},
	}
	tests := []struct {
		name string
		want string
	}{
		{"gemini", KindCloud},
		{" GOOGLE ", KindCloud},
		{"Cloud", KindCloud},
		{"ollama", KindLocalServer},
		{"local_server", KindLocalServer},
		{"LOCAL", KindLocalServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, name, err := Resolve(tt.name, sections)
			require.NoError(t, err)
			assert.NotNil(t, p)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestRegistry_Extension(t *testing.T) {
	r := DefaultRegistry()
	r.Register(echoEntry())

	assert.Equal(t, []string{"cloud", "echo", "local-server"}, r.Names())

	p, name, err := r.Resolve("mirror", Sections{"echo": {"prefix": "> "}})
	require.NoError(t, err)
	assert.Equal(t, "echo", name)
	assert.Equal(t, "> hi", p.Assist(context.Background(), "hi"))

	// the package-level registry is unaffected
	_, _, err = Resolve("echo", Sections{"echo": {}})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegistry_FactoryErrorIsWrapped(t *testing.T) {
	boom := errors.New("backend misconfigured")
	r := NewRegistry(Entry{
		Name:    "broken",
		Section: "broken",
		New: func(Options) (Provider, error) {
			return nil, boom
		},
	})

	p, _, err := r.Resolve("broken", Sections{"broken": {}})

	assert.Nil(t, p)
	resErr := requireResolutionError(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "broken", resErr.Section)
	assert.Empty(t, resErr.Option)
}

func TestRegistry_NilProviderIsRejected(t *testing.T) {
	r := NewRegistry(Entry{
		Name:    "hollow",
		Section: "hollow",
		New:     func(Options) (Provider, error) { return nil, nil },
	})

	p, _, err := r.Resolve("hollow", Sections{"hollow": {}})

	assert.Nil(t, p)
	requireResolutionError(t, err)
}

func TestRegistry_DuplicateNamePanics(t *testing.T) {
	r := NewRegistry(echoEntry())

	assert.Panics(t, func() { r.Register(echoEntry()) })
	assert.Panics(t, func() {
		r.Register(Entry{Name: "other", Aliases: []string{"MIRROR"}, Section: "x", New: echoEntry().New})
	})
	assert.Panics(t, func() { r.Register(Entry{Name: "nofactory", Section: "x"}) })
}

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()

	e, ok := r.Lookup("Ollama")
	require.True(t, ok)
	assert.Equal(t, KindLocalServer, e.Name)
	assert.Equal(t, SectionLocalServer, e.Section)

	_, ok = r.Lookup("nope")
	assert.False(t, ok)
}

func TestResolveDescriptor(t *testing.T) {
	p, name, err := DefaultRegistry().ResolveDescriptor(Descriptor{
		Name:     "local-server",
		Sections: Sections{SectionLocalServer: {"host": "http://example:9999"}},
	})
	require.NoError(t, err)
	assert.Equal(t, KindLocalServer, name)
	assert.Equal(t, "http://example:9999/api/generate", p.(*LocalServer).Endpoint())
}

func TestResolutionErrorMessage(t *testing.T) {
	tests := []struct {
		err  *ResolutionError
		want string
	}{
		{
			&ResolutionError{Err: ErrMissingProvider},
			"resolving provider: no provider selected",
		},
		{
			&ResolutionError{Provider: "local-server", Section: "local_server", Err: ErrMissingSection},
			`resolving provider "local-server" (section "local_server"): missing config section`,
		},
		{
			&ResolutionError{Provider: "cloud", Section: "cloud", Option: "api_key", Err: ErrMissingCredential},
			`resolving provider "cloud" (section "cloud", option "api_key"): cloud API key is missing`,
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}
