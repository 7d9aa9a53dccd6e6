package providers

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Canonical provider names.
const (
	KindCloud       = "cloud"
	KindLocalServer = "local-server"
)

// Config section names read by the default providers.
const (
	SectionCloud       = "cloud"
	SectionLocalServer = "local_server"
)

var (
	ErrMissingProvider = errors.New("no provider selected")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingSection  = errors.New("missing config section")
	ErrInvalidOption   = errors.New("invalid option")
)

// ResolutionError reports a startup-time failure to build a provider.
type ResolutionError struct {
	Provider string // name as requested
	Section  string // config section involved, if any
	Option   string // option involved, if any
	Err      error
}

func (e *ResolutionError) Error() string {
	var sb strings.Builder
	sb.WriteString("resolving provider")
	if e.Provider != "" {
		fmt.Fprintf(&sb, " %q", e.Provider)
	}
	switch {
	case e.Section != "" && e.Option != "":
		fmt.Fprintf(&sb, " (section %q, option %q)", e.Section, e.Option)
	case e.Section != "":
		fmt.Fprintf(&sb, " (section %q)", e.Section)
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	return sb.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Factory builds a provider from the options of its config section.
type Factory func(opts Options) (Provider, error)

// Entry associates a provider name with its config section and factory.
type Entry struct {
	Name    string
	Aliases []string
	Section string
	New     Factory
}

// Registry is an explicit name-to-factory table.
type Registry struct {
	entries []Entry
	byName  map[string]int
}

// NewRegistry creates a registry holding the given entries.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, e := range entries {
		r.Register(e)
	}
	return r
}

// Register adds an entry. Duplicate names or aliases panic.
func (r *Registry) Register(e Entry) {
	if e.New == nil {
		panic(fmt.Sprintf("providers: entry %q has no factory", e.Name))
	}
	idx := len(r.entries)
	for _, n := range append([]string{e.Name}, e.Aliases...) {
		key := normalizeName(n)
		if key == "" {
			panic("providers: empty provider name")
		}
		if _, dup := r.byName[key]; dup {
			panic(fmt.Sprintf("providers: duplicate provider name %q", key))
		}
		r.byName[key] = idx
	}
	r.entries = append(r.entries, e)
}

// Entries returns the registered entries sorted by name.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Names returns the canonical provider names sorted.
func (r *Registry) Names() []string {
	entries := r.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Lookup finds the entry for a name or alias.
func (r *Registry) Lookup(name string) (Entry, bool) {
	idx, ok := r.byName[normalizeName(name)]
	if !ok {
		return Entry{}, false
	}
	return r.entries[idx], true
}

// Resolve builds the provider named by name using its config section from
// sections. It returns the provider and its canonical name, or a
// *ResolutionError and a nil provider.
func (r *Registry) Resolve(name string, sections Sections) (Provider, string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, "", &ResolutionError{Err: ErrMissingProvider}
	}

	entry, ok := r.Lookup(name)
	if !ok {
		return nil, "", &ResolutionError{
			Provider: name,
			Err:      fmt.Errorf("%w (supported: %s)", ErrUnknownProvider, strings.Join(r.Names(), ", ")),
		}
	}

	opts, ok := sections[entry.Section]
	if !ok || opts == nil {
		return nil, "", &ResolutionError{
			Provider: name,
			Section:  entry.Section,
			Err:      ErrMissingSection,
		}
	}

	p, err := entry.New(opts)
	if err != nil {
		resErr := &ResolutionError{Provider: name, Section: entry.Section, Err: err}
		var optErr *OptionError
		if errors.As(err, &optErr) {
			resErr.Option = optErr.Option
			resErr.Err = optErr.Err
		}
		return nil, "", resErr
	}
	if p == nil {
		return nil, "", &ResolutionError{
			Provider: name,
			Section:  entry.Section,
			Err:      errors.New("factory returned no provider"),
		}
	}

	return p, entry.Name, nil
}

// ResolveDescriptor resolves d.Name against d.Sections.
func (r *Registry) ResolveDescriptor(d Descriptor) (Provider, string, error) {
	return r.Resolve(d.Name, d.Sections)
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// newCloudFromOptions decodes the cloud section and builds the provider.
func newCloudFromOptions(opts Options) (Provider, error) {
	var cfg CloudConfig
	if err := decodeOptions(opts, &cfg); err != nil {
		return nil, err
	}
	p, err := NewCloud(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// newLocalServerFromOptions decodes the local_server section and builds the provider.
func newLocalServerFromOptions(opts Options) (Provider, error) {
	var cfg LocalServerConfig
	if err := decodeOptions(opts, &cfg); err != nil {
		return nil, err
	}
	return NewLocalServer(cfg), nil
}

// DefaultRegistry returns a registry with the built-in providers.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Entry{
			Name:    KindCloud,
			Aliases: []string{"gemini", "google"},
			Section: SectionCloud,
			New:     newCloudFromOptions,
		},
		Entry{
			Name:    KindLocalServer,
			Aliases: []string{"ollama", "local"},
			Section: SectionLocalServer,
			New:     newLocalServerFromOptions,
		},
	)
}

var defaultRegistry = DefaultRegistry()

// Resolve resolves name against the built-in providers.
func Resolve(name string, sections Sections) (Provider, string, error) {
	return defaultRegistry.Resolve(name, sections)
}

// Names returns the built-in provider names.
func Names() []string {
	return defaultRegistry.Names()
}

// Entries returns the built-in provider entries.
func Entries() []Entry {
	return defaultRegistry.Entries()
}
