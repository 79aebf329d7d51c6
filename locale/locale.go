// Package locale decides which display language a page request is served in.
package locale

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

var (
	DefaultSupported = []string{"uz", "ru", "en"}
	DefaultLocale    = "en"
	// DefaultExempt are path prefixes that bypass locale routing. A prefix
	// matches the path itself and everything below it.
	DefaultExempt = []string{
		"/static",
		"/api",
		"/auth",
		"/admin",
		"/profile",
		"/swagger",
		"/favicon.ico",
		"/health",
		"/metrics",
	}
)

// Action is what the caller must do with a request.
type Action int

const (
	Pass Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "pass"
}

// Decision is the outcome of Resolve. Locale is empty for exempt paths.
type Decision struct {
	Action   Action
	Locale   string
	Location string
}

// Resolver maps request paths to supported locales.
type Resolver struct {
	codes   []string
	def     string
	exempt  []string
	bases   []language.Base
	matcher language.Matcher
}

type Option func(*Resolver)

func WithSupported(codes ...string) Option {
	return func(r *Resolver) {
		r.codes = slices.Clone(codes)
	}
}

func WithDefault(code string) Option {
	return func(r *Resolver) {
		r.def = code
	}
}

// WithExempt replaces the exempt prefixes.
func WithExempt(prefixes ...string) Option {
	return func(r *Resolver) {
		r.exempt = slices.Clone(prefixes)
	}
}

func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		codes:  slices.Clone(DefaultSupported),
		def:    DefaultLocale,
		exempt: slices.Clone(DefaultExempt),
	}
	for _, opt := range opts {
		opt(r)
	}

	if len(r.codes) == 0 {
		return nil, fmt.Errorf("locale: no supported locales")
	}
	if !slices.Contains(r.codes, r.def) {
		return nil, fmt.Errorf("locale: default %q is not in supported set %v", r.def, r.codes)
	}

	// The default goes first so the matcher falls back to it.
	ordered := append([]string{r.def}, slices.DeleteFunc(slices.Clone(r.codes), func(c string) bool { return c == r.def })...)
	tags := make([]language.Tag, len(ordered))
	r.bases = make([]language.Base, len(ordered))
	for i, c := range ordered {
		tag, err := language.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("locale: invalid code %q: %w", c, err)
		}
		tags[i] = tag
		r.bases[i], _ = tag.Base()
	}
	r.codes = ordered
	r.matcher = language.NewMatcher(tags)

	for i, p := range r.exempt {
		r.exempt[i] = "/" + strings.Trim(p, "/")
	}
	return r, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *Resolver {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Supported returns the supported codes, default first.
func (r *Resolver) Supported() []string {
	return slices.Clone(r.codes)
}

func (r *Resolver) Default() string {
	return r.def
}

// IsSupported reports whether code is one of the supported locales.
func (r *Resolver) IsSupported(code string) bool {
	return slices.Contains(r.codes, code)
}

// Exempt reports whether path bypasses locale routing.
func (r *Resolver) Exempt(path string) bool {
	for _, p := range r.exempt {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	last := path[strings.LastIndexByte(path, '/')+1:]
	return strings.Contains(last, ".")
}

// Resolve decides whether path already carries a locale. When it does not,
// the returned Location is path prefixed with the negotiated locale; the root
// path maps to "/{locale}/".
func (r *Resolver) Resolve(path, acceptLanguage string) Decision {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	if r.Exempt(path) {
		return Decision{Action: Pass}
	}

	first, _, _ := strings.Cut(path[1:], "/")
	if r.IsSupported(first) {
		return Decision{Action: Pass, Locale: first}
	}

	loc := r.Negotiate(acceptLanguage)
	return Decision{Action: Redirect, Locale: loc, Location: "/" + loc + path}
}

// ResolveURL is Resolve with the query string carried over to Location.
func (r *Resolver) ResolveURL(u *url.URL, acceptLanguage string) Decision {
	d := r.Resolve(u.Path, acceptLanguage)
	if d.Action == Redirect && u.RawQuery != "" {
		d.Location += "?" + u.RawQuery
	}
	return d
}

// Negotiate picks the supported locale that best fits an Accept-Language
// header, or the default when nothing matches. Preferences are tried in
// weight order by base language, so "uz-Cyrl-UZ" selects "uz"; the matcher
// only decides when no preferred base language is supported.
func (r *Resolver) Negotiate(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return r.def
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return r.def
	}
	for _, p := range prefs {
		// "*" and other tags without a language subtag only guess a base
		base, conf := p.Base()
		if conf != language.Exact {
			continue
		}
		if i := slices.Index(r.bases, base); i >= 0 {
			return r.codes[i]
		}
	}
	_, idx, conf := r.matcher.Match(prefs...)
	if conf == language.No || idx < 0 || idx >= len(r.codes) {
		return r.def
	}
	return r.codes[idx]
}
