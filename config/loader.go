package config

// Loader fills a target struct and optionally reports source changes.
type Loader interface {
	Load(target any) error
	// Watch calls onChange after the source changed. Loaders without a
	// watchable source return nil and never call it.
	Watch(onChange func()) error
}

// LoaderFunc adapts a function to a Loader that cannot be watched.
type LoaderFunc func(target any) error

func (f LoaderFunc) Load(target any) error { return f(target) }

func (LoaderFunc) Watch(func()) error { return nil }
