// Package api wraps the upstream REST endpoints in typed services. Every call
// goes through a session-bound client.Client.
package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kochabx/eduportal/client"
	"github.com/kochabx/eduportal/locale"
	"github.com/kochabx/eduportal/log"
	"github.com/kochabx/eduportal/validator"
)

// Upload is an optional file sent with a multipart create or update.
type Upload struct {
	Name    string
	Content io.Reader
}

// ListOptions selects one page of a list endpoint. Zero values are omitted.
type ListOptions struct {
	Limit int `form:"limit" validate:"gte=0,lte=100"`
	Page  int `form:"page" validate:"gte=0"`
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	return q
}

type Option func(*base)

// WithValidator replaces validator.Default.
func WithValidator(v *validator.Validator) Option {
	return func(b *base) {
		if v != nil {
			b.validate = v
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// API groups the upstream services of one session.
type API struct {
	Auth       *Auth
	News       *News
	Documents  *Documents
	Categories *Categories
	Years      *Years
	Teachers   *Teachers
}

// New binds every service to c.
func New(c *client.Client, opts ...Option) *API {
	b := &base{client: c, validate: validator.Default, logger: log.G}
	for _, opt := range opts {
		opt(b)
	}
	return &API{
		Auth:       &Auth{b},
		News:       &News{b},
		Documents:  &Documents{b},
		Categories: &Categories{base: b, path: "/api/v1/documents/category/"},
		Years:      &Years{base: b, path: "/api/v1/documents/year/"},
		Teachers:   &Teachers{b},
	}
}

type base struct {
	client   *client.Client
	validate *validator.Validator
	logger   *log.Logger
}

// check validates the input in the request locale; failures are 422.
func (b *base) check(ctx context.Context, in any) error {
	lang, _ := locale.FromContext(ctx)
	if lang == "" {
		lang = locale.DefaultLocale
	}
	if err := b.validate.StructLang(ctx, lang, in); err != nil {
		return validator.ToError(err)
	}
	return nil
}

func fetch[T any](ctx context.Context, b *base, p string, q url.Values) (*T, error) {
	var v T
	if _, err := b.client.Get(p, client.WithContext(ctx), client.WithQuery(q), client.WithResponse(&v)); err != nil {
		return nil, err
	}
	return &v, nil
}

func send[T any](ctx context.Context, b *base, method, p string, body any) (*T, error) {
	var v T
	if _, err := b.client.Request(method, p, body, client.WithContext(ctx), client.WithResponse(&v)); err != nil {
		return nil, err
	}
	return &v, nil
}

func remove(ctx context.Context, b *base, p string) error {
	_, err := b.client.Delete(p, client.WithContext(ctx))
	return err
}

func item(collection string, id int64) string {
	return collection + strconv.FormatInt(id, 10) + "/"
}

// multipartMethod is PUT for updates and POST for creates.
func multipartMethod(update bool) string {
	if update {
		return http.MethodPut
	}
	return http.MethodPost
}
