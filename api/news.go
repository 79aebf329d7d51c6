package api

import (
	"context"
	"net/url"

	"github.com/kochabx/eduportal/client"
	"github.com/kochabx/eduportal/model"
)

const newsPath = "/api/v1/about/"

type News struct {
	*base
}

func (n *News) List(ctx context.Context, opts ListOptions) (*model.Page[model.News], error) {
	return fetch[model.Page[model.News]](ctx, n.base, newsPath, opts.query())
}

func (n *News) Get(ctx context.Context, id int64) (*model.News, error) {
	return fetch[model.News](ctx, n.base, item(newsPath, id), nil)
}

func (n *News) GetBySlug(ctx context.Context, slug string) (*model.News, error) {
	return fetch[model.News](ctx, n.base, newsPath+"slug/"+url.PathEscape(slug)+"/", nil)
}

// Create posts a news item; image may be nil.
func (n *News) Create(ctx context.Context, in model.NewsInput, image *Upload) (*model.News, error) {
	return n.save(ctx, newsPath, false, in, image)
}

func (n *News) Update(ctx context.Context, id int64, in model.NewsInput, image *Upload) (*model.News, error) {
	return n.save(ctx, item(newsPath, id), true, in, image)
}

func (n *News) Delete(ctx context.Context, id int64) error {
	return remove(ctx, n.base, item(newsPath, id))
}

func (n *News) save(ctx context.Context, p string, update bool, in model.NewsInput, image *Upload) (*model.News, error) {
	if err := n.check(ctx, &in); err != nil {
		return nil, err
	}
	form := client.NewForm().
		Set("title", in.Title).
		Set("content", in.Content).
		Set("slug", in.Slug)
	if image != nil {
		form.SetFile("image", image.Name, image.Content)
	}
	return send[model.News](ctx, n.base, multipartMethod(update), p, form)
}
