package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kochabx/eduportal/client"
	"github.com/kochabx/eduportal/model"
)

const documentPath = "/api/v1/documents/document/"

// DocumentFilter narrows the document list. Zero ids match everything.
type DocumentFilter struct {
	ListOptions
	CategoryID int64 `form:"category"`
	YearID     int64 `form:"year"`
}

type Documents struct {
	*base
}

func (d *Documents) List(ctx context.Context, f DocumentFilter) (*model.Page[model.Document], error) {
	q := f.query()
	if f.CategoryID > 0 {
		q.Set("category", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.YearID > 0 {
		q.Set("year", strconv.FormatInt(f.YearID, 10))
	}
	return fetch[model.Page[model.Document]](ctx, d.base, documentPath, q)
}

func (d *Documents) Get(ctx context.Context, id int64) (*model.Document, error) {
	return fetch[model.Document](ctx, d.base, item(documentPath, id), nil)
}

// Create uploads a document. The upstream requires the file on create.
func (d *Documents) Create(ctx context.Context, in model.DocumentInput, file *Upload) (*model.Document, error) {
	return d.save(ctx, documentPath, false, in, file)
}

// Update changes a document; a nil file keeps the stored one.
func (d *Documents) Update(ctx context.Context, id int64, in model.DocumentInput, file *Upload) (*model.Document, error) {
	return d.save(ctx, item(documentPath, id), true, in, file)
}

func (d *Documents) Delete(ctx context.Context, id int64) error {
	return remove(ctx, d.base, item(documentPath, id))
}

func (d *Documents) save(ctx context.Context, p string, update bool, in model.DocumentInput, file *Upload) (*model.Document, error) {
	if err := d.check(ctx, &in); err != nil {
		return nil, err
	}
	form := client.NewForm().
		Set("title", in.Title).
		Set("description", in.Description).
		Set("categoryId", strconv.FormatInt(in.CategoryID, 10)).
		Set("yearId", strconv.FormatInt(in.YearID, 10))
	if file != nil {
		form.SetFile("file", file.Name, file.Content)
	}
	return send[model.Document](ctx, d.base, multipartMethod(update), p, form)
}

// Resource is a plain JSON CRUD collection.
type Resource[T, In any] struct {
	*base
	path string
}

type (
	Categories = Resource[model.DocumentCategory, model.CategoryInput]
	Years      = Resource[model.EducationYear, model.YearInput]
)

func (r *Resource[T, In]) List(ctx context.Context, opts ListOptions) (*model.Page[T], error) {
	return fetch[model.Page[T]](ctx, r.base, r.path, opts.query())
}

func (r *Resource[T, In]) Get(ctx context.Context, id int64) (*T, error) {
	return fetch[T](ctx, r.base, item(r.path, id), nil)
}

func (r *Resource[T, In]) Create(ctx context.Context, in In) (*T, error) {
	if err := r.check(ctx, &in); err != nil {
		return nil, err
	}
	return send[T](ctx, r.base, http.MethodPost, r.path, in)
}

func (r *Resource[T, In]) Update(ctx context.Context, id int64, in In) (*T, error) {
	if err := r.check(ctx, &in); err != nil {
		return nil, err
	}
	return send[T](ctx, r.base, http.MethodPut, item(r.path, id), in)
}

func (r *Resource[T, In]) Delete(ctx context.Context, id int64) error {
	return remove(ctx, r.base, item(r.path, id))
}
