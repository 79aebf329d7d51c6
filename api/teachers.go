package api

import (
	"context"

	"github.com/kochabx/eduportal/client"
	"github.com/kochabx/eduportal/model"
)

const (
	teacherListPath   = "/api/v1/teachers/list/teacher/"
	teacherDetailPath = "/api/v1/teachers/detail/teacher/"
	teacherPostPath   = "/api/v1/teachers/post/teacher/"
	teacherDeletePath = "/api/v1/teachers/delete/teacher/"
)

// TeacherFilter narrows the teacher list by department.
type TeacherFilter struct {
	ListOptions
	Department string `form:"department"`
}

type Teachers struct {
	*base
}

func (t *Teachers) List(ctx context.Context, f TeacherFilter) (*model.Page[model.Teacher], error) {
	q := f.query()
	if f.Department != "" {
		q.Set("department", f.Department)
	}
	return fetch[model.Page[model.Teacher]](ctx, t.base, teacherListPath, q)
}

func (t *Teachers) Get(ctx context.Context, id int64) (*model.Teacher, error) {
	return fetch[model.Teacher](ctx, t.base, item(teacherDetailPath, id), nil)
}

func (t *Teachers) Create(ctx context.Context, in model.TeacherInput, photo *Upload) (*model.Teacher, error) {
	return t.save(ctx, teacherPostPath, false, in, photo)
}

func (t *Teachers) Update(ctx context.Context, id int64, in model.TeacherInput, photo *Upload) (*model.Teacher, error) {
	return t.save(ctx, item(teacherPostPath, id), true, in, photo)
}

func (t *Teachers) Delete(ctx context.Context, id int64) error {
	return remove(ctx, t.base, item(teacherDeletePath, id))
}

func (t *Teachers) save(ctx context.Context, p string, update bool, in model.TeacherInput, photo *Upload) (*model.Teacher, error) {
	if err := t.check(ctx, &in); err != nil {
		return nil, err
	}
	form := client.NewForm().
		Set("fullName", in.FullName).
		Set("position", in.Position).
		Set("department", in.Department).
		Set("bio", in.Bio).
		Set("email", in.Email).
		Set("phone", in.Phone)
	if photo != nil {
		form.SetFile("image", photo.Name, photo.Content)
	}
	return send[model.Teacher](ctx, t.base, multipartMethod(update), p, form)
}
