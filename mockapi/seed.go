package mockapi

import (
	"fmt"
	"time"

	"github.com/kochabx/eduportal/model"
)

func (s *Server) seedContent() {
	base := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{
		"Admission campaign opens",
		"New laboratory building",
		"International exchange program",
	} {
		ts := base.AddDate(0, 0, i*7)
		s.news.create(model.News{
			Title:     title,
			Content:   title + ".",
			Slug:      slugify(title),
			CreatedAt: ts,
			UpdatedAt: ts,
		})
	}

	regulations := s.categories.create(model.DocumentCategory{Name: "Regulations"})
	curricula := s.categories.create(model.DocumentCategory{Name: "Curricula"})
	past := s.years.create(model.EducationYear{Name: "2024-2025"})
	current := s.years.create(model.EducationYear{Name: "2025-2026", IsActive: true})
	for i, d := range []struct {
		category, year int64
	}{
		{regulations.ID, past.ID},
		{regulations.ID, current.ID},
		{curricula.ID, current.ID},
	} {
		s.documents.create(model.Document{
			Title:      fmt.Sprintf("Document %d", i+1),
			File:       fmt.Sprintf("/media/documents/document-%d.pdf", i+1),
			CategoryID: d.category,
			YearID:     d.year,
			CreatedAt:  base,
			UpdatedAt:  base,
		})
	}

	for _, t := range []model.Teacher{
		{FullName: "Aziza Karimova", Position: "Professor", Department: "Mathematics"},
		{FullName: "Bobur Tursunov", Position: "Senior lecturer", Department: "Physics"},
		{FullName: "Olga Petrova", Position: "Lecturer", Department: "Mathematics"},
	} {
		s.teachers.create(t)
	}
}
