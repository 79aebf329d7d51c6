package model

import "time"

type News struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Document struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	File        string    `json:"file"`
	CategoryID  int64     `json:"categoryId"`
	YearID      int64     `json:"yearId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type DocumentCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type EducationYear struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

type Teacher struct {
	ID         int64  `json:"id"`
	FullName   string `json:"fullName"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Bio        string `json:"bio,omitempty"`
	Image      string `json:"image,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Page is the paginated list envelope used by every list endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// TotalPages returns the number of pages of size limit needed for Count items.
func (p *Page[T]) TotalPages(limit int) int {
	if limit <= 0 || p.Count <= 0 {
		return 1
	}
	return (p.Count + limit - 1) / limit
}
