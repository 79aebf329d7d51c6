package model

// Credentials is the login form.
type Credentials struct {
	Username string `json:"username" form:"username" validate:"required,max=150"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

// NewsInput creates or updates a news item. The image travels as a file part.
type NewsInput struct {
	Title   string `json:"title" form:"title" validate:"required,max=255"`
	Content string `json:"content" form:"content" validate:"required"`
	Slug    string `json:"slug,omitempty" form:"slug" validate:"omitempty,max=255"`
}

// DocumentInput creates or updates a document. The file travels as a file part.
type DocumentInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=255"`
	Description string `json:"description,omitempty" form:"description"`
	CategoryID  int64  `json:"categoryId" form:"categoryId" validate:"required,gt=0"`
	YearID      int64  `json:"yearId" form:"yearId" validate:"required,gt=0"`
}

type CategoryInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" form:"description"`
}

type YearInput struct {
	Name     string `json:"name" form:"name" validate:"required,max=32"`
	IsActive bool   `json:"isActive" form:"isActive"`
}

// TeacherInput creates or updates a teacher card. The photo travels as a file part.
type TeacherInput struct {
	FullName   string `json:"fullName" form:"fullName" validate:"required,max=255"`
	Position   string `json:"position" form:"position" validate:"required,max=255"`
	Department string `json:"department" form:"department" validate:"required,max=255"`
	Bio        string `json:"bio,omitempty" form:"bio"`
	Email      string `json:"email,omitempty" form:"email" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty" form:"phone" validate:"omitempty,max=32"`
}
