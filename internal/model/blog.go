package model

import "time"

// BlogPost is the domain and wire representation of a blog post.
// It carries no persistence tags; each store maps it to its own record type.
type BlogPost struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Author    string     `json:"author"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// CreateBlogInput is the request body accepted when creating a post.
type CreateBlogInput struct {
	Title   string   `json:"title" validate:"required,max=100"`
	Content string   `json:"content" validate:"required"`
	Author  string   `json:"author" validate:"required,max=50"`
	Tags    []string `json:"tags"`
}

// UpdateBlogInput is a partial update. Nil fields are left untouched.
type UpdateBlogInput struct {
	Title   *string   `json:"title" validate:"omitnil,min=1,max=100"`
	Content *string   `json:"content" validate:"omitnil,min=1"`
	Author  *string   `json:"author" validate:"omitnil,min=1,max=50"`
	Tags    *[]string `json:"tags"`
}

// IsEmpty reports whether the update carries no fields.
func (u UpdateBlogInput) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Author == nil && u.Tags == nil
}
