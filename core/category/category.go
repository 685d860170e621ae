package category

import "time"

type Category struct {
	ID        string    `json:"id" db:"category_id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type SubCategory struct {
	ID         string    `json:"id" db:"subcategory_id"`
	CategoryID string    `json:"categoryId" db:"category_id"`
	Name       string    `json:"name" db:"name"`
	Slug       string    `json:"slug" db:"slug"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

type CategoryNew struct {
	Name string `json:"name" validate:"required,min=3,max=100"`
}

type SubCategoryNew struct {
	Name string `json:"name" validate:"required,min=3,max=100"`
}

// Detail is a category along with its sub categories.
type Detail struct {
	Category
	SubCategories []SubCategory `json:"subcategories"`
}
