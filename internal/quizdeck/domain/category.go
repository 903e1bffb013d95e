package domain

import "time"

// Category groups questions. Name is globally unique.
type Category struct {
	ID          string
	Name        string
	Description string // optional
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategorySummary is a category with its question count, as served on the
// public quiz listing.
type CategorySummary struct {
	Category

	QuestionCount int
}
