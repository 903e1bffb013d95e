package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/pkg/idx"
	"github.com/quizdeck/quizdeck/pkg/slogx"
)

var ErrCategoryNameTaken = errors.New("category name already exists")

// CategoryService is the admin-side category CRUD.
type CategoryService struct {
	Store store.Store
}

type CategoryInput struct {
	Name        string
	Description string
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (domain.Category, error) {
	log := slogx.FromContext(ctx)

	if in.Name == "" {
		return domain.Category{}, &ValidationError{Reasons: []string{"name is required"}}
	}

	cat := domain.Category{
		ID:          idx.New().String(),
		Name:        in.Name,
		Description: in.Description,
	}
	if err := s.Store.Categories().Create(ctx, cat); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Category{}, ErrCategoryNameTaken
		}
		log.Error("failed to create category", slog.Any("error", err))
		return domain.Category{}, err
	}

	log.Info("category created",
		slog.String("category_id", cat.ID),
		slog.String("name", cat.Name),
	)
	return cat, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (domain.Category, error) {
	cat, err := s.Store.Categories().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Category{}, ErrNotFound
		}
		return domain.Category{}, err
	}
	return cat, nil
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.Store.Categories().List(ctx)
}

func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	log := slogx.FromContext(ctx)

	cat, err := s.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	if in.Name != "" {
		cat.Name = in.Name
	}
	if in.Description != "" {
		cat.Description = in.Description
	}

	if err := s.Store.Categories().Update(ctx, cat); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return domain.Category{}, ErrCategoryNameTaken
		case errors.Is(err, store.ErrNotFound):
			return domain.Category{}, ErrNotFound
		}
		log.Error("failed to update category", slog.Any("error", err))
		return domain.Category{}, err
	}

	return s.Get(ctx, id)
}

// Delete removes a category; its questions go with it via the FK cascade.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Categories().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		log.Error("failed to delete category", slog.Any("error", err))
		return err
	}

	log.Info("category deleted", slog.String("category_id", id))
	return nil
}
