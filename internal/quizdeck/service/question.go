package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
	"github.com/quizdeck/quizdeck/pkg/idx"
	"github.com/quizdeck/quizdeck/pkg/slogx"
)

var ErrCategoryNotFound = errors.New("category not found")

// DefaultQuestionPageSize bounds unpaginated admin listings.
const DefaultQuestionPageSize = 100

// QuestionService is the admin-side question CRUD.
type QuestionService struct {
	Store store.Store
}

type QuestionInput struct {
	QuestionText  string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
	Explanation   string
	CategoryID    string
}

func (in QuestionInput) validate() error {
	var reasons []string

	if in.QuestionText == "" {
		reasons = append(reasons, "question_text is required")
	}
	if in.OptionA == "" || in.OptionB == "" || in.OptionC == "" || in.OptionD == "" {
		reasons = append(reasons, "all four options are required")
	}
	if !domain.ValidAnswerLetter(in.CorrectAnswer) {
		reasons = append(reasons, "correct answer must be A, B, C, or D")
	}
	if in.CategoryID == "" {
		reasons = append(reasons, "category_id is required")
	}

	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

func (s *QuestionService) requireCategory(ctx context.Context, categoryID string) error {
	_, err := s.Store.Categories().GetByID(ctx, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCategoryNotFound
	}
	return err
}

func (s *QuestionService) Create(ctx context.Context, in QuestionInput) (domain.Question, error) {
	log := slogx.FromContext(ctx)

	if err := in.validate(); err != nil {
		return domain.Question{}, err
	}
	if err := s.requireCategory(ctx, in.CategoryID); err != nil {
		return domain.Question{}, err
	}

	q := domain.Question{
		ID:            idx.New().String(),
		QuestionText:  in.QuestionText,
		OptionA:       in.OptionA,
		OptionB:       in.OptionB,
		OptionC:       in.OptionC,
		OptionD:       in.OptionD,
		CorrectAnswer: strings.ToUpper(in.CorrectAnswer),
		Explanation:   in.Explanation,
		CategoryID:    in.CategoryID,
	}
	if err := s.Store.Questions().Create(ctx, q); err != nil {
		log.Error("failed to create question", slog.Any("error", err))
		return domain.Question{}, err
	}

	log.Info("question created",
		slog.String("question_id", q.ID),
		slog.String("category_id", q.CategoryID),
	)
	return q, nil
}

func (s *QuestionService) Get(ctx context.Context, id string) (domain.Question, error) {
	q, err := s.Store.Questions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Question{}, ErrNotFound
		}
		return domain.Question{}, err
	}
	return q, nil
}

// List pages through questions, optionally filtered to one category.
func (s *QuestionService) List(ctx context.Context, categoryID string, skip, limit int) ([]domain.Question, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > DefaultQuestionPageSize {
		limit = DefaultQuestionPageSize
	}
	return s.Store.Questions().List(ctx, categoryID, skip, limit)
}

func (s *QuestionService) Update(ctx context.Context, id string, in QuestionInput) (domain.Question, error) {
	log := slogx.FromContext(ctx)

	q, err := s.Get(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}

	if in.QuestionText != "" {
		q.QuestionText = in.QuestionText
	}
	if in.OptionA != "" {
		q.OptionA = in.OptionA
	}
	if in.OptionB != "" {
		q.OptionB = in.OptionB
	}
	if in.OptionC != "" {
		q.OptionC = in.OptionC
	}
	if in.OptionD != "" {
		q.OptionD = in.OptionD
	}
	if in.CorrectAnswer != "" {
		if !domain.ValidAnswerLetter(in.CorrectAnswer) {
			return domain.Question{}, &ValidationError{
				Reasons: []string{"correct answer must be A, B, C, or D"},
			}
		}
		q.CorrectAnswer = strings.ToUpper(in.CorrectAnswer)
	}
	if in.Explanation != "" {
		q.Explanation = in.Explanation
	}
	if in.CategoryID != "" && in.CategoryID != q.CategoryID {
		if err := s.requireCategory(ctx, in.CategoryID); err != nil {
			return domain.Question{}, err
		}
		q.CategoryID = in.CategoryID
	}

	if err := s.Store.Questions().Update(ctx, q); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Question{}, ErrNotFound
		}
		log.Error("failed to update question", slog.Any("error", err))
		return domain.Question{}, err
	}

	return s.Get(ctx, id)
}

func (s *QuestionService) Delete(ctx context.Context, id string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Questions().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		log.Error("failed to delete question", slog.Any("error", err))
		return err
	}

	log.Info("question deleted", slog.String("question_id", id))
	return nil
}
