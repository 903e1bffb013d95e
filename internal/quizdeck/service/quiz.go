package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/store"
)

var ErrNoQuestions = errors.New("no questions found for this category")

// DefaultQuizSize is how many questions a quiz draw returns when the caller
// doesn't say.
const DefaultQuizSize = 10

// QuizService is the public, unauthenticated quiz-taking API.
type QuizService struct {
	Store store.Store
}

// Categories lists every category with its question count.
func (s *QuizService) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	return s.Store.Categories().ListSummaries(ctx)
}

func (s *QuizService) category(ctx context.Context, categoryID string) (domain.Category, error) {
	cat, err := s.Store.Categories().GetByID(ctx, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Category{}, ErrCategoryNotFound
	}
	return cat, err
}

// Questions returns up to limit questions from a category, in stored order.
// The category must exist and hold at least one question.
func (s *QuizService) Questions(ctx context.Context, categoryID string, limit int) ([]domain.Question, domain.Category, error) {
	if limit <= 0 {
		limit = DefaultQuizSize
	}

	cat, err := s.category(ctx, categoryID)
	if err != nil {
		return nil, domain.Category{}, err
	}

	questions, err := s.Store.Questions().List(ctx, categoryID, 0, limit)
	if err != nil {
		return nil, domain.Category{}, err
	}
	if len(questions) == 0 {
		return nil, domain.Category{}, ErrNoQuestions
	}
	return questions, cat, nil
}

// RandomQuestions draws up to limit questions from a category in random
// order.
func (s *QuizService) RandomQuestions(ctx context.Context, categoryID string, limit int) ([]domain.Question, domain.Category, error) {
	if limit <= 0 {
		limit = DefaultQuizSize
	}

	cat, err := s.category(ctx, categoryID)
	if err != nil {
		return nil, domain.Category{}, err
	}

	questions, err := s.Store.Questions().ListRandomByCategory(ctx, categoryID, limit)
	if err != nil {
		return nil, domain.Category{}, err
	}
	if len(questions) == 0 {
		return nil, domain.Category{}, ErrNoQuestions
	}
	return questions, cat, nil
}

// Submit scores a set of answers against a category's questions.
//
// The denominator is the number of SUBMITTED answers, not the number of
// questions in the category: answering 3 of 10 questions all correctly
// scores 100. Unknown question ids and letters outside A-D simply score as
// wrong. Letter comparison is case-insensitive. The percentage is rounded
// to two decimals; an empty submission scores zero.
func (s *QuizService) Submit(ctx context.Context, categoryID string, answers []domain.QuizAnswer) (domain.QuizResult, error) {
	cat, err := s.category(ctx, categoryID)
	if err != nil {
		return domain.QuizResult{}, err
	}

	questions, err := s.Store.Questions().ListByCategory(ctx, categoryID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if len(questions) == 0 {
		return domain.QuizResult{}, ErrNoQuestions
	}

	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	correct := 0
	total := len(answers)
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if ok && strings.ToUpper(a.SelectedAnswer) == q.CorrectAnswer {
			correct++
		}
	}

	var score float64
	if total > 0 {
		score = math.Round(float64(correct)/float64(total)*100*100) / 100
	}

	return domain.QuizResult{
		TotalQuestions:  total,
		CorrectAnswers:  correct,
		ScorePercentage: score,
		CategoryName:    cat.Name,
	}, nil
}
