package service

import (
	"context"
	"testing"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/stretchr/testify/require"
)

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &CategoryService{Store: st}

	t.Run("create and fetch", func(t *testing.T) {
		cat, err := svc.Create(ctx, CategoryInput{Name: "History", Description: "past events"})
		require.NoError(t, err)
		require.NotEmpty(t, cat.ID)

		got, err := svc.Get(ctx, cat.ID)
		require.NoError(t, err)
		require.Equal(t, "History", got.Name)
		require.Equal(t, "past events", got.Description)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CategoryInput{Name: "History"})
		require.ErrorIs(t, err, ErrCategoryNameTaken)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		var verr *ValidationError
		_, err := svc.Create(ctx, CategoryInput{})
		require.ErrorAs(t, err, &verr)
	})

	t.Run("update applies only provided fields", func(t *testing.T) {
		cat, err := svc.Create(ctx, CategoryInput{Name: "Sciense", Description: "keep me"})
		require.NoError(t, err)

		got, err := svc.Update(ctx, cat.ID, CategoryInput{Name: "Science"})
		require.NoError(t, err)
		require.Equal(t, "Science", got.Name)
		require.Equal(t, "keep me", got.Description)
	})

	t.Run("delete cascades to questions", func(t *testing.T) {
		cat, err := svc.Create(ctx, CategoryInput{Name: "Doomed"})
		require.NoError(t, err)
		q := createQuestion(t, st, cat.ID, "q", "A")

		require.NoError(t, svc.Delete(ctx, cat.ID))

		_, err = svc.Get(ctx, cat.ID)
		require.ErrorIs(t, err, ErrNotFound)

		_, err = st.Questions().GetByID(ctx, q.ID)
		require.Error(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		require.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)

		_, err := svc.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestQuestionCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &QuestionService{Store: st}

	cat := createCategory(t, st, "Physics")
	other := createCategory(t, st, "Chemistry")

	valid := QuestionInput{
		QuestionText:  "What is the speed of light?",
		OptionA:       "3e8 m/s",
		OptionB:       "3e6 m/s",
		OptionC:       "3e10 m/s",
		OptionD:       "none of these",
		CorrectAnswer: "a",
		Explanation:   "in vacuum",
		CategoryID:    cat.ID,
	}

	t.Run("create normalizes the answer letter", func(t *testing.T) {
		q, err := svc.Create(ctx, valid)
		require.NoError(t, err)
		require.Equal(t, "A", q.CorrectAnswer)

		got, err := svc.Get(ctx, q.ID)
		require.NoError(t, err)
		require.Equal(t, valid.QuestionText, got.QuestionText)
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		in := valid
		in.CategoryID = "missing"
		_, err := svc.Create(ctx, in)
		require.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("bad answer letter rejected", func(t *testing.T) {
		in := valid
		in.CorrectAnswer = "E"

		var verr *ValidationError
		_, err := svc.Create(ctx, in)
		require.ErrorAs(t, err, &verr)
		require.Contains(t, verr.Reasons, "correct answer must be A, B, C, or D")
	})

	t.Run("list filters by category and pages", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			createQuestion(t, st, other.ID, "chem question", "B")
		}

		all, err := svc.List(ctx, "", 0, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(all), 6)

		chem, err := svc.List(ctx, other.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, chem, 5)

		paged, err := svc.List(ctx, other.ID, 2, 2)
		require.NoError(t, err)
		require.Len(t, paged, 2)
	})

	t.Run("update can move category after existence check", func(t *testing.T) {
		q := createQuestion(t, st, cat.ID, "movable", "C")

		got, err := svc.Update(ctx, q.ID, QuestionInput{CategoryID: other.ID, CorrectAnswer: "d"})
		require.NoError(t, err)
		require.Equal(t, other.ID, got.CategoryID)
		require.Equal(t, "D", got.CorrectAnswer)

		_, err = svc.Update(ctx, q.ID, QuestionInput{CategoryID: "missing"})
		require.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		q := createQuestion(t, st, cat.ID, "doomed", "A")
		require.NoError(t, svc.Delete(ctx, q.ID))
		require.ErrorIs(t, svc.Delete(ctx, q.ID), ErrNotFound)
	})
}

func TestAccountService(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AccountService{Store: st}

	in := RegistrationInput{
		Username:        "opsadmin",
		Email:           "ops@example.com",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
		Role:            domain.RoleSuperAdmin,
	}

	t.Run("creates active account without verification round trip", func(t *testing.T) {
		user, err := svc.Create(ctx, in)
		require.NoError(t, err)
		require.True(t, user.Active)
		require.False(t, user.EmailVerified)
		require.Nil(t, user.VerificationTokenHash)
	})

	t.Run("duplicates rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, in)
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("list", func(t *testing.T) {
		users, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
	})
}
