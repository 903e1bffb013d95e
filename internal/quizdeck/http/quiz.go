package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quizdeck/quizdeck/internal/quizdeck/domain"
	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// QuizHandler serves the public, unauthenticated /quiz endpoints.
type QuizHandler struct {
	QuizService *service.QuizService
}

type quizCategoryResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"question_count"`
}

// HandleCategories serves GET /quiz/categories.
func (h *QuizHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.QuizService.Categories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]quizCategoryResponse, len(summaries))
	for i, s := range summaries {
		out[i] = quizCategoryResponse{
			ID:            s.ID,
			Name:          s.Name,
			Description:   s.Description,
			QuestionCount: s.QuestionCount,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func limitParam(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

// HandleQuestions serves GET /quiz/questions/{categoryID}?limit=.
func (h *QuizHandler) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	questions, cat, err := h.QuizService.Questions(r.Context(), r.PathValue("categoryID"), limitParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toQuizQuestionResponses(questions, cat.Name))
}

// HandleRandom serves GET /quiz/random/{categoryID}?limit=.
func (h *QuizHandler) HandleRandom(w http.ResponseWriter, r *http.Request) {
	questions, cat, err := h.QuizService.RandomQuestions(r.Context(), r.PathValue("categoryID"), limitParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toQuizQuestionResponses(questions, cat.Name))
}

// HandleSubmit serves POST /quiz/submit/{categoryID}.
func (h *QuizHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var answers []domain.QuizAnswer
	if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	result, err := h.QuizService.Submit(r.Context(), r.PathValue("categoryID"), answers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, result)
}
