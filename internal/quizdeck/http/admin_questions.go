package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// QuestionsHandler serves the /admin/questions CRUD.
type QuestionsHandler struct {
	QuestionService *service.QuestionService
}

type questionRequest struct {
	QuestionText  string `json:"question_text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	CategoryID    string `json:"category_id"`
}

func (req questionRequest) toInput() service.QuestionInput {
	return service.QuestionInput{
		QuestionText:  req.QuestionText,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		CategoryID:    req.CategoryID,
	}
}

func (h *QuestionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	q, err := h.QuestionService.Create(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toQuestionResponse(q))
}

// HandleList serves GET /admin/questions?category_id=&skip=&limit=.
func (h *QuestionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	skip, _ := strconv.Atoi(query.Get("skip"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	questions, err := h.QuestionService.List(r.Context(), query.Get("category_id"), skip, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]questionResponse, len(questions))
	for i, q := range questions {
		out[i] = toQuestionResponse(q)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *QuestionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q, err := h.QuestionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toQuestionResponse(q))
}

func (h *QuestionsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	q, err := h.QuestionService.Update(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toQuestionResponse(q))
}

func (h *QuestionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.QuestionService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "question deleted successfully",
	})
}
