package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/quizdeck/service"
	"github.com/quizdeck/quizdeck/pkg/httpx"
)

// CategoriesHandler serves the /admin/categories CRUD.
type CategoriesHandler struct {
	CategoryService *service.CategoryService
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	cat, err := h.CategoryService.Create(r.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCategoryResponse(cat))
}

func (h *CategoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cats, err := h.CategoryService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = toCategoryResponse(c)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *CategoriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cat, err := h.CategoryService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCategoryResponse(cat))
}

func (h *CategoriesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errInvalidBody.WriteError(w)
		return
	}

	cat, err := h.CategoryService.Update(r.Context(), r.PathValue("id"), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toCategoryResponse(cat))
}

func (h *CategoriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.CategoryService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: "category deleted successfully",
	})
}
