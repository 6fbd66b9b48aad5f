package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/portal-acara/server/internal/api/problem"
	"github.com/portal-acara/server/internal/domain/categories"
)

type CategoriesHandler struct {
	Service *categories.Service
	Env     string
}

func NewCategoriesHandler(service *categories.Service, env string) *CategoriesHandler {
	return &CategoriesHandler{Service: service, Env: env}
}

// List is the public category vocabulary.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": newCategoryViews(items)})
}

type categoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationProblem(w, r, err, h.Env)
		return
	}

	category, err := h.Service.Create(r.Context(), req.Name)
	if err != nil {
		h.writeCategoryProblem(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCategoryView(category))
}

func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationProblem(w, r, err, h.Env)
		return
	}

	category, err := h.Service.Rename(r.Context(), id, req.Name)
	if err != nil {
		h.writeCategoryProblem(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newCategoryView(category))
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ValidateAndExtractULID(w, r, "id", h.Env)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeCategoryProblem(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoriesHandler) writeCategoryProblem(w http.ResponseWriter, r *http.Request, err error) {
	var verr *categories.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFieldProblem(w, r, verr.Field, verr.Message, err, h.Env)
	case errors.Is(err, categories.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
	case errors.Is(err, categories.ErrDuplicateName):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Category name already exists", err, h.Env)
	case errors.Is(err, categories.ErrInUse):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Category is referenced by events", err, h.Env)
	default:
		problem.Write(w, r, http.StatusServiceUnavailable, problem.TypeServerError, "Service unavailable", err, h.Env)
	}
}
