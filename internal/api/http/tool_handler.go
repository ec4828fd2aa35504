package http

import (
	"net/http"

	"toolirent/internal/domain"
	"toolirent/internal/service"
)

type ToolHandler struct {
	tools service.ToolService
}

func NewToolHandler(tools service.ToolService) *ToolHandler {
	return &ToolHandler{tools: tools}
}

func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	tools, err := h.tools.ListTools(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newToolResponses(tools))
}

func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	tool, err := h.tools.GetTool(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newToolResponse(tool))
}

func (h *ToolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dto toolDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeDomainError(w, r, err)
		return
	}
	tool := &domain.Tool{
		Name:          dto.Name,
		PriceCents:    dto.PriceCents,
		Description:   dto.Description,
		Category:      dto.Category,
		CatalogNumber: dto.CatalogNumber,
		Stock:         dto.Stock,
		Status:        domain.ToolStatus(dto.Status),
	}
	if err := h.tools.CreateTool(r.Context(), tool); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newToolResponse(tool))
}

func (h *ToolHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var dto toolDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeDomainError(w, r, err)
		return
	}
	tool := &domain.Tool{
		ID:            id,
		Name:          dto.Name,
		PriceCents:    dto.PriceCents,
		Description:   dto.Description,
		Category:      dto.Category,
		CatalogNumber: dto.CatalogNumber,
		Status:        domain.ToolStatus(dto.Status),
	}
	if err := h.tools.UpdateTool(r.Context(), tool); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ToolHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.tools.DeleteTool(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Available lists tools with stock > 0 that are not broken.
func (h *ToolHandler) Available(w http.ResponseWriter, r *http.Request) {
	tools, err := h.tools.ListAvailableTools(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newToolResponses(tools))
}

func (h *ToolHandler) Filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	onlyAvailable := q.Get("only_available") == "true"
	tools, err := h.tools.FilterTools(r.Context(), q.Get("category"), domain.ToolStatus(q.Get("status")), onlyAvailable)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newToolResponses(tools))
}

func (h *ToolHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.tools.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// AdjustStock applies a manual stock correction. Admin only.
func (h *ToolHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	var dto stockAdjustDTO
	if err := decodeAndValidate(r, &dto); err != nil {
		writeDomainError(w, r, err)
		return
	}
	tool, err := h.tools.AdjustStock(r.Context(), id, dto.Delta)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newToolResponse(tool))
}
