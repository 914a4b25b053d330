package symptom

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cureverse/cureverse/internal/model/symptom"
	"github.com/cureverse/cureverse/pkg/utils"
)

// Handler symptom数据的HTTP处理器
type Handler struct {
	symptoms symptom.Store
}

// New 创建symptom处理器
func New(symptoms symptom.Store) *Handler {
	return &Handler{
		symptoms: symptoms,
	}
}

// RegisterRoutes 注册symptom相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/symptoms", h.handleList)
	r.Get("/symptoms/{symptomID}", h.handleGet)
	r.Get("/symptoms/match", h.handleMatch)
}

// handleList 列出所有symptom
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.symptoms.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, ok := h.symptoms.FindByID(chi.URLParam(r, "symptomID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "symptom not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}

// handleMatch 按文本匹配symptom
func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		utils.RespondError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	item, ok := h.symptoms.Match(q)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "no matching symptom")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}
