package handler

import (
	"net/http"
	"slotbook/internal/providers/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"strings"

	"github.com/julienschmidt/httprouter"
)

type ProviderHandler struct {
	service service.ProviderService
	log     *logger.Logger
}

func NewProviderHandler(service service.ProviderService, log *logger.Logger) *ProviderHandler {
	return &ProviderHandler{
		service: service,
		log:     log,
	}
}

func (h *ProviderHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ProviderHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var p model.Provider
	if err := httputil.DecodeJSON(r, &p); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var actor *model.Actor
	if a, ok := httputil.ActorFrom(r.Context()); ok {
		actor = &a
	}

	if err := h.service.Create(r.Context(), actor, &p); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, p); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ProviderHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	p, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", p)
}

func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	category := model.Category(strings.TrimSpace(r.URL.Query().Get("category")))

	providers, totalCount, err := h.service.List(r.Context(), category, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, providers, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var update model.ProviderUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	p, err := h.service.Update(r.Context(), actor, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", p)
}

func (h *ProviderHandler) SetWorkingHours(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.writeError(w, "SetWorkingHours", err)
		return
	}

	var req model.WorkingHoursRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SetWorkingHours", err)
		return
	}

	p, err := h.service.SetWorkingHours(r.Context(), actor, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "SetWorkingHours", err)
		return
	}
	h.writeSuccess(w, "SetWorkingHours", p)
}

func (h *ProviderHandler) UpsertException(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.writeError(w, "UpsertException", err)
		return
	}

	var req model.ExceptionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpsertException", err)
		return
	}

	p, err := h.service.UpsertException(r.Context(), actor, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "UpsertException", err)
		return
	}
	h.writeSuccess(w, "UpsertException", p)
}

func (h *ProviderHandler) RemoveException(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.writeError(w, "RemoveException", err)
		return
	}

	p, err := h.service.RemoveException(r.Context(), actor, ps.ByName("id"), ps.ByName("date"))
	if err != nil {
		h.writeError(w, "RemoveException", err)
		return
	}
	h.writeSuccess(w, "RemoveException", p)
}

func (h *ProviderHandler) AddService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.writeError(w, "AddService", err)
		return
	}

	var req model.ServiceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AddService", err)
		return
	}

	svc, err := h.service.AddService(r.Context(), actor, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "AddService", err)
		return
	}

	if err := httputil.WriteCreated(w, svc); err != nil {
		h.log.Error("failed to write created response", "handler", "AddService", "operation", "WriteCreated", "error", err)
	}
}

func (h *ProviderHandler) UpdateService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.RequireActor(r)
	if err != nil {
		h.writeError(w, "UpdateService", err)
		return
	}

	var update model.ServiceUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateService", err)
		return
	}

	svc, err := h.service.UpdateService(r.Context(), actor, ps.ByName("id"), ps.ByName("serviceId"), &update)
	if err != nil {
		h.writeError(w, "UpdateService", err)
		return
	}
	h.writeSuccess(w, "UpdateService", svc)
}

func (h *ProviderHandler) Slots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	date := strings.TrimSpace(query.Get("date"))
	serviceID := strings.TrimSpace(query.Get("service_id"))

	slots, err := h.service.Slots(r.Context(), ps.ByName("id"), serviceID, date)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}
	h.writeSuccess(w, "Slots", slots)
}

func (h *ProviderHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/providers", h.Create)
	router.GET("/api/v1/providers", h.List)
	router.GET("/api/v1/providers/id/:id", h.GetByID)
	router.PATCH("/api/v1/providers/id/:id", h.Update)
	router.PUT("/api/v1/providers/id/:id/working-hours", h.SetWorkingHours)
	router.PUT("/api/v1/providers/id/:id/exceptions", h.UpsertException)
	router.DELETE("/api/v1/providers/id/:id/exceptions/:date", h.RemoveException)
	router.POST("/api/v1/providers/id/:id/services", h.AddService)
	router.PATCH("/api/v1/providers/id/:id/services/:serviceId", h.UpdateService)
	router.GET("/api/v1/providers/id/:id/slots", h.Slots)
}
