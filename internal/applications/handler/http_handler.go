package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"imamportal_backend/internal/applications/service"
	"imamportal_backend/platform/httpkit"
	"imamportal_backend/platform/validator"
)

type createFormRequest struct {
	ImamProfileID string `json:"imamProfileId" validate:"required,uuid"`
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"max=4000"`
}

type createBonusRequest struct {
	ImamProfileID string `json:"imamProfileId" validate:"required,uuid"`
	Description   string `json:"description" validate:"required,max=4000"`
	AmountCents   int64  `json:"amountCents" validate:"required,min=1"`
}

type statusRequest struct {
	StatusID int `json:"statusId" validate:"required,min=1"`
}

type HTTPHandler struct {
	svc *service.Service
	val *validator.Validator
}

func NewHTTPHandler(svc *service.Service, val *validator.Validator) *HTTPHandler {
	return &HTTPHandler{svc: svc, val: val}
}

// RegisterForms mounts the aid application form routes.
func (h *HTTPHandler) RegisterForms(rg *gin.RouterGroup) {
	rg.GET("", h.ListForms)
	rg.GET("/:id", h.GetForm)
	rg.POST("", h.CreateForm)
	rg.PATCH("/:id/status", h.UpdateFormStatus)
	rg.DELETE("/:id", h.DeleteForm)
}

// RegisterBonuses mounts the bonus request routes.
func (h *HTTPHandler) RegisterBonuses(rg *gin.RouterGroup) {
	rg.GET("", h.ListBonuses)
	rg.GET("/:id", h.GetBonus)
	rg.POST("", h.CreateBonus)
	rg.PATCH("/:id/status", h.UpdateBonusStatus)
	rg.DELETE("/:id", h.DeleteBonus)
}

func (h *HTTPHandler) ListForms(c *gin.Context) {
	limit, offset := pagination(c)
	items, total, err := h.svc.ListForms(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items, "total": total})
}

func (h *HTTPHandler) GetForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	f, err := h.svc.GetForm(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, f)
}

func (h *HTTPHandler) CreateForm(c *gin.Context) {
	var req createFormRequest
	if !h.bind(c, &req) {
		return
	}
	profileID, _ := uuid.Parse(req.ImamProfileID)
	f, err := h.svc.CreateForm(c.Request.Context(), profileID, req.Title, req.Description)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, f)
}

func (h *HTTPHandler) UpdateFormStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !h.bind(c, &req) {
		return
	}
	f, err := h.svc.UpdateFormStatus(c.Request.Context(), id, req.StatusID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, f)
}

func (h *HTTPHandler) DeleteForm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteForm(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *HTTPHandler) ListBonuses(c *gin.Context) {
	limit, offset := pagination(c)
	items, total, err := h.svc.ListBonuses(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items, "total": total})
}

func (h *HTTPHandler) GetBonus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.svc.GetBonus(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, b)
}

func (h *HTTPHandler) CreateBonus(c *gin.Context) {
	var req createBonusRequest
	if !h.bind(c, &req) {
		return
	}
	profileID, _ := uuid.Parse(req.ImamProfileID)
	b, err := h.svc.CreateBonus(c.Request.Context(), profileID, req.Description, req.AmountCents)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, b)
}

func (h *HTTPHandler) UpdateBonusStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !h.bind(c, &req) {
		return
	}
	b, err := h.svc.UpdateBonusStatus(c.Request.Context(), id, req.StatusID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, b)
}

func (h *HTTPHandler) DeleteBonus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteBonus(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, 400, "invalid request body", err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return false
	}
	return true
}
