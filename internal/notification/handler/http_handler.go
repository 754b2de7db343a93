package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"imamportal_backend/internal/notification/deliverylog"
	"imamportal_backend/internal/notification/templates"
	"imamportal_backend/internal/notification/transport"
	"imamportal_backend/platform/httpkit"
	"imamportal_backend/platform/validator"
)

const maxImageUploadBytes = 2 << 20

type HTTPHandler struct {
	svc        *templates.Service
	deliveries *deliverylog.Repository
	val        *validator.Validator
}

func NewHTTPHandler(svc *templates.Service, deliveries *deliverylog.Repository, val *validator.Validator) *HTTPHandler {
	return &HTTPHandler{svc: svc, deliveries: deliveries, val: val}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notification-templates", h.List)
	rg.GET("/notification-templates/:id", h.Get)
	rg.POST("/notification-templates", h.Create)
	rg.PUT("/notification-templates/:id", h.Update)
	rg.DELETE("/notification-templates/:id", h.Delete)
	rg.GET("/notification-templates/:id/image", h.GetImage)
	rg.PUT("/notification-templates/:id/image", h.UploadImage)
	rg.GET("/notification-deliveries", h.ListDeliveries)
}

func (h *HTTPHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.svc.List(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.TemplateResponse, 0, len(items))
	for _, t := range items {
		out = append(out, transport.FromTemplate(t))
	}
	httpkit.OK(c, gin.H{"items": out, "total": total})
}

func (h *HTTPHandler) Get(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromTemplate(t))
}

func (h *HTTPHandler) Create(c *gin.Context) {
	req, ok := h.bindTemplate(c)
	if !ok {
		return
	}
	t, warning, err := h.svc.Create(c.Request.Context(), req.ToParams())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.TemplateWriteResponse{
		Template: transport.FromTemplate(t),
		Warning:  warning,
	})
}

func (h *HTTPHandler) Update(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}
	req, ok := h.bindTemplate(c)
	if !ok {
		return
	}
	t, warning, err := h.svc.Update(c.Request.Context(), id, req.ToParams())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.TemplateWriteResponse{
		Template: transport.FromTemplate(t),
		Warning:  warning,
	})
}

func (h *HTTPHandler) Delete(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *HTTPHandler) GetImage(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}
	data, contentType, err := h.svc.GetImage(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Data(200, contentType, data)
}

func (h *HTTPHandler) UploadImage(c *gin.Context) {
	id, ok := h.templateID(c)
	if !ok {
		return
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImageUploadBytes+1))
	if err != nil {
		httpkit.Error(c, 400, "failed to read image body", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.UploadImage(c.Request.Context(), id, data, c.ContentType())) {
		return
	}
	httpkit.NoContent(c)
}

func (h *HTTPHandler) ListDeliveries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := h.deliveries.List(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items, "total": total})
}

func (h *HTTPHandler) templateID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httpkit.Error(c, 400, "invalid template id", nil)
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) bindTemplate(c *gin.Context) (transport.TemplateRequest, bool) {
	var req transport.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, 400, "invalid request body", err.Error())
		return transport.TemplateRequest{}, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, 400, "validation failed", err.Error())
		return transport.TemplateRequest{}, false
	}
	return req, true
}
