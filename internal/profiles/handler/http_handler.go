package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"imamportal_backend/internal/profiles/repository"
	"imamportal_backend/internal/profiles/service"
	"imamportal_backend/platform/httpkit"
	"imamportal_backend/platform/validator"
)

type createRequest struct {
	Name       string  `json:"name" validate:"required,max=100"`
	Surname    string  `json:"surname" validate:"required,max=100"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	FileNumber string  `json:"fileNumber" validate:"required,max=64"`
	StatusID   int     `json:"statusId" validate:"omitempty,min=1"`
}

type updateRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Surname  string  `json:"surname" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	StatusID int     `json:"statusId" validate:"required,min=1"`
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

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.DELETE("/:id", h.Delete)
}

func (h *HTTPHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.svc.List(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items, "total": total})
}

func (h *HTTPHandler) Get(c *gin.Context) {
	id, ok := h.profileID(c)
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, p)
}

func (h *HTTPHandler) Create(c *gin.Context) {
	var req createRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), repository.CreateParams{
		Name:       req.Name,
		Surname:    req.Surname,
		Email:      req.Email,
		Phone:      req.Phone,
		FileNumber: req.FileNumber,
		StatusID:   req.StatusID,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, p)
}

func (h *HTTPHandler) Update(c *gin.Context) {
	id, ok := h.profileID(c)
	if !ok {
		return
	}
	var req updateRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, repository.UpdateParams{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Phone:    req.Phone,
		StatusID: req.StatusID,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, p)
}

func (h *HTTPHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.profileID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.svc.UpdateStatus(c.Request.Context(), id, req.StatusID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, p)
}

func (h *HTTPHandler) Delete(c *gin.Context) {
	id, ok := h.profileID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	httpkit.NoContent(c)
}

func (h *HTTPHandler) profileID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid profile id", nil)
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
