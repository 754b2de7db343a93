package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"imamportal_backend/internal/messages/service"
	"imamportal_backend/platform/httpkit"
	"imamportal_backend/platform/validator"
)

type createConversationRequest struct {
	Topic          string   `json:"topic" validate:"required,max=200"`
	ParticipantIDs []string `json:"participantIds" validate:"required,min=2,dive,uuid"`
}

type sendMessageRequest struct {
	SenderProfileID string `json:"senderProfileId" validate:"required,uuid"`
	Body            string `json:"body" validate:"required,max=8000"`
}

type HTTPHandler struct {
	svc *service.Service
	val *validator.Validator
}

func NewHTTPHandler(svc *service.Service, val *validator.Validator) *HTTPHandler {
	return &HTTPHandler{svc: svc, val: val}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListConversations)
	rg.GET("/:id", h.GetConversation)
	rg.POST("", h.CreateConversation)
	rg.GET("/:id/messages", h.ListMessages)
	rg.POST("/:id/messages", h.SendMessage)
}

func (h *HTTPHandler) ListConversations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.svc.ListConversations(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items, "total": total})
}

func (h *HTTPHandler) GetConversation(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	conv, err := h.svc.GetConversation(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, conv)
}

func (h *HTTPHandler) CreateConversation(c *gin.Context) {
	var req createConversationRequest
	if !h.bind(c, &req) {
		return
	}
	ids := make([]uuid.UUID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, _ := uuid.Parse(raw)
		ids = append(ids, id)
	}
	conv, err := h.svc.CreateConversation(c.Request.Context(), req.Topic, ids)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, conv)
}

func (h *HTTPHandler) ListMessages(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.svc.ListMessages(c.Request.Context(), id, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": items})
}

func (h *HTTPHandler) SendMessage(c *gin.Context) {
	id, ok := conversationID(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if !h.bind(c, &req) {
		return
	}
	sender, _ := uuid.Parse(req.SenderProfileID)
	msg, err := h.svc.SendMessage(c.Request.Context(), id, sender, req.Body)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, msg)
}

func conversationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, 400, "invalid conversation id", nil)
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
