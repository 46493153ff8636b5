package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/promptdeck/internal/model"
	"github.com/xxxsen/promptdeck/internal/pkg/errcode"
	"github.com/xxxsen/promptdeck/internal/pkg/response"
	"github.com/xxxsen/promptdeck/internal/service"
)

type PromptHandler struct {
	prompts  *service.PromptService
	settings *service.SettingsService
}

func NewPromptHandler(prompts *service.PromptService, settings *service.SettingsService) *PromptHandler {
	return &PromptHandler{prompts: prompts, settings: settings}
}

type promptRequest struct {
	Title string   `json:"title"`
	Text  string   `json:"text"`
	Tags  []string `json:"tags"`
}

func (h *PromptHandler) Create(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	p, err := h.prompts.Create(c.Request.Context(), req.Title, req.Text, req.Tags)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, p)
}

func (h *PromptHandler) List(c *gin.Context) {
	prompts, err := h.prompts.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if prompts == nil {
		prompts = []model.Prompt{}
	}
	response.Success(c, gin.H{"items": prompts})
}

func (h *PromptHandler) Get(c *gin.Context) {
	p, err := h.prompts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, p)
}

func (h *PromptHandler) Update(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	p, err := h.prompts.Update(c.Request.Context(), c.Param("id"), req.Title, req.Text, req.Tags)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, p)
}

func (h *PromptHandler) Delete(c *gin.Context) {
	if err := h.prompts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *PromptHandler) Search(c *gin.Context) {
	matches, err := h.prompts.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": matches})
}

func (h *PromptHandler) GetSettings(c *gin.Context) {
	response.Success(c, h.settings.Load(c.Request.Context()))
}

func (h *PromptHandler) UpdateSettings(c *gin.Context) {
	var req model.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if err := h.settings.Save(c.Request.Context(), req); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}
