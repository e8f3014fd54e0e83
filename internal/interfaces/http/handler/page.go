package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai/internal/application/post"
	"linkedin-post-ai/internal/config"
	"linkedin-post-ai/internal/domain/entity"
	"linkedin-post-ai/internal/interfaces/http/dto"
	apperrors "linkedin-post-ai/pkg/errors"
)

//go:embed templates/*.html
var templatesFS embed.FS

const pageTemplate = "index.html"

// TooManyRequestsNotice 页面提交被限流时的提示
const TooManyRequestsNotice = "You're generating posts too quickly. Please wait a moment and try again."

// LoadTemplates 解析内嵌页面模板
func LoadTemplates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

// PageHandler 服务端渲染的生成页面
type PageHandler struct {
	flow *post.Flow
	ui   config.UIConfig
}

// NewPageHandler 创建页面处理器
func NewPageHandler(flow *post.Flow, ui config.UIConfig) *PageHandler {
	return &PageHandler{flow: flow, ui: ui}
}

type pageView struct {
	Title    string
	Subtitle string
	Fact     string

	Topics    []string
	Lengths   []dto.OptionItem
	Languages []dto.OptionItem
	Selected  dto.GeneratePostRequest

	LengthHint     string
	LanguageHint   string
	// Loaded 话题目录查询成功；失败时不展示空目录提示
	Loaded         bool
	CanSubmit      bool
	NoTopicsNotice string

	State  post.State
	Post   string
	Tip    string
	Notice string
}

// RateLimited 限流拒绝时重新渲染页面并提示稍后重试
func (h *PageHandler) RateLimited(c *gin.Context) {
	view, _ := h.newView(c, dto.GeneratePostRequest{
		Topic:    c.PostForm("topic"),
		Length:   c.PostForm("length"),
		Language: c.PostForm("language"),
	})
	view.State = post.StateFailed
	view.Notice = TooManyRequestsNotice
	c.HTML(http.StatusTooManyRequests, pageTemplate, view)
}

// Index 渲染空白页面（Idle）
func (h *PageHandler) Index(c *gin.Context) {
	view, status := h.newView(c, dto.GeneratePostRequest{})
	c.HTML(status, pageTemplate, view)
}

// Generate 处理表单提交并重新渲染页面
func (h *PageHandler) Generate(c *gin.Context) {
	req, err := bindGenerateRequest(c)
	if err != nil {
		req = &dto.GeneratePostRequest{
			Topic:    c.PostForm("topic"),
			Length:   c.PostForm("length"),
			Language: c.PostForm("language"),
		}
	}

	view, status := h.newView(c, *req)
	if status != http.StatusOK || !view.CanSubmit {
		c.HTML(status, pageTemplate, view)
		return
	}

	out, err := h.flow.Submit(c.Request.Context(), nil, req.Topic, req.Length, req.Language)
	if err != nil {
		appErr := apperrors.AsAppError(err)
		_ = c.Error(err)
		view.State = post.StateFailed
		view.Notice = appErr.Message
		if appErr.Detail != "" {
			view.Notice += ": " + appErr.Detail
		}
		c.HTML(appErr.HTTPStatus, pageTemplate, view)
		return
	}

	view.State = out.State
	view.Notice = out.Notice
	if out.Post != nil {
		view.Post = out.Post.Text
		view.Tip = out.Tip
	}
	c.HTML(http.StatusOK, pageTemplate, view)
}

func (h *PageHandler) newView(c *gin.Context, selected dto.GeneratePostRequest) (*pageView, int) {
	opts := dto.NewOptionsResponse()
	view := &pageView{
		Title:          h.ui.Title,
		Subtitle:       h.ui.Subtitle,
		Lengths:        opts.Lengths,
		Languages:      opts.Languages,
		Selected:       selected,
		NoTopicsNotice: post.NoTopicsNotice,
		State:          post.StateIdle,
	}
	if view.Selected.Length == "" {
		view.Selected.Length = string(entity.LengthShort)
	}
	if view.Selected.Language == "" {
		view.Selected.Language = string(entity.LanguageEnglish)
	}
	if l, err := entity.ParseLength(view.Selected.Length); err == nil {
		view.LengthHint = l.Hint()
	}
	if l, err := entity.ParseLanguage(view.Selected.Language); err == nil {
		view.LanguageHint = l.Hint()
	}

	options, err := h.flow.Options(c.Request.Context())
	if err != nil {
		appErr := apperrors.AsAppError(err)
		_ = c.Error(err)
		view.Notice = appErr.Message
		return view, appErr.HTTPStatus
	}
	view.Loaded = true
	view.Topics = options.Topics
	view.Fact = options.Fact
	view.CanSubmit = options.CanSubmit()
	return view, http.StatusOK
}
