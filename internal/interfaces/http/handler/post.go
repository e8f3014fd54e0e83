package handler

import (
	"github.com/gin-gonic/gin"

	"linkedin-post-ai/internal/application/post"
	"linkedin-post-ai/internal/interfaces/http/dto"
	apperrors "linkedin-post-ai/pkg/errors"
)

// PostHandler 帖子生成 JSON 接口
type PostHandler struct {
	flow *post.Flow
}

// NewPostHandler 创建帖子处理器
func NewPostHandler(flow *post.Flow) *PostHandler {
	return &PostHandler{flow: flow}
}

// ListTopics 返回当前话题目录
// @Router /v1/topics [get]
func (h *PostHandler) ListTopics(c *gin.Context) {
	opts, err := h.flow.Options(c.Request.Context())
	if err != nil {
		dto.AppError(c, err)
		return
	}
	topics := opts.Topics
	if topics == nil {
		topics = []string{}
	}
	dto.Success(c, &dto.TopicListResponse{Topics: topics})
}

// ListOptions 返回长度与语言选项及提示
// @Router /v1/options [get]
func (h *PostHandler) ListOptions(c *gin.Context) {
	dto.Success(c, dto.NewOptionsResponse())
}

// Generate 同步生成帖子
// @Router /v1/posts/generate [post]
func (h *PostHandler) Generate(c *gin.Context) {
	req, err := bindGenerateRequest(c)
	if err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	out, err := h.flow.Submit(c.Request.Context(), nil, req.Topic, req.Length, req.Language)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	if out.State == post.StateFailed {
		dto.AppError(c, apperrors.ErrGenerationFailed.WithDetail(out.Notice).WithError(out.Failure))
		return
	}
	dto.Success(c, dto.ToGeneratePostResponse(out))
}
