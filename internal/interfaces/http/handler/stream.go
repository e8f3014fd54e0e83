package handler

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"

	"linkedin-post-ai/internal/application/post"
	"linkedin-post-ai/internal/domain/entity"
	"linkedin-post-ai/internal/interfaces/http/dto"
	"linkedin-post-ai/pkg/logger"
)

// PostStreamer 流式生成端口；FinishStream 对累积正文做与同步接口一致的清洗
type PostStreamer interface {
	Stream(ctx context.Context, req entity.GenerationRequest) (*schema.StreamReader[*schema.Message], error)
	FinishStream(ctx context.Context, req entity.GenerationRequest, raw string) (entity.GeneratedPost, error)
}

// StreamHandler SSE 流式生成处理器
type StreamHandler struct {
	flow     *post.Flow
	streamer PostStreamer
}

// NewStreamHandler 创建流式处理器
func NewStreamHandler(flow *post.Flow, streamer PostStreamer) *StreamHandler {
	return &StreamHandler{flow: flow, streamer: streamer}
}

// GenerateStream 通过 SSE 逐段推送生成内容
// 事件：content {chunk,index}，done {text,tip}，error {message}
// @Router /v1/posts/generate/stream [post]
func (h *StreamHandler) GenerateStream(c *gin.Context) {
	body, err := bindGenerateRequest(c)
	if err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	req, err := h.flow.Validate(ctx, body.Topic, body.Length, body.Language)
	if err != nil {
		dto.AppError(c, err)
		return
	}

	reader, err := h.streamer.Stream(ctx, req)
	if err != nil {
		logger.Error(ctx, "post stream failed to start", err)
		sseHeaders(c)
		c.SSEvent("error", gin.H{"message": post.FailureNotice})
		return
	}
	defer reader.Close()

	sseHeaders(c)
	var text strings.Builder
	index := 0
	c.Stream(func(w io.Writer) bool {
		if ctx.Err() != nil {
			return false
		}
		msg, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			final, err := h.streamer.FinishStream(ctx, req, text.String())
			if err != nil {
				logger.Error(ctx, "post stream produced no text", err)
				c.SSEvent("error", gin.H{"message": post.FailureNotice})
				return false
			}
			c.SSEvent("done", gin.H{"text": final.Text, "tip": h.flow.Tip()})
			return false
		}
		if err != nil {
			logger.Error(ctx, "post stream interrupted", err)
			c.SSEvent("error", gin.H{"message": post.FailureNotice})
			return false
		}
		if msg == nil || msg.Content == "" {
			return true
		}
		text.WriteString(msg.Content)
		c.SSEvent("content", gin.H{"chunk": msg.Content, "index": index})
		index++
		return true
	})
}

func sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}
