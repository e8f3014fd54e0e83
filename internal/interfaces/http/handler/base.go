package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"linkedin-post-ai/internal/interfaces/http/dto"
)

// bindGenerateRequest 兼容 JSON 与表单提交
func bindGenerateRequest(c *gin.Context) (*dto.GeneratePostRequest, error) {
	var req dto.GeneratePostRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, err
	}
	req.Topic = strings.TrimSpace(req.Topic)
	req.Length = strings.TrimSpace(req.Length)
	req.Language = strings.TrimSpace(req.Language)
	return &req, nil
}
