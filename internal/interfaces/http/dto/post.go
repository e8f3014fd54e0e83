package dto

import (
	"linkedin-post-ai/internal/application/post"
	"linkedin-post-ai/internal/domain/entity"
)

// GeneratePostRequest 生成帖子请求
type GeneratePostRequest struct {
	Topic    string `json:"topic" form:"topic" binding:"required"`
	Length   string `json:"length" form:"length" binding:"required"`
	Language string `json:"language" form:"language" binding:"required"`
}

// GeneratePostResponse 生成帖子响应
type GeneratePostResponse struct {
	Topic    string `json:"topic"`
	Length   string `json:"length"`
	Language string `json:"language"`
	Text     string `json:"text"`
	Tip      string `json:"tip,omitempty"`
}

// ToGeneratePostResponse 由成功的提交结果构造响应
func ToGeneratePostResponse(out *post.Outcome) *GeneratePostResponse {
	resp := &GeneratePostResponse{
		Topic:    out.Request.Topic,
		Length:   string(out.Request.Length),
		Language: string(out.Request.Language),
		Tip:      out.Tip,
	}
	if out.Post != nil {
		resp.Text = out.Post.Text
	}
	return resp
}

// TopicListResponse 话题目录
type TopicListResponse struct {
	Topics []string `json:"topics"`
}

// OptionItem 下拉选项与提示文案
type OptionItem struct {
	Value string `json:"value"`
	Hint  string `json:"hint"`
}

// OptionsResponse 可选的长度与语言
type OptionsResponse struct {
	Lengths   []OptionItem `json:"lengths"`
	Languages []OptionItem `json:"languages"`
}

// NewOptionsResponse 构造选项响应
func NewOptionsResponse() *OptionsResponse {
	resp := &OptionsResponse{}
	for _, l := range entity.Lengths() {
		resp.Lengths = append(resp.Lengths, OptionItem{Value: string(l), Hint: l.Hint()})
	}
	for _, l := range entity.Languages() {
		resp.Languages = append(resp.Languages, OptionItem{Value: string(l), Hint: l.Hint()})
	}
	return resp
}
