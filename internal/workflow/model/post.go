package model

// PostGenerateInput 帖子生成输入
type PostGenerateInput struct {
	Topic string
	// LengthRange 行数描述，如 "1 to 5 lines"
	LengthRange string
	Language    string
	// Hinglish 为 true 时附加印地语-英语混写规则
	Hinglish bool
	// Examples 写作风格参考，按顺序编号
	Examples []string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// PostGenerateOutput 帖子生成输出
type PostGenerateOutput struct {
	Text string
	Meta LLMUsageMeta
}
