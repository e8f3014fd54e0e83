// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Length 帖子长度档位
type Length string

const (
	LengthShort  Length = "Short"
	LengthMedium Length = "Medium"
	LengthLong   Length = "Long"
)

// Lengths 按页面展示顺序返回全部长度档位
func Lengths() []Length {
	return []Length{LengthShort, LengthMedium, LengthLong}
}

// ParseLength 解析长度档位（大小写不敏感）
func ParseLength(s string) (Length, error) {
	for _, l := range Lengths() {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown length %q", s)
}

// LineRange 返回该档位对应的行数描述，用于提示词
func (l Length) LineRange() string {
	switch l {
	case LengthShort:
		return "1 to 5 lines"
	case LengthMedium:
		return "6 to 10 lines"
	case LengthLong:
		return "11 to 15 lines"
	default:
		return ""
	}
}

// Hint 页面上的档位提示
func (l Length) Hint() string {
	switch l {
	case LengthShort:
		return "Quick and impactful!"
	case LengthMedium:
		return "Perfect balance of detail and brevity!"
	default:
		return "In-depth content performs well with thought leadership!"
	}
}

// LengthFromLineCount 按示例帖子的行数归档
func LengthFromLineCount(lines int) Length {
	switch {
	case lines < 5:
		return LengthShort
	case lines <= 10:
		return LengthMedium
	default:
		return LengthLong
	}
}

// Language 帖子语言
type Language string

const (
	LanguageEnglish  Language = "English"
	LanguageHinglish Language = "Hinglish"
)

// Languages 按页面展示顺序返回全部语言
func Languages() []Language {
	return []Language{LanguageEnglish, LanguageHinglish}
}

// ParseLanguage 解析语言（大小写不敏感）
func ParseLanguage(s string) (Language, error) {
	for _, l := range Languages() {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// Hint 页面上的语言提示
func (l Language) Hint() string {
	if l == LanguageHinglish {
		return "Great for connecting with Indian professionals!"
	}
	return "Classic choice for global reach!"
}

// GenerationRequest 一次生成请求，每次提交新建，不持久化
type GenerationRequest struct {
	Topic    string   `json:"topic"`
	Length   Length   `json:"length"`
	Language Language `json:"language"`
}

// GeneratedPost 生成结果，仅在当前页面状态中展示
type GeneratedPost struct {
	Text string `json:"text"`
}

// FewShotPost few-shot 示例帖子
type FewShotPost struct {
	ID         string         `json:"id,omitempty" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text       string         `json:"text" gorm:"type:text;not null"`
	Engagement int            `json:"engagement" gorm:"not null;default:0;index"`
	LineCount  int            `json:"line_count" gorm:"not null;default:0"`
	Language   Language       `json:"language" gorm:"type:varchar(16);not null;index"`
	Tags       pq.StringArray `json:"tags" gorm:"type:text[];not null;default:'{}'"`
	Length     Length         `json:"length,omitempty" gorm:"type:varchar(16);not null;index"`
	CreatedAt  time.Time      `json:"created_at,omitempty" gorm:"autoCreateTime"`
}

// TableName 表名
func (FewShotPost) TableName() string {
	return "fewshot_posts"
}

// Normalize 补全派生字段：行数缺失时按文本计算，长度档位按行数归档
func (p *FewShotPost) Normalize() {
	p.Text = strings.TrimSpace(p.Text)
	if p.LineCount <= 0 && p.Text != "" {
		p.LineCount = strings.Count(p.Text, "\n") + 1
	}
	p.Length = LengthFromLineCount(p.LineCount)
	if p.Language == "" {
		p.Language = LanguageEnglish
	}

	seen := make(map[string]struct{}, len(p.Tags))
	tags := make(pq.StringArray, 0, len(p.Tags))
	for _, t := range p.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	p.Tags = tags
}

// HasTag 判断示例是否带有指定话题
func (p *FewShotPost) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
