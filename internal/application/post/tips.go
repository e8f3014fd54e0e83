package post

import (
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultFacts 页面加载时随机展示的 LinkedIn 小知识
var DefaultFacts = []string{
	"Posts with 3 to 5 hashtags tend to reach more people.",
	"Posts published Tuesday to Thursday usually get the most engagement.",
	"Personal stories get more comments than company announcements.",
	"The first two lines decide whether readers click \"see more\".",
	"Short paragraphs are easier to read on mobile, where most LinkedIn reading happens.",
}

// DefaultTips 生成成功后随机展示的发布建议
var DefaultTips = []string{
	"Add a question at the end to invite comments.",
	"Reply to early comments within the first hour.",
	"Tag people only when they are genuinely part of the story.",
	"Pair the post with an image to make it stand out in the feed.",
	"Read it aloud once before posting.",
}

// Picker 从固定列表中均匀随机取一条，仅用于展示
type Picker struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewPicker 使用给定随机源创建 Picker；src 为 nil 时按当前时间播种
func NewPicker(src rand.Source) *Picker {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}
	return &Picker{r: rand.New(src)}
}

// Pick 随机返回一条；列表为空返回空串
func (p *Picker) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return items[p.r.IntN(len(items))]
}

func orDefault(items, fallback []string) []string {
	if len(items) > 0 {
		return items
	}
	return fallback
}
