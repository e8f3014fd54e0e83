// Package node 工作流节点共用的文本处理
package node

import (
	"strings"
	"unicode/utf8"
)

// TruncateByRunes 按字符数截断
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// CleanPostText 去掉首尾空白与模型偶尔包裹的 ``` 代码块
func CleanPostText(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
		// 去掉语言标记行，如 ```text
		if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
			s = s[i+1:]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// CountLines 统计非空行数
func CountLines(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
