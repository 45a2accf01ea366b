// Package keyword 从商品名称中提取用于图片搜索的关键词
package keyword

import (
	"regexp"
	"strings"
)

// DefaultMaxTokens 关键词最多保留的词数（通常是系列名+角色名）
const DefaultMaxTokens = 5

// 括号内容通常是数量、规格等；圆括号与方括号各自成对，非贪婪匹配
var bracketPattern = regexp.MustCompile(`[（(].*?[）)]|[【\[].*?[\]】]`)

// DefaultStopWords 常见无用词，按顺序逐个移除
var DefaultStopWords = []string{
	"盲盒", "再版", "再贩", "普通扭蛋", "手办", "比例手办",
	"一般品", "谷子", "限定", "套装", "系列",
}

// DefaultSeparators 替换为空格的分隔符
var DefaultSeparators = []string{"/", "-", "~", "～", "·"}

// Rules 关键词提取规则
type Rules struct {
	StopWords  []string
	Separators []string
	MaxTokens  int
}

// DefaultRules 默认规则
func DefaultRules() Rules {
	return Rules{
		StopWords:  DefaultStopWords,
		Separators: DefaultSeparators,
		MaxTokens:  DefaultMaxTokens,
	}
}

// Extractor 关键词提取器
type Extractor struct {
	rules    Rules
	replacer *strings.Replacer
}

// NewExtractor 创建提取器
func NewExtractor(rules Rules) *Extractor {
	if rules.MaxTokens <= 0 {
		rules.MaxTokens = DefaultMaxTokens
	}
	pairs := make([]string, 0, len(rules.Separators)*2)
	for _, sep := range rules.Separators {
		pairs = append(pairs, sep, " ")
	}
	return &Extractor{
		rules:    rules,
		replacer: strings.NewReplacer(pairs...),
	}
}

var defaultExtractor = NewExtractor(DefaultRules())

// Extract 使用默认规则提取关键词
func Extract(text string) string {
	return defaultExtractor.Extract(text)
}

// Extract 从商品名称提取关键词
func (e *Extractor) Extract(text string) string {
	text = bracketPattern.ReplaceAllString(text, "")

	for _, word := range e.rules.StopWords {
		if word == "" {
			continue
		}
		text = strings.ReplaceAll(text, word, "")
	}

	text = e.replacer.Replace(text)

	// strings.Fields 同时完成空白压缩与首尾裁剪
	parts := strings.Fields(text)
	if len(parts) > e.rules.MaxTokens {
		parts = parts[:e.rules.MaxTokens]
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}
