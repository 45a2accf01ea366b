// Package search 根据商品名称生成图片搜索链接
package search

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"toyshelf/internal/keyword"
)

const (
	// DefaultEndpoint Bing 图片搜索（无验证码，便于浏览）
	DefaultEndpoint = "https://www.bing.com/images/search?q=%s"

	// 提取结果少于该字符数时视为无效
	minKeywordRunes = 3
	// 回退时截取原始查询的字符数
	fallbackRunes = 20

	placeholder = "%s"
)

// DefaultTerms 追加到关键词后的消歧词（中文 + 英文的“手办”）
var DefaultTerms = []string{"手辦", "figure"}

var (
	ErrEmptyQuery      = errors.New("empty query")
	ErrInvalidEndpoint = errors.New("endpoint template must contain exactly one %s")
)

// Result 搜索接口返回结构
type Result struct {
	URL      string `json:"url"`
	Keywords string `json:"keywords"`
	Original string `json:"original"`
}

// Builder 搜索链接生成器，不读写任何文件
type Builder struct {
	endpoint  string
	terms     []string
	extractor *keyword.Extractor
}

// NewBuilder 创建生成器；endpoint 为空时使用 DefaultEndpoint，terms 为 nil 时使用 DefaultTerms
func NewBuilder(endpoint string, terms []string, extractor *keyword.Extractor) (*Builder, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if strings.Count(endpoint, placeholder) != 1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	if terms == nil {
		terms = DefaultTerms
	}
	if extractor == nil {
		extractor = keyword.NewExtractor(keyword.DefaultRules())
	}
	return &Builder{
		endpoint:  endpoint,
		terms:     terms,
		extractor: extractor,
	}, nil
}

// Keywords 提取关键词；过短时回退为原始查询的前 20 个字符
func (b *Builder) Keywords(query string) string {
	keywords := b.extractor.Extract(query)
	if utf8.RuneCountInString(keywords) < minKeywordRunes {
		keywords = truncateRunes(query, fallbackRunes)
	}
	return keywords
}

// URL 生成图片搜索链接
func (b *Builder) URL(query string) string {
	parts := make([]string, 0, len(b.terms)+1)
	parts = append(parts, b.Keywords(query))
	parts = append(parts, b.terms...)
	phrase := strings.Join(parts, " ")

	return strings.Replace(b.endpoint, placeholder, escapeQuery(phrase), 1)
}

// Build 生成完整的搜索结果。
// Keywords 字段为未经回退的提取结果，URL 使用回退后的关键词。
func (b *Builder) Build(query string) (Result, error) {
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	return Result{
		URL:      b.URL(query),
		Keywords: b.extractor.Extract(query),
		Original: query,
	}, nil
}

// escapeQuery 按查询参数编码，空格编码为 %20
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
