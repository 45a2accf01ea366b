package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item 单个商品（工作表中的一行）
type Item struct {
	Name string `json:"name"`
}

// Category 分类：一个工作表对应一个分类
type Category struct {
	Name  string
	Items []Item

	// raw 从缓存读入的原始值，序列化时原样输出（保留额外字段与 null）
	raw json.RawMessage
}

// Catalog 分类目录，保持工作表顺序
// JSON 形式为 {"分类名": [{"name": "..."}]}，键顺序即分类顺序
type Catalog struct {
	Categories []Category
}

// NewCatalog 创建空目录
func NewCatalog() *Catalog {
	return &Catalog{Categories: []Category{}}
}

// Add 追加分类；同名分类会被替换并保留原位置
func (c *Catalog) Add(name string, items []Item) {
	if items == nil {
		items = []Item{}
	}
	for i := range c.Categories {
		if c.Categories[i].Name == name {
			c.Categories[i].Items = items
			c.Categories[i].raw = nil
			return
		}
	}
	c.Categories = append(c.Categories, Category{Name: name, Items: items})
}

// Get 按名称获取分类下的商品
func (c *Catalog) Get(name string) ([]Item, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat.Items, true
		}
	}
	return nil, false
}

// Names 分类名称列表
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		names = append(names, cat.Name)
	}
	return names
}

// Len 分类数量
func (c *Catalog) Len() int {
	return len(c.Categories)
}

// ItemCount 商品总数
func (c *Catalog) ItemCount() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Items)
	}
	return n
}

// MarshalJSON 按分类顺序输出对象。
// 输出不做 HTML 转义，由外层 encoder 决定是否转义。
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalRaw(cat.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if cat.raw != nil {
			buf.Write(cat.raw)
			continue
		}

		items := cat.Items
		if items == nil {
			items = []Item{}
		}
		val, err := marshalRaw(items)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON 解析对象并保留键顺序
func (c *Catalog) UnmarshalJSON(data []byte) error {
	c.Categories = []Category{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("catalog: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("catalog: unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("catalog: category %q: %w", name, err)
		}
		var items []Item
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("catalog: category %q: %w", name, err)
		}
		c.Add(name, items)
		for i := range c.Categories {
			if c.Categories[i].Name == name {
				c.Categories[i].raw = raw
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
