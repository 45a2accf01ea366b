package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"toyshelf/internal/model"
)

// ErrNoCache 缓存文件不存在
var ErrNoCache = errors.New("cache file not found")

// ReadCache 读取缓存文件
func ReadCache(path string) (*model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCache
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	catalog := model.NewCatalog()
	if err := json.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("failed to parse cache %s: %w", path, err)
	}
	return catalog, nil
}

// EncodeCache 序列化为缓存格式：UTF-8 原文、两空格缩进
func EncodeCache(catalog *model.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalog); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCache 原子写入缓存（先写临时文件再重命名）
func WriteCache(path string, catalog *model.Catalog) error {
	data, err := EncodeCache(catalog)
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}

// RemoveCache 删除缓存文件，返回是否确实删除了文件
func RemoveCache(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to remove cache: %w", err)
}

// CacheExists 缓存文件是否存在
func CacheExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
