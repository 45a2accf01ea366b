// Package store 用 SQLite 记录每次目录加载
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// 并发的 serve 与 refresh 命令可能同时写同一个库
const dsnParams = "?_busy_timeout=5000&_journal_mode=WAL"

// Store 加载历史库
type Store struct {
	db   *sql.DB
	path string
}

// New 打开（必要时创建）历史库并建表
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Path 数据库文件路径
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}
