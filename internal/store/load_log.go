package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"toyshelf/internal/model"
)

// ErrNoLoadLog 尚无加载记录
var ErrNoLoadLog = errors.New("no load log")

const loadLogColumns = `
	id, run_id, source, reason,
	workbook_path, workbook_hash,
	sheet_count, item_count, skipped_sheets,
	cache_written, refresh, duration_ms, started_at`

// InsertLoadLog 写入加载记录，返回自增 id
func (s *Store) InsertLoadLog(log model.LoadLog) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO load_logs (
			run_id, source, reason,
			workbook_path, workbook_hash,
			sheet_count, item_count, skipped_sheets,
			cache_written, refresh, duration_ms, started_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		log.RunID, log.Source, log.Reason,
		log.WorkbookPath, log.WorkbookHash,
		log.SheetCount, log.ItemCount, encodeSheetList(log.SkippedSheets),
		log.CacheWritten, log.Refresh, log.DurationMs, log.StartedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert load log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get load log id: %w", err)
	}
	return id, nil
}

// LatestLoadLog 最近一次加载记录
func (s *Store) LatestLoadLog() (model.LoadLog, error) {
	row := s.db.QueryRow(`SELECT` + loadLogColumns + ` FROM load_logs ORDER BY id DESC LIMIT 1`)
	log, err := scanLoadLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LoadLog{}, ErrNoLoadLog
	}
	if err != nil {
		return model.LoadLog{}, fmt.Errorf("failed to query latest load log: %w", err)
	}
	return log, nil
}

// ListLoadLogs 按时间倒序列出加载记录
func (s *Store) ListLoadLogs(limit int) ([]model.LoadLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT`+loadLogColumns+` FROM load_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query load logs: %w", err)
	}
	defer rows.Close()

	logs := []model.LoadLog{}
	for rows.Next() {
		log, err := scanLoadLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan load log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// CountLoadLogs 记录总数
func (s *Store) CountLoadLogs() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM load_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count load logs: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoadLog(row rowScanner) (model.LoadLog, error) {
	var (
		log     model.LoadLog
		skipped string
	)
	err := row.Scan(
		&log.ID, &log.RunID, &log.Source, &log.Reason,
		&log.WorkbookPath, &log.WorkbookHash,
		&log.SheetCount, &log.ItemCount, &skipped,
		&log.CacheWritten, &log.Refresh, &log.DurationMs, &log.StartedAt,
	)
	if err != nil {
		return model.LoadLog{}, err
	}
	log.SkippedSheets = decodeSheetList(skipped)
	return log, nil
}

func encodeSheetList(names []string) string {
	if names == nil {
		return "[]"
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeSheetList(raw string) []string {
	names := []string{}
	if raw == "" {
		return names
	}
	_ = json.Unmarshal([]byte(raw), &names)
	return names
}
