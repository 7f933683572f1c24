package storage

import (
	"context"
	"database/sql"
	"fishgame-server/internal/domain"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ScoreStore - таблица рекордов завершенных партий в SQLite
type ScoreStore struct {
	conn *sql.DB
}

// OpenScoreStore открывает (или создает) базу рекордов
func OpenScoreStore(path string) (*ScoreStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite пишет из одного соединения, так проще избежать SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	s := &ScoreStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate scores: %w", err)
	}
	return s, nil
}

func (s *ScoreStore) Close() error {
	return s.conn.Close()
}

func (s *ScoreStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		seed INTEGER NOT NULL,
		rules TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		steps INTEGER NOT NULL DEFAULT 0,
		delivered INTEGER NOT NULL DEFAULT 0,
		went_home INTEGER NOT NULL DEFAULT 0,
		game_over INTEGER NOT NULL DEFAULT 0,
		finished_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scores_rules_score ON scores(rules, score DESC);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// RecordResult сохраняет итог партии
func (s *ScoreStore) RecordResult(ctx context.Context, rec domain.ScoreRecord) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO scores (session_id, seed, rules, score, steps, delivered, went_home, game_over, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Seed, rec.Rules, rec.Score, rec.Steps,
		rec.Delivered, rec.WentHome, rec.GameOver, rec.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert score for %s: %w", rec.SessionID, err)
	}
	return nil
}

// TopScores возвращает лучшие результаты. Пустой rules - по всем наборам правил.
// При равном счете выше тот, кто справился за меньшее число ходов.
func (s *ScoreStore) TopScores(ctx context.Context, rules string, limit int) ([]domain.ScoreRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.conn.QueryContext(ctx,
		`SELECT session_id, seed, rules, score, steps, delivered, went_home, game_over, finished_at
		 FROM scores
		 WHERE ? = '' OR rules = ?
		 ORDER BY score DESC, steps ASC, id ASC
		 LIMIT ?`,
		rules, rules, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScoreRecord
	for rows.Next() {
		var rec domain.ScoreRecord
		var finished int64
		if err := rows.Scan(&rec.SessionID, &rec.Seed, &rec.Rules, &rec.Score, &rec.Steps,
			&rec.Delivered, &rec.WentHome, &rec.GameOver, &finished); err != nil {
			return nil, err
		}
		rec.FinishedAt = time.UnixMilli(finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}
