package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Store is an append-only log of /transcript lookups. Transcript content is
// never stored.
type Store struct {
	DB *sql.DB
}

type Lookup struct {
	VideoID      string
	LanguageCode string
	Outcome      string
	Status       int
	CreatedAt    time.Time
}

func InitializeDB(dbPath string) (*Store, error) {
	logrus.WithField("path", dbPath).Info("Initializing audit database")

	// Ensure the directory for the database file exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "error creating directory for database")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS lookups (
                    id INTEGER PRIMARY KEY AUTOINCREMENT,
                    video_id TEXT NOT NULL DEFAULT '',
                    language_code TEXT NOT NULL DEFAULT '',
                    outcome TEXT NOT NULL,
                    status INTEGER NOT NULL,
                    created_at TIMESTAMP NOT NULL
)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error creating table")
	}

	return &Store{DB: db}, nil
}

func (s *Store) RecordLookup(ctx context.Context, l Lookup) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO lookups (video_id, language_code, outcome, status, created_at) VALUES (?, ?, ?, ?, ?)",
		l.VideoID, l.LanguageCode, l.Outcome, l.Status, l.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "error inserting lookup")
	}
	return nil
}

func (s *Store) countLookups(ctx context.Context, videoID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM lookups WHERE video_id = ?", videoID).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "error querying database")
	}
	return count, nil
}

// lastLookup returns the most recent lookup of videoID, sql.ErrNoRows when none.
func (s *Store) lastLookup(ctx context.Context, videoID string) (*Lookup, error) {
	l := &Lookup{}
	err := s.DB.QueryRowContext(ctx,
		"SELECT video_id, language_code, outcome, status, created_at FROM lookups WHERE video_id = ? ORDER BY id DESC LIMIT 1",
		videoID,
	).Scan(&l.VideoID, &l.LanguageCode, &l.Outcome, &l.Status, &l.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, errors.Wrap(err, "error querying database")
	}
	return l, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
