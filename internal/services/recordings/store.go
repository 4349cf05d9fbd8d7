package recordings

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"vigil-worker-go/internal/models"
)

// Store persists finished recording files on disk and keeps a SQLite
// metadata index for listing. File naming is collision-safe: a timestamped
// base name, with a millisecond suffix when the slot is already taken.
type Store struct {
	db      *sql.DB
	dir     string
	baseURL string

	nowFn func() time.Time
}

// NewStore opens (or creates) the store under dir with metadata at dbPath.
func NewStore(dir, dbPath, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recordings directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open recordings index: %w", err)
	}

	store := &Store{
		db:      db,
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		nowFn:   time.Now,
	}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Info().Str("dir", dir).Str("db", dbPath).Msg("Recording store initialized")
	return store, nil
}

func (s *Store) createTables() error {
	createRecordingsTable := `
	CREATE TABLE IF NOT EXISTS recordings (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL UNIQUE,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		started_at TEXT,
		ended_at TEXT,
		created_at TEXT NOT NULL
	);`

	_, err := s.db.Exec(createRecordingsTable)
	return err
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename keeps only filesystem-safe characters of the client name.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "recording.webm"
	}
	return name
}

// Save writes the uploaded content to disk and indexes it. startedAt/endedAt
// carry the session interval the recording covers; either may be nil.
func (s *Store) Save(ctx context.Context, r io.Reader, originalName string, startedAt, endedAt *time.Time) (models.Recording, error) {
	now := s.nowFn()
	base := fmt.Sprintf("recording_%s_%s", now.Format("20060102_150405"), sanitizeFilename(originalName))

	path := filepath.Join(s.dir, base)
	if _, err := os.Stat(path); err == nil {
		// Slot taken within the same second
		base = fmt.Sprintf("recording_%s_%d_%s", now.Format("20060102_150405"), now.UnixMilli(), sanitizeFilename(originalName))
		path = filepath.Join(s.dir, base)
	}

	f, err := os.Create(path)
	if err != nil {
		return models.Recording{}, fmt.Errorf("failed to create recording file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return models.Recording{}, fmt.Errorf("failed to write recording file: %w", err)
	}

	rec := models.Recording{
		ID:        uuid.New().String(),
		Filename:  base,
		Path:      path,
		URL:       s.baseURL + "/" + base,
		Size:      size,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		CreatedAt: now,
	}

	insert := `
	INSERT INTO recordings (id, filename, path, size, started_at, ended_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, insert,
		rec.ID, rec.Filename, rec.Path, rec.Size,
		timeOrNull(rec.StartedAt), timeOrNull(rec.EndedAt), rec.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		os.Remove(path)
		return models.Recording{}, fmt.Errorf("failed to index recording: %w", err)
	}

	log.Info().Str("filename", rec.Filename).Int64("size", rec.Size).Msg("Recording stored")
	return rec, nil
}

// List returns all recordings, newest first.
func (s *Store) List(ctx context.Context) ([]models.Recording, error) {
	query := `
	SELECT id, filename, path, size, started_at, ended_at, created_at
	FROM recordings ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	var recordings []models.Recording
	for rows.Next() {
		var rec models.Recording
		var startedAt, endedAt sql.NullString
		var createdAt string

		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.Path, &rec.Size, &startedAt, &endedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}

		rec.URL = s.baseURL + "/" + rec.Filename
		rec.StartedAt = parseNullTime(startedAt)
		rec.EndedAt = parseNullTime(endedAt)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = t
		}

		recordings = append(recordings, rec)
	}
	return recordings, rows.Err()
}

// Open returns a reader over a stored recording by filename.
func (s *Store) Open(filename string) (io.ReadCloser, error) {
	clean := sanitizeFilename(filename)
	return os.Open(filepath.Join(s.dir, clean))
}

// Shutdown closes the metadata index.
func (s *Store) Shutdown(ctx context.Context) error {
	return s.db.Close()
}

func timeOrNull(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil
	}
	return &t
}
