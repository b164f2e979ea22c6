package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/ahlgren/medley/internal/apperr"
	"github.com/ahlgren/medley/internal/models"
)

// Insert adds a new media record. The id and file path must be unique.
func (db *DB) Insert(item models.MediaItem) error {
	_, err := db.conn.Exec(`
		INSERT INTO media (id, kind, title, artist, file_path, file_size, mime_type, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, string(item.Kind), item.Title, item.Artist, item.FilePath,
		item.FileSize, item.MimeType, item.Checksum, item.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("catalog: insert %s: %w", item.ID, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("catalog: insert: %w", err)
	}
	return nil
}

// Get returns the media record with the given id.
func (db *DB) Get(id string) (*models.MediaItem, error) {
	return db.scanOne(db.conn.QueryRow(`
		SELECT id, kind, title, artist, file_path, file_size, mime_type, checksum, created_at
		FROM media WHERE id = ?
	`, id))
}

// GetByFilePath returns the record whose blob lives at the given library path.
func (db *DB) GetByFilePath(path string) (*models.MediaItem, error) {
	return db.scanOne(db.conn.QueryRow(`
		SELECT id, kind, title, artist, file_path, file_size, mime_type, checksum, created_at
		FROM media WHERE file_path = ?
	`, path))
}

// ListMedia returns records newest-first. An empty kind returns the full
// merged corpus (both audio and video), which is what the search engine
// consumes as its snapshot.
func (db *DB) ListMedia(kind models.Kind) ([]models.MediaItem, error) {
	query := `
		SELECT id, kind, title, artist, file_path, file_size, mime_type, checksum, created_at
		FROM media`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var out []models.MediaItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// AllFilePaths returns every catalogued file path mapped to its record id.
func (db *DB) AllFilePaths() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT file_path, id FROM media`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all file paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, id string
		if err := rows.Scan(&p, &id); err != nil {
			return nil, err
		}
		out[p] = id
	}
	return out, rows.Err()
}

// Delete removes the record with the given id.
func (db *DB) Delete(id string) error {
	res, err := db.conn.Exec(`DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("catalog: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("catalog: delete %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Count returns the total number of catalogued records.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM media`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanOne(row *sql.Row) (*models.MediaItem, error) {
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func scanItem(s rowScanner) (models.MediaItem, error) {
	var item models.MediaItem
	var kind string
	err := s.Scan(&item.ID, &kind, &item.Title, &item.Artist, &item.FilePath,
		&item.FileSize, &item.MimeType, &item.Checksum, &item.CreatedAt)
	if err != nil {
		return models.MediaItem{}, err
	}
	item.Kind = models.Kind(kind)
	return item, nil
}
