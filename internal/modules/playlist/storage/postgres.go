package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/pyrumble/RumbleBot/internal/modules/playlist/domain"
)

// PostgresConfig holds the persistence backend connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ConnectionString builds a lib/pq connection string.
func (cfg PostgresConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.DBName, cfg.SSLMode,
	)
	if cfg.Password != "" {
		connStr += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return connStr
}

// PostgresStore is the Postgres-backed playlist store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database, verifies connectivity, and runs the
// schema migrations.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	migrations := []string{
		`
		CREATE TABLE IF NOT EXISTS playlists (
			id SERIAL PRIMARY KEY,
			userid BIGINT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			thumbnail_url TEXT NOT NULL DEFAULT ''
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS tracks (
			id SERIAL PRIMARY KEY,
			plid INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			userid BIGINT NOT NULL,
			encoded TEXT NOT NULL
		);
		`,
		`CREATE INDEX IF NOT EXISTS tracks_plid_idx ON tracks (plid);`,
		`CREATE INDEX IF NOT EXISTS playlists_userid_idx ON playlists (userid);`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// CreatePlaylist creates a playlist and returns its ID.
func (s *PostgresStore) CreatePlaylist(
	ctx context.Context,
	ownerID int64,
	name, description string,
) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO playlists (userid, name, description) VALUES ($1, $2, $3) RETURNING id`,
		ownerID, name, description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create playlist: %w", err)
	}
	return id, nil
}

// GetPlaylist returns the playlist, optionally scoped to an owner.
func (s *PostgresStore) GetPlaylist(
	ctx context.Context,
	playlistID, ownerID int64,
) (*domain.Playlist, error) {
	query := `SELECT id, userid, name, description, thumbnail_url FROM playlists WHERE id = $1`
	args := []any{playlistID}
	if ownerID != 0 {
		query += ` AND userid = $2`
		args = append(args, ownerID)
	}

	var p domain.Playlist
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.ThumbnailURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return &p, nil
}

// ListPlaylists returns all playlists owned by the user.
func (s *PostgresStore) ListPlaylists(
	ctx context.Context,
	ownerID int64,
) ([]*domain.Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, userid, name, description, thumbnail_url FROM playlists
		 WHERE userid = $1 ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*domain.Playlist
	for rows.Next() {
		var p domain.Playlist
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.ThumbnailURL); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, &p)
	}
	return playlists, rows.Err()
}

// ListTracks returns the playlist's tracks in insertion order.
func (s *PostgresStore) ListTracks(
	ctx context.Context,
	playlistID int64,
) ([]*domain.PlaylistTrack, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plid, userid, encoded FROM tracks WHERE plid = $1 ORDER BY id`,
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*domain.PlaylistTrack
	for rows.Next() {
		var t domain.PlaylistTrack
		if err := rows.Scan(&t.ID, &t.PlaylistID, &t.OwnerID, &t.Encoded); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, &t)
	}
	return tracks, rows.Err()
}

// checkOwnership verifies the playlist belongs to the owner.
func (s *PostgresStore) checkOwnership(
	ctx context.Context,
	q interface {
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	},
	playlistID, ownerID int64,
) error {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM playlists WHERE id = $1 AND userid = $2)`,
		playlistID, ownerID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if !exists {
		return domain.ErrForbidden
	}
	return nil
}

// AppendTrack appends one encoded payload.
func (s *PostgresStore) AppendTrack(
	ctx context.Context,
	playlistID, ownerID int64,
	encoded string,
) error {
	return s.AppendTracks(ctx, playlistID, ownerID, []string{encoded})
}

// AppendTracks appends a batch in a single transaction.
func (s *PostgresStore) AppendTracks(
	ctx context.Context,
	playlistID, ownerID int64,
	encoded []string,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.checkOwnership(ctx, tx, playlistID, ownerID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO tracks (plid, userid, encoded) VALUES ($1, $2, $3)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, payload := range encoded {
		if _, err := stmt.ExecContext(ctx, playlistID, ownerID, payload); err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
	}

	return tx.Commit()
}

// EditPlaylist applies the non-nil fields and returns the names of the fields
// actually changed.
func (s *PostgresStore) EditPlaylist(
	ctx context.Context,
	playlistID int64,
	fields domain.EditFields,
) ([]string, error) {
	if _, err := s.GetPlaylist(ctx, playlistID, 0); err != nil {
		return nil, err
	}

	changed := fields.Changed()
	if len(changed) == 0 {
		return []string{}, nil
	}

	var sets []string
	var args []any
	add := func(column string, value string) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.Description != nil {
		add("description", *fields.Description)
	}
	if fields.ThumbnailURL != nil {
		add("thumbnail_url", *fields.ThumbnailURL)
	}

	args = append(args, playlistID)
	query := fmt.Sprintf(
		"UPDATE playlists SET %s WHERE id = $%d",
		strings.Join(sets, ", "),
		len(args),
	)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to edit playlist: %w", err)
	}
	return changed, nil
}

// ClearTracks removes all tracks from the playlist.
func (s *PostgresStore) ClearTracks(ctx context.Context, playlistID, ownerID int64) error {
	if err := s.checkOwnership(ctx, s.db, playlistID, ownerID); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM tracks WHERE plid = $1`, playlistID,
	); err != nil {
		return fmt.Errorf("failed to clear tracks: %w", err)
	}
	return nil
}

// DeletePlaylist removes the playlist; track rows cascade. A non-owner gets
// ErrNotFound, never a hint the playlist exists.
func (s *PostgresStore) DeletePlaylist(ctx context.Context, playlistID, ownerID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM playlists WHERE id = $1 AND userid = $2`,
		playlistID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteTrack removes a single track from the playlist by track ID.
func (s *PostgresStore) DeleteTrack(ctx context.Context, playlistID, ownerID, trackID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tracks WHERE id = $1 AND plid = $2 AND userid = $3`,
		trackID, playlistID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ensure PostgresStore implements domain.Store.
var _ domain.Store = (*PostgresStore)(nil)
