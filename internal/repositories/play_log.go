package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/groove/internal/models"
)

// PlayRecord is one row of the append-only play log.
type PlayRecord struct {
	ID       int64
	UserID   string
	TrackID  string
	Title    string
	Artist   string
	PlayedAt time.Time
}

// PlayLogRepository persists every play, independent of the bounded recently-played history.
type PlayLogRepository struct {
	db *sql.DB
}

// NewPlayLogRepository creates a new PlayLogRepository with the given database connection
func NewPlayLogRepository(db *sql.DB) *PlayLogRepository {
	return &PlayLogRepository{db: db}
}

// Create appends a play of track by userID and sets the record's ID.
func (r *PlayLogRepository) Create(ctx context.Context, rec *PlayRecord) error {
	if rec.TrackID == "" {
		return fmt.Errorf("validation failed: track id is required")
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO play_log (user_id, track_id, title, artist, played_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, rec.UserID, rec.TrackID, rec.Title, rec.Artist, rec.PlayedAt)
	if err != nil {
		return fmt.Errorf("failed to insert play: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get play id: %w", err)
	}
	rec.ID = id

	return nil
}

// List retrieves plays matching the given criteria, newest first.
//
// Supported criteria: "user_id" (string), "track_id" (string), "limit" (int).
func (r *PlayLogRepository) List(ctx context.Context, criteria map[string]any) ([]PlayRecord, error) {
	query := `
		SELECT id, user_id, track_id, title, artist, played_at
		FROM play_log
		WHERE 1 = 1
	`

	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if trackID, ok := criteria["track_id"].(string); ok && trackID != "" {
		query += " AND track_id = ?"
		args = append(args, trackID)
	}

	query += " ORDER BY played_at DESC, id DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	var records []PlayRecord
	for rows.Next() {
		var rec PlayRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TrackID, &rec.Title, &rec.Artist, &rec.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Count returns the number of plays logged for userID.
func (r *PlayLogRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM play_log WHERE user_id = ?", userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count plays: %w", err)
	}
	return n, nil
}

// PlayLogRecorder adapts [PlayLogRepository] to the player's recorder hook.
//
// Write failures are logged and dropped so playback is never interrupted.
type PlayLogRecorder struct {
	repo   *PlayLogRepository
	userID string
	logger *log.Logger
}

// NewPlayLogRecorder creates a recorder that logs plays for userID
func NewPlayLogRecorder(repo *PlayLogRepository, userID string, logger *log.Logger) *PlayLogRecorder {
	return &PlayLogRecorder{repo: repo, userID: userID, logger: logger}
}

// RecordPlay appends track to the play log.
func (a *PlayLogRecorder) RecordPlay(ctx context.Context, track models.Track) {
	rec := &PlayRecord{
		UserID:  a.userID,
		TrackID: track.ID,
		Title:   track.Title,
		Artist:  track.Artist,
	}

	if err := a.repo.Create(ctx, rec); err != nil && a.logger != nil {
		a.logger.Warn("failed to log play", "track", track.ID, "error", err)
	}
}
