package settingsdb

import (
	"database/sql"
	"errors"
	"time"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key,
		value,
		time.Now().Unix(),
	)
	return err
}

func (s *Store) Delete(key string) error {
	_, err := s.db.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}

func (s *Store) InsertAlert(row *AlertRow) error {
	_, err := s.db.Exec(
		"INSERT INTO alerts (id, severity, title, description, timestamp, acknowledged) "+
			"VALUES (?, ?, ?, ?, ?, ?)",
		row.ID,
		row.Severity,
		row.Title,
		row.Description,
		row.Timestamp,
		row.Acknowledged,
	)
	return err
}

// GetAlertsSince returns alerts at or after since (unix seconds), oldest first.
func (s *Store) GetAlertsSince(since int64) ([]AlertRow, error) {
	rows, err := s.db.Query(
		"SELECT id, severity, title, description, timestamp, acknowledged FROM alerts "+
			"WHERE timestamp >= ? ORDER BY timestamp ASC, id ASC",
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AlertRow
	for rows.Next() {
		var row AlertRow
		if err := rows.Scan(&row.ID, &row.Severity, &row.Title, &row.Description, &row.Timestamp, &row.Acknowledged); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ToggleAlertAcknowledged flips the flag and returns the new value.
func (s *Store) ToggleAlertAcknowledged(id string) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var acknowledged bool
	err = tx.QueryRow("SELECT acknowledged FROM alerts WHERE id = ?", id).Scan(&acknowledged)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrAlertNotFound
	}
	if err != nil {
		return false, err
	}

	acknowledged = !acknowledged
	if _, err = tx.Exec("UPDATE alerts SET acknowledged = ? WHERE id = ?", acknowledged, id); err != nil {
		return false, err
	}
	return acknowledged, tx.Commit()
}
