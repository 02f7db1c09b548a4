package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/mbarden/gopull/internal/domain"
)

func (s *PersistentStore) SaveQueueItem(item *domain.QueueItem) error {
	jobJSON, err := json.Marshal(item.Job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	query := `INSERT OR REPLACE INTO queue_items (id, name, status, total_bytes, bytes_written, job, error)
              VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.Exec(query,
		item.ID,
		item.Name,
		item.Status,
		item.TotalBytes,
		item.Downloaded(),
		jobJSON,
		item.Error,
	)
	return err
}

func (s *PersistentStore) GetQueueItems() ([]*domain.QueueItem, error) {
	rows, err := s.db.Query("SELECT id, name, status, total_bytes, bytes_written, job, error FROM queue_items")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}

	// Sort by KSUID (chronological)
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})

	return items, nil
}

func (s *PersistentStore) GetQueueItem(id string) (*domain.QueueItem, error) {
	query := `
			SELECT id, name, status, total_bytes, bytes_written, job, error
			FROM queue_items
			WHERE id = ? LIMIT 1`

	row := s.db.QueryRow(query, id)

	item := &domain.QueueItem{}
	var jobJSON string

	err := row.Scan(&item.ID, &item.Name, &item.Status, &item.TotalBytes, &item.BytesWritten, &jobJSON, &item.Error)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to fetch queue item: %w", err)
	}

	if err := json.Unmarshal([]byte(jobJSON), &item.Job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job for %s: %w", id, err)
	}

	return item, nil
}

func (s *PersistentStore) GetActiveQueueItems() ([]*domain.QueueItem, error) {
	query := `
		SELECT id, name, status, total_bytes, bytes_written, job, error
		FROM queue_items
		WHERE status NOT IN ('completed', 'failed')
		ORDER BY id ASC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active queue: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]*domain.QueueItem, error) {
	var items []*domain.QueueItem
	for rows.Next() {
		item := &domain.QueueItem{}
		var jobJSON string

		err := rows.Scan(
			&item.ID, &item.Name, &item.Status,
			&item.TotalBytes, &item.BytesWritten, &jobJSON, &item.Error,
		)
		if err != nil {
			return nil, err
		}

		// Hydrate the job from JSON; skip rows that no longer decode
		if err := json.Unmarshal([]byte(jobJSON), &item.Job); err != nil {
			continue
		}

		items = append(items, item)
	}
	return items, rows.Err()
}
