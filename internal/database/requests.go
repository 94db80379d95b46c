package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamify/connect/internal/friends"
	"github.com/streamify/connect/internal/models"
)

const requestColumns = `id, sender_id, recipient_id, status, created_at`

func scanRequest(row pgx.Row, r *models.FriendRequest) error {
	return row.Scan(&r.ID, &r.Sender, &r.Recipient, &r.Status, &r.CreatedAt)
}

func (s *Store) GetRequest(ctx context.Context, id uuid.UUID) (*models.FriendRequest, error) {
	var r models.FriendRequest
	q := `SELECT ` + requestColumns + ` FROM friend_requests WHERE id=$1`
	err := scanRequest(s.pool.QueryRow(ctx, q, id), &r)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, friends.ErrRequestNotFound
	}
	if err != nil {
		return nil, storeErr("get request", err)
	}
	return &r, nil
}

// FindRequestBetween matches the pair in either direction.
func (s *Store) FindRequestBetween(ctx context.Context, a, b uuid.UUID) (*models.FriendRequest, error) {
	var r models.FriendRequest
	q := `SELECT ` + requestColumns + ` FROM friend_requests
	      WHERE (sender_id=$1 AND recipient_id=$2)
	         OR (sender_id=$2 AND recipient_id=$1)`
	err := scanRequest(s.pool.QueryRow(ctx, q, a, b), &r)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, friends.ErrRequestNotFound
	}
	if err != nil {
		return nil, storeErr("find request between", err)
	}
	return &r, nil
}

func (s *Store) RequestsByRecipient(ctx context.Context, recipient uuid.UUID, status models.RequestStatus) ([]models.FriendRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM friend_requests
	      WHERE recipient_id=$1 AND status=$2
	      ORDER BY created_at`
	return s.queryRequests(ctx, q, recipient, status)
}

func (s *Store) RequestsBySender(ctx context.Context, sender uuid.UUID, status models.RequestStatus) ([]models.FriendRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM friend_requests
	      WHERE sender_id=$1 AND status=$2
	      ORDER BY created_at`
	return s.queryRequests(ctx, q, sender, status)
}

func (s *Store) queryRequests(ctx context.Context, q string, args ...interface{}) ([]models.FriendRequest, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, storeErr("query requests", err)
	}
	defer rows.Close()

	var reqs []models.FriendRequest
	for rows.Next() {
		var r models.FriendRequest
		if err := scanRequest(rows, &r); err != nil {
			return nil, storeErr("scan request", err)
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}

// CreateRequest inserts a pending request. The unique index on the
// normalized pair turns a concurrent duplicate create into a 23505,
// which surfaces as ErrRequestExists; the caller's prior existence check
// is advisory only.
func (s *Store) CreateRequest(ctx context.Context, sender, recipient uuid.UUID) (*models.FriendRequest, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request id: %w", err)
	}

	var r models.FriendRequest
	q := `INSERT INTO friend_requests (id, sender_id, recipient_id, status)
	      VALUES ($1, $2, $3, 'pending')
	      RETURNING ` + requestColumns
	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return scanRequest(tx.QueryRow(ctx, q, id, sender, recipient), &r)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, friends.ErrRequestExists
		}
		return nil, storeErr("create request", err)
	}
	return &r, nil
}

// UpdateRequestStatus persists the status transition. Setting the same
// status again is a no-op, which keeps the accept flow retryable.
func (s *Store) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status models.RequestStatus) error {
	q := `UPDATE friend_requests SET status=$1 WHERE id=$2`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q, status, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return friends.ErrRequestNotFound
		}
		return nil
	})
	if errors.Is(err, friends.ErrRequestNotFound) {
		return err
	}
	if err != nil {
		return storeErr("update request status", err)
	}
	return nil
}
