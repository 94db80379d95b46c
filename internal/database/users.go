package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/streamify/connect/internal/auth"
	"github.com/streamify/connect/internal/friends"
	"github.com/streamify/connect/internal/models"
)

// CreateUser hashes the password and inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	hash, err := auth.CreateHash(user.Password, auth.Params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	q := `INSERT INTO users (id, email, password, full_name, bio, profile_pic,
	                         native_language, learning_language, location, is_onboarded)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			user.ID, user.Email, user.Password, user.FullName,
			user.Bio, user.ProfilePic, user.NativeLanguage,
			user.LearningLanguage, user.Location, user.IsOnboarded,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

const userColumns = `id, email, password, full_name, bio, profile_pic,
       native_language, learning_language, location, is_onboarded`

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.Password, &u.FullName,
		&u.Bio, &u.ProfilePic, &u.NativeLanguage,
		&u.LearningLanguage, &u.Location, &u.IsOnboarded,
	)
}

// GetUser loads a user row and its friend ids.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	err := scanUser(s.pool.QueryRow(ctx, q, id), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, friends.ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT friend_id FROM friend_links WHERE user_id=$1`, id)
	if err != nil {
		return nil, storeErr("get user friends", err)
	}
	defer rows.Close()
	for rows.Next() {
		var fid uuid.UUID
		if err := rows.Scan(&fid); err != nil {
			return nil, storeErr("scan friend id", err)
		}
		u.Friends = append(u.Friends, fid)
	}
	return &u, nil
}

// GetUserByEmail is used by the login flow.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	err := scanUser(s.pool.QueryRow(ctx, q, email), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, friends.ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr("get user by email", err)
	}
	return &u, nil
}

// QueryUsers returns users matching the filter. Friend ids are not
// hydrated; recommendation listings only need profile fields.
func (s *Store) QueryUsers(ctx context.Context, filter friends.UserFilter) ([]models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users
	      WHERE id <> $1
	        AND NOT (id = ANY($2))
	        AND (is_onboarded OR NOT $3)`
	excluded := filter.ExcludeIDs
	if excluded == nil {
		excluded = []uuid.UUID{}
	}
	rows, err := s.pool.Query(ctx, q, filter.ExcludeID, excluded, filter.OnboardedOnly)
	if err != nil {
		return nil, storeErr("query users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, storeErr("scan user", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// UpdateProfile persists the onboarding fields and flips is_onboarded.
func (s *Store) UpdateProfile(ctx context.Context, u *models.User) error {
	q := `UPDATE users
	      SET full_name=$1, bio=$2, profile_pic=$3,
	          native_language=$4, learning_language=$5, location=$6,
	          is_onboarded=$7
	      WHERE id=$8`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, q,
			u.FullName, u.Bio, u.ProfilePic,
			u.NativeLanguage, u.LearningLanguage, u.Location,
			u.IsOnboarded, u.ID,
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return friends.ErrUserNotFound
		}
		return nil
	})
	if errors.Is(err, friends.ErrUserNotFound) {
		return err
	}
	if err != nil {
		return storeErr("update profile", err)
	}
	return nil
}

// AddFriendLink inserts both directions of the edge in one transaction.
// ON CONFLICT DO NOTHING makes re-application a no-op, so the accept flow
// can safely retry after a partial failure.
func (s *Store) AddFriendLink(ctx context.Context, a, b uuid.UUID) error {
	q := `INSERT INTO friend_links (user_id, friend_id)
	      VALUES ($1, $2), ($2, $1)
	      ON CONFLICT (user_id, friend_id) DO NOTHING`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, a, b)
		return err
	})
	if err != nil {
		return storeErr("add friend link", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", friends.ErrStoreUnavailable, op, err)
}
