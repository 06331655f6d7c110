package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vedantshetti/infyair-frontend/internal/client/models"
	"github.com/vedantshetti/infyair-frontend/internal/dbx"
)

// ErrStorageRead indicates the persisted user record is corrupt. Callers
// should treat the stored credential as untrustworthy and clear it.
var ErrStorageRead = errors.New("corrupt stored credential")

const (
	slotToken = "token"
	slotUser  = "user"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, cred *models.StoredCredential) error {
	userData, err := cred.MarshalUser()
	if err != nil {
		return fmt.Errorf("failed to serialize user: %w", err)
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, slotToken, []byte(cred.Token)); err != nil {
			return err
		}
		return set(ctx, tx, slotUser, userData)
	})
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.StoredCredential, error) {
	token, err := get(ctx, r.db, slotToken)
	if err != nil {
		return nil, err
	}
	userData, err := get(ctx, r.db, slotUser)
	if err != nil {
		return nil, err
	}
	if token == nil || userData == nil {
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal(userData, &user); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	if user.Username == "" || !user.Role.Valid() {
		return nil, fmt.Errorf("%w: missing username or role", ErrStorageRead)
	}

	return &models.StoredCredential{Token: string(token), User: user}, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials`)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", key, err)
	}
	return nil
}

func get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials[%s]: %w", key, err)
	}
	return value, nil
}
