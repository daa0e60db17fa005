package repository

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"reinai/internal/chat"
	"reinai/internal/models"
)

const boltBucket = "reinai"

// SessionBoltRepo keeps client state in a local bbolt file, one key per
// value like browser local storage.
type SessionBoltRepo struct {
	db *bbolt.DB
}

func NewSessionBoltRepo(path string) (*SessionBoltRepo, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", boltBucket, err)
	}

	return &SessionBoltRepo{db: db}, nil
}

func (r *SessionBoltRepo) Close() error {
	return r.db.Close()
}

func (r *SessionBoltRepo) Load(ctx context.Context) ([]models.Session, error) {
	data, err := r.get(chat.SessionsKey)
	if err != nil {
		return nil, err
	}
	return decodeSessions(data)
}

func (r *SessionBoltRepo) Save(ctx context.Context, sessions []models.Session) error {
	data, err := encodeSessions(sessions)
	if err != nil {
		return err
	}
	return r.put(chat.SessionsKey, data)
}

func (r *SessionBoltRepo) LoadModel(ctx context.Context) (string, error) {
	data, err := r.get(chat.ModelKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *SessionBoltRepo) SaveModel(ctx context.Context, model string) error {
	return r.put(chat.ModelKey, []byte(model))
}

func (r *SessionBoltRepo) RemoveLegacy(ctx context.Context) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Delete([]byte(chat.LegacyKey))
	})
}

func (r *SessionBoltRepo) get(key string) ([]byte, error) {
	var out []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket([]byte(boltBucket)).Get([]byte(key))
		if value != nil {
			// bbolt memory is only valid inside the transaction
			out = make([]byte, len(value))
			copy(out, value)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return out, nil
}

func (r *SessionBoltRepo) put(key string, value []byte) error {
	err := r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
