package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	credentialsBucket = "credentials"
	expiryValueBytes  = 8
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db       *bolt.DB
	tokenTTL time.Duration
	now      func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(credentialsBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{
		db:       db,
		tokenTTL: opts.TokenTTL,
		now:      time.Now,
	}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Token returns the stored token, or "" when none is stored or it expired.
// An expired entry is removed.
func (b *boltStore) Token(context.Context) (string, error) {
	if b == nil || b.db == nil {
		return "", nil
	}

	var token string
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(credentialsBucket))
		if bucket == nil {
			return fmt.Errorf("credentials bucket missing")
		}

		value := bucket.Get([]byte(tokenKey))
		if value == nil {
			return nil
		}

		expiry, stored, ok := decodeEntry(value)
		if !ok || (!expiry.IsZero() && !expiry.After(b.now())) {
			return bucket.Delete([]byte(tokenKey))
		}

		token = stored
		return nil
	})
	return token, err
}

// SetToken stores token, replacing any previous one. An empty token clears it.
func (b *boltStore) SetToken(ctx context.Context, token string) error {
	if b == nil || b.db == nil {
		return nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return b.ClearToken(ctx)
	}

	var expiry time.Time
	if b.tokenTTL > 0 {
		expiry = b.now().Add(b.tokenTTL)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(credentialsBucket))
		if bucket == nil {
			return fmt.Errorf("credentials bucket missing")
		}
		return bucket.Put([]byte(tokenKey), encodeEntry(expiry, token))
	})
}

// ClearToken removes the stored token.
func (b *boltStore) ClearToken(context.Context) error {
	if b == nil || b.db == nil {
		return nil
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(credentialsBucket))
		if bucket == nil {
			return fmt.Errorf("credentials bucket missing")
		}
		return bucket.Delete([]byte(tokenKey))
	})
}

// encodeEntry prefixes the token with a big-endian unix expiry; 0 means none.
func encodeEntry(expiry time.Time, token string) []byte {
	buf := make([]byte, expiryValueBytes+len(token))
	if !expiry.IsZero() {
		binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	}
	copy(buf[expiryValueBytes:], token)
	return buf
}

// decodeEntry splits a stored value into expiry and token.
func decodeEntry(value []byte) (time.Time, string, bool) {
	if len(value) <= expiryValueBytes {
		return time.Time{}, "", false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix < 0 {
		return time.Time{}, "", false
	}
	var expiry time.Time
	if unix > 0 {
		expiry = time.Unix(unix, 0)
	}
	return expiry, string(value[expiryValueBytes:]), true
}
