package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

// Store persists carts between sessions, keyed by cart id (the user id for
// signed-in shoppers, a session id otherwise).
type Store interface {
	Load(ctx context.Context, cartID string) (Cart, error)
	Save(ctx context.Context, cartID string, c Cart) error
	Delete(ctx context.Context, cartID string) error
	Close() error
}

const cartsBucket = "carts"

type boltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the cart database file at path.
func NewBoltStore(path string) (Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("cart: failed to open store at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cartsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cart: failed to create bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Load reads the stored cart for cartID. A missing key yields an empty cart;
// so does a value that no longer parses — a corrupt cart is discarded rather
// than breaking the shopper's session.
func (s *boltStore) Load(_ context.Context, cartID string) (Cart, error) {
	var raw []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(cartsBucket)).Get([]byte(cartID)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return Cart{}, fmt.Errorf("cart: failed to read stored cart %s: %w", cartID, err)
	}

	if raw == nil {
		return Cart{}, nil
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		log.Warn().Err(err).Str("cart_id", cartID).Msg("cart: discarding malformed stored cart")
		return Cart{}, nil
	}

	return c, nil
}

func (s *boltStore) Save(_ context.Context, cartID string, c Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart: failed to marshal cart %s: %w", cartID, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(cartsBucket)).Put([]byte(cartID), raw)
	})
	if err != nil {
		return fmt.Errorf("cart: failed to save cart %s: %w", cartID, err)
	}

	return nil
}

func (s *boltStore) Delete(_ context.Context, cartID string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(cartsBucket)).Delete([]byte(cartID))
	})
	if err != nil {
		return fmt.Errorf("cart: failed to delete cart %s: %w", cartID, err)
	}

	return nil
}

func (s *boltStore) Close() error {
	return s.db.Close()
}
