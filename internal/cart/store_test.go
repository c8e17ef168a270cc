package cart_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/lynixdevs/urbanthreads/internal/cart"
)

func newTestStore(t *testing.T) (cart.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "carts.db")
	store, err := cart.NewBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, path
}

func TestBoltStore_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	hoodie := testProduct(t, "Urban Graffiti Hoodie", "79.99", "")

	var c cart.Cart
	require.NoError(t, c.Add(hoodie, 2, "M"))

	require.NoError(t, store.Save(ctx, "cart-1", c))

	loaded, err := store.Load(ctx, "cart-1")
	require.NoError(t, err)

	require.Len(t, loaded.Items, 1)
	assert.Equal(t, hoodie.ID, loaded.Items[0].Product.ID)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	assert.Equal(t, "M", loaded.Items[0].Size)
	assert.True(t, c.Total().Equal(loaded.Total()))
}

func TestBoltStore_LoadMissingYieldsEmptyCart(t *testing.T) {
	store, _ := newTestStore(t)

	c, err := store.Load(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestBoltStore_MalformedDataFailsOpen(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	hoodie := testProduct(t, "Urban Graffiti Hoodie", "79.99", "")
	var c cart.Cart
	require.NoError(t, c.Add(hoodie, 1, ""))
	require.NoError(t, store.Save(ctx, "cart-1", c))
	require.NoError(t, store.Close())

	// Corrupt the stored value behind the store's back.
	db, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	err = db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("carts")).Put([]byte("cart-1"), []byte("{not json"))
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := cart.NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "cart-1")
	require.NoError(t, err, "a corrupt cart must be discarded, not surfaced as an error")
	assert.True(t, loaded.IsEmpty())
}

func TestBoltStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	hoodie := testProduct(t, "Urban Graffiti Hoodie", "79.99", "")
	var c cart.Cart
	require.NoError(t, c.Add(hoodie, 1, ""))
	require.NoError(t, store.Save(ctx, "cart-1", c))

	require.NoError(t, store.Delete(ctx, "cart-1"))

	loaded, err := store.Load(ctx, "cart-1")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}
