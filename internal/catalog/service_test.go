package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lynixdevs/urbanthreads/internal/catalog"
)

type mockRepository struct {
	listProductsFunc   func(ctx context.Context) ([]catalog.Product, error)
	getProductFunc     func(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	createProductFunc  func(ctx context.Context, p *catalog.Product) error
	updateProductFunc  func(ctx context.Context, p *catalog.Product) error
	listCategoriesFunc func(ctx context.Context) ([]catalog.Category, error)
}

func (m *mockRepository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return m.listProductsFunc(ctx)
}

func (m *mockRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return m.getProductFunc(ctx, id)
}

func (m *mockRepository) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return m.createProductFunc(ctx, p)
}

func (m *mockRepository) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return m.updateProductFunc(ctx, p)
}

func (m *mockRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return m.listCategoriesFunc(ctx)
}

func TestService_RefreshKeepsSnapshotOnError(t *testing.T) {
	initial := sampleCatalog(t)

	calls := 0
	repo := &mockRepository{
		listProductsFunc: func(ctx context.Context) ([]catalog.Product, error) {
			calls++
			if calls == 1 {
				return initial, nil
			}
			return nil, errors.New("connection refused")
		},
		listCategoriesFunc: func(ctx context.Context) ([]catalog.Category, error) {
			return []catalog.Category{}, nil
		},
	}

	svc := catalog.NewService(repo)

	require.NoError(t, svc.Refresh(context.Background()))
	require.Len(t, svc.Products(), len(initial))

	err := svc.Refresh(context.Background())
	assert.Error(t, err)
	assert.Len(t, svc.Products(), len(initial), "failed refresh must keep the previous snapshot")
}

func TestService_GetProductFallsBackToStore(t *testing.T) {
	fresh := product(t, "Urban Bomber Jacket", "Jackets", "149.99", "")

	repo := &mockRepository{
		listProductsFunc: func(ctx context.Context) ([]catalog.Product, error) {
			return []catalog.Product{}, nil
		},
		listCategoriesFunc: func(ctx context.Context) ([]catalog.Category, error) {
			return []catalog.Category{}, nil
		},
		getProductFunc: func(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
			if id == fresh.ID {
				p := fresh
				return &p, nil
			}
			return nil, catalog.ErrProductNotFound
		},
	}

	svc := catalog.NewService(repo)
	require.NoError(t, svc.Refresh(context.Background()))

	got, err := svc.GetProduct(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.Name, got.Name)

	missing, err := uuid.NewV4()
	require.NoError(t, err)
	_, err = svc.GetProduct(context.Background(), missing)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestService_FeaturedProducts(t *testing.T) {
	products := sampleCatalog(t)
	products[0].Featured = true
	products[2].Featured = true

	repo := &mockRepository{
		listProductsFunc: func(ctx context.Context) ([]catalog.Product, error) {
			return products, nil
		},
		listCategoriesFunc: func(ctx context.Context) ([]catalog.Category, error) {
			return []catalog.Category{}, nil
		},
	}

	svc := catalog.NewService(repo)
	require.NoError(t, svc.Refresh(context.Background()))

	featured := svc.FeaturedProducts()
	require.Len(t, featured, 2)
	assert.Equal(t, products[0].Name, featured[0].Name)
	assert.Equal(t, products[2].Name, featured[1].Name)
}
