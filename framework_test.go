package mymarket_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mymarket "github.com/itsneelabh/mymarket"
	"github.com/itsneelabh/mymarket/pkg/logger"
	"github.com/itsneelabh/mymarket/pkg/storage"
)

func TestRunSession_PersistsOnSuccess(t *testing.T) {
	ctx := context.Background()
	mb := storage.NewMemoryBackend()
	opts := []mymarket.Option{mymarket.WithBackend(mb), mymarket.WithLogger(&logger.NoOpLogger{})}

	err := mymarket.RunSession(ctx, func(ctx context.Context, cat *mymarket.Catalog) error {
		p := mymarket.NewProduct("Coca Cola", "", "Μη αλκοολούχα ποτά", "Αναψυκτικά", 1.3, 298, mymarket.UnitPieces)
		if err := cat.AddNewProduct(p); err != nil {
			return err
		}
		c, err := cat.SignUp("Sakis", "sakis123", "Athanasios", "Giarlopoylos")
		if err != nil {
			return err
		}
		if err := c.AddProductToCart(p, 2); err != nil {
			return err
		}
		_, err = c.CompleteOrder()
		return err
	}, opts...)
	require.NoError(t, err)

	err = mymarket.RunSession(ctx, func(ctx context.Context, cat *mymarket.Catalog) error {
		p, ok := cat.Product("Coca Cola")
		require.True(t, ok)
		assert.Equal(t, 296, p.Quantity())

		c, ok := cat.Customer("Sakis")
		require.True(t, ok)
		require.Len(t, c.OrderHistory(), 1)
		assert.Equal(t, mymarket.StatusCompleted, c.OrderHistory()[0].Status())
		return nil
	}, opts...)
	require.NoError(t, err)
}

func TestRunSession_SkipsPersistOnFailure(t *testing.T) {
	ctx := context.Background()
	mb := storage.NewMemoryBackend()
	boom := errors.New("user cancelled")

	err := mymarket.RunSession(ctx, func(ctx context.Context, cat *mymarket.Catalog) error {
		_, err := cat.SignUp("Sakis", "sakis123", "Athanasios", "Giarlopoylos")
		require.NoError(t, err)
		return boom
	}, mymarket.WithBackend(mb), mymarket.WithLogger(&logger.NoOpLogger{}))

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mb.Keys())
}

func TestRunSession_ConfigError(t *testing.T) {
	err := mymarket.RunSession(context.Background(), func(context.Context, *mymarket.Catalog) error {
		t.Fatal("fn must not run")
		return nil
	}, mymarket.WithName(""))
	assert.Error(t, err)
}

func TestReExports(t *testing.T) {
	assert.Len(t, mymarket.Categories(), 17)
	assert.Equal(t, "13,00€", mymarket.FormatCost(13))
	assert.NotEmpty(t, mymarket.Version)

	cfg := mymarket.DefaultConfig()
	assert.Equal(t, "mymarket", cfg.Name)
}
