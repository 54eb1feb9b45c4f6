package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/greenplate/ordering/internal/domain"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	c := context.Background()

	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_USER":     "postgres",
		}),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("..", "..", "..", "db", "migrations", "000001_create_cart_snapshots.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed terminating postgres container with error: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(c, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := pgxpool.New(c, connStr)
	if err != nil {
		t.Fatalf("failed creating pgx pool with error: %s", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	c := context.Background()

	redisContainer, err := testRedis.Run(c, "redis:7.4.1-alpine3.20")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed terminating redis container with error: %s", err)
		}
	})

	connStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	client := redis.NewClient(opts)
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed closing redis client with error: %s", err)
		}
	})
	return client
}

func snapshotItems() []domain.CartItem {
	impact := 2.5
	return []domain.CartItem{
		{
			ID:             "sr1",
			Name:           "Vegetable Curry",
			Price:          domain.PriceFromString("$14.99"),
			Quantity:       2,
			IsVegan:        true,
			DietaryType:    domain.DietaryVegan,
			CO2Impact:      &impact,
			RestaurantName: "Spice Route Indian",
		},
		{
			ID:             "ee2",
			Name:           "Miso Ramen",
			Price:          domain.PriceFromString("$15.99"),
			Quantity:       1,
			DietaryType:    domain.DietaryVegetarian,
			RestaurantName: "Eco Eats Kitchen",
		},
	}
}

func TestPostgresStorageSaveLoadRoundTrip(t *testing.T) {
	c := context.Background()
	st := NewPostgresStorage(setupPostgres(t))

	loaded, err := st.Load(c)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, st.Save(c, snapshotItems()))
	loaded, err = st.Load(c)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, domain.ItemID("sr1"), loaded[0].ID)
	assert.Equal(t, 2, loaded[0].Quantity)
	assert.Equal(t, "$14.99", loaded[0].Price.Display())

	// saving again replaces the snapshot, it never appends
	require.NoError(t, st.Save(c, snapshotItems()[:1]))
	loaded, err = st.Load(c)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestRedisStorageSaveLoadRoundTrip(t *testing.T) {
	c := context.Background()
	st := NewRedisStorage(setupRedis(t), "greenPlateCart")

	loaded, err := st.Load(c)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, st.Save(c, snapshotItems()))
	loaded, err = st.Load(c)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, domain.ItemID("ee2"), loaded[1].ID)

	require.NoError(t, st.Save(c, []domain.CartItem{}))
	loaded, err = st.Load(c)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
