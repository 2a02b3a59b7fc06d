package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/models"
)

func setupRecommenderDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := setupTestDB(t)
	err := db.AutoMigrate(
		&models.ProductCategory{},
		&models.Product{},
		&models.ProductReview{},
		&models.ProductImage{},
		&models.ProductSearch{},
		&models.ProductClick{},
	)
	require.NoError(t, err, "failed to migrate product tables")
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()

	product := models.Product{
		FarmerID: uuid.New(),
		Name:     name,
		Price:    10,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func logClicks(t *testing.T, db *gorm.DB, productID uuid.UUID, userID *uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.ProductClick{ProductID: productID, UserID: userID}).Error)
	}
}

func TestDemandScores(t *testing.T) {
	t.Run("ranks by blended click and search interest", func(t *testing.T) {
		db := setupRecommenderDB(t)
		rec := NewRecommender(db, 10, 5)

		carrots := createProduct(t, db, "Organic Carrots")
		apples := createProduct(t, db, "Apples")
		kale := createProduct(t, db, "Kale")

		logClicks(t, db, carrots.ID, nil, 10)
		logClicks(t, db, apples.ID, nil, 2)

		require.NoError(t, db.Create(&models.ProductSearch{Query: "carrots"}).Error)
		require.NoError(t, db.Create(&models.ProductSearch{Query: "organic"}).Error)

		scores, err := rec.DemandScores()
		require.NoError(t, err)
		require.Len(t, scores, 3)

		assert.Equal(t, carrots.ID, scores[0].ProductID, "most clicked and searched product ranks first")
		assert.InDelta(t, 1.0, scores[0].DemandScore, 1e-9, "max clicks and max searches normalize to 1")
		assert.Equal(t, kale.ID, scores[2].ProductID, "untouched product ranks last")
		assert.Zero(t, scores[2].DemandScore)
	})

	t.Run("empty catalogue yields an empty ranking", func(t *testing.T) {
		db := setupRecommenderDB(t)
		rec := NewRecommender(db, 10, 5)

		scores, err := rec.DemandScores()
		require.NoError(t, err)
		assert.Empty(t, scores)
	})
}

func TestRecommendForUser(t *testing.T) {
	t.Run("suggests neighbours' products", func(t *testing.T) {
		db := setupRecommenderDB(t)
		rec := NewRecommender(db, 2, 5)

		shared := createProduct(t, db, "Tomatoes")
		extra := createProduct(t, db, "Cucumbers")

		target := uuid.New()
		neighbour := uuid.New()

		logClicks(t, db, shared.ID, &target, 3)
		logClicks(t, db, shared.ID, &neighbour, 3)
		logClicks(t, db, extra.ID, &neighbour, 2)

		recommended, err := rec.RecommendForUser(target)
		require.NoError(t, err)

		assert.Contains(t, recommended, extra.ID, "neighbour's other product is suggested")
	})

	t.Run("user with no clicks gets nothing", func(t *testing.T) {
		db := setupRecommenderDB(t)
		rec := NewRecommender(db, 2, 5)

		shared := createProduct(t, db, "Tomatoes")
		other := uuid.New()
		logClicks(t, db, shared.ID, &other, 1)

		recommended, err := rec.RecommendForUser(uuid.New())
		require.NoError(t, err)
		assert.Empty(t, recommended)
	})

	t.Run("result list is truncated", func(t *testing.T) {
		db := setupRecommenderDB(t)
		rec := NewRecommender(db, 2, 2)

		target := uuid.New()
		neighbour := uuid.New()

		anchor := createProduct(t, db, "Anchor")
		logClicks(t, db, anchor.ID, &target, 1)
		logClicks(t, db, anchor.ID, &neighbour, 1)

		for _, name := range []string{"A", "B", "C", "D"} {
			p := createProduct(t, db, name)
			logClicks(t, db, p.ID, &neighbour, 1)
		}

		recommended, err := rec.RecommendForUser(target)
		require.NoError(t, err)
		assert.Len(t, recommended, 2)
	})
}
