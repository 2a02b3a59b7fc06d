package services

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gorm.io/gorm"

	"github.com/example/parkbay/internal/models"
)

// Demand-score blend weights for click vs search counts.
const (
	clickWeight  = 0.7
	searchWeight = 0.3
)

// Recommender computes demand scores and nearest-neighbour product
// suggestions from the click/search logs. Both are on-demand batch
// computations with no freshness guarantees.
type Recommender struct {
	db        *gorm.DB
	neighbors int
	results   int
}

// NewRecommender constructs a Recommender. neighbors is the k for the
// user-similarity search, results caps the suggestion list length.
func NewRecommender(db *gorm.DB, neighbors, results int) *Recommender {
	if neighbors <= 0 {
		neighbors = 10
	}
	if results <= 0 {
		results = 5
	}
	return &Recommender{db: db, neighbors: neighbors, results: results}
}

// DemandScore is a product ranked by blended click/search interest.
type DemandScore struct {
	ProductID   uuid.UUID `json:"product_id"`
	Name        string    `json:"name"`
	DemandScore float64   `json:"demand_score"`
}

// DemandScores min-max normalizes per-product click and search counts and
// blends them 0.7/0.3, highest first. A search counts toward a product when
// the logged query text appears in the product name, case-insensitively.
func (r *Recommender) DemandScores() ([]DemandScore, error) {
	var products []models.Product
	if err := r.db.Where("is_active = ? AND is_archived = ?", true, false).
		Find(&products).Error; err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return []DemandScore{}, nil
	}

	clickCounts, err := r.clickCounts()
	if err != nil {
		return nil, err
	}

	var searches []models.ProductSearch
	if err := r.db.Find(&searches).Error; err != nil {
		return nil, err
	}

	clicks := make([]float64, len(products))
	searchHits := make([]float64, len(products))
	for i, p := range products {
		clicks[i] = float64(clickCounts[p.ID])
		searchHits[i] = float64(countMatchingSearches(p.Name, searches))
	}

	normalizeInPlace(clicks)
	normalizeInPlace(searchHits)

	scores := make([]DemandScore, len(products))
	for i, p := range products {
		scores[i] = DemandScore{
			ProductID:   p.ID,
			Name:        p.Name,
			DemandScore: clickWeight*clicks[i] + searchWeight*searchHits[i],
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].DemandScore > scores[j].DemandScore
	})
	return scores, nil
}

// RecommendForUser finds the k users with the most similar click vectors
// (cosine distance) and returns the union of products they clicked,
// truncated to the configured result count. Returns an empty slice when the
// user has no recorded interactions.
func (r *Recommender) RecommendForUser(userID uuid.UUID) ([]uuid.UUID, error) {
	matrix, userIndex, productIDs, err := r.userProductMatrix()
	if err != nil {
		return nil, err
	}

	target, ok := userIndex[userID]
	if !ok {
		return []uuid.UUID{}, nil
	}

	type neighbor struct {
		row      int
		distance float64
	}
	neighbors := make([]neighbor, 0, len(matrix))
	for row := range matrix {
		neighbors = append(neighbors, neighbor{
			row:      row,
			distance: cosineDistance(matrix[target], matrix[row]),
		})
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	k := r.neighbors
	if k > len(neighbors) {
		k = len(neighbors)
	}

	seen := map[uuid.UUID]bool{}
	recommended := make([]uuid.UUID, 0, r.results)
	for _, n := range neighbors[:k] {
		for col, score := range matrix[n.row] {
			if score <= 0 || seen[productIDs[col]] {
				continue
			}
			seen[productIDs[col]] = true
			recommended = append(recommended, productIDs[col])
			if len(recommended) >= r.results {
				return recommended, nil
			}
		}
	}
	return recommended, nil
}

type clickRow struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Clicks    int64
}

func (r *Recommender) clickCounts() (map[uuid.UUID]int64, error) {
	type productCount struct {
		ProductID uuid.UUID
		Total     int64
	}
	var rows []productCount
	err := r.db.Model(&models.ProductClick{}).
		Select("product_id, count(*) as total").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.ProductID] = row.Total
	}
	return counts, nil
}

// userProductMatrix pivots logged clicks into one interaction vector per
// user, with a stable product column order.
func (r *Recommender) userProductMatrix() ([][]float64, map[uuid.UUID]int, []uuid.UUID, error) {
	var rows []clickRow
	err := r.db.Model(&models.ProductClick{}).
		Select("user_id, product_id, count(*) as clicks").
		Where("user_id IS NOT NULL").
		Group("user_id").Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, nil, err
	}

	userIndex := map[uuid.UUID]int{}
	productIndex := map[uuid.UUID]int{}
	var productIDs []uuid.UUID
	for _, row := range rows {
		if _, ok := userIndex[row.UserID]; !ok {
			userIndex[row.UserID] = len(userIndex)
		}
		if _, ok := productIndex[row.ProductID]; !ok {
			productIndex[row.ProductID] = len(productIndex)
			productIDs = append(productIDs, row.ProductID)
		}
	}

	matrix := make([][]float64, len(userIndex))
	for i := range matrix {
		matrix[i] = make([]float64, len(productIndex))
	}
	for _, row := range rows {
		matrix[userIndex[row.UserID]][productIndex[row.ProductID]] = float64(row.Clicks)
	}
	return matrix, userIndex, productIDs, nil
}

func countMatchingSearches(productName string, searches []models.ProductSearch) int {
	name := strings.ToLower(productName)
	count := 0
	for _, s := range searches {
		q := strings.ToLower(strings.TrimSpace(s.Query))
		if q == "" {
			continue
		}
		if strings.Contains(name, q) {
			count++
		}
	}
	return count
}

// normalizeInPlace rescales values to [0, 1]; a constant column maps to 0.
func normalizeInPlace(values []float64) {
	if len(values) == 0 {
		return
	}
	min := floats.Min(values)
	max := floats.Max(values)
	span := max - min
	if span == 0 {
		for i := range values {
			values[i] = 0
		}
		return
	}
	for i := range values {
		values[i] = (values[i] - min) / span
	}
}

func cosineDistance(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - floats.Dot(a, b)/(normA*normB)
}
