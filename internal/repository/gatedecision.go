package repository

import (
	"context"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/models"
	"github.com/aman-churiwal/storefront-gateway/internal/storage"
)

type GateDecisionRepository struct {
	db *storage.Postgres
}

func NewGateDecisionRepository(db *storage.Postgres) *GateDecisionRepository {
	return &GateDecisionRepository{db: db}
}

// Inserts multiple decisions (for batch insertion)
func (r *GateDecisionRepository) CreateBatch(ctx context.Context, decisions []*models.GateDecision) error {
	if len(decisions) == 0 {
		return nil
	}

	return r.db.DB.WithContext(ctx).Create(&decisions).Error
}

// Retrieves decisions within a time range
func (r *GateDecisionRepository) FindByTimeRange(ctx context.Context, from, to time.Time, limit, offset int) ([]models.GateDecision, error) {
	var decisions []models.GateDecision

	err := r.db.DB.WithContext(ctx).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&decisions).Error

	return decisions, err
}

// Counts decisions in a time range
func (r *GateDecisionRepository) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64

	err := r.db.DB.WithContext(ctx).
		Model(&models.GateDecision{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Count(&count).Error

	return count, err
}

// Counts decisions grouped by outcome
func (r *GateDecisionRepository) CountByOutcome(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	rows, err := r.db.DB.WithContext(ctx).
		Model(&models.GateDecision{}).
		Select("outcome, COUNT(*) as count").
		Where("timestamp BETWEEN ? AND ?", from, to).
		Group("outcome").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var count int64

		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}

		counts[outcome] = count
	}

	return counts, nil
}

// Returns the most frequently denied paths
func (r *GateDecisionRepository) TopDeniedPaths(ctx context.Context, from, to time.Time, limit int) ([]map[string]interface{}, error) {
	var results []map[string]interface{}

	rows, err := r.db.DB.WithContext(ctx).
		Model(&models.GateDecision{}).
		Select("path, COUNT(*) as count").
		Where("outcome <> ? AND timestamp BETWEEN ? AND ?", models.OutcomeAllowed, from, to).
		Group("path").
		Order("count DESC").
		Limit(limit).
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		var count int64

		if err := rows.Scan(&path, &count); err != nil {
			return nil, err
		}

		results = append(results, map[string]interface{}{
			"path":  path,
			"count": count,
		})
	}

	return results, nil
}

// Calculates average gate latency
func (r *GateDecisionRepository) GetAverageResponseTime(ctx context.Context, from, to time.Time) (float64, error) {
	var avg float64

	err := r.db.DB.WithContext(ctx).
		Model(&models.GateDecision{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Select("AVG(response_time_ms)").
		Scan(&avg).Error

	return avg, err
}

// Deletes decisions older than the specified time
func (r *GateDecisionRepository) DeleteOldDecisions(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("timestamp < ?", before).
		Delete(&models.GateDecision{})

	return result.RowsAffected, result.Error
}
