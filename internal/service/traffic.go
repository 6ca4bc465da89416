package service

import (
	"context"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/models"
	"github.com/aman-churiwal/storefront-gateway/internal/repository"
	"github.com/aman-churiwal/storefront-gateway/internal/storage"
)

type TrafficService struct {
	db         *storage.Postgres
	repository *repository.GateDecisionRepository
}

func NewTrafficService(db *storage.Postgres, repo *repository.GateDecisionRepository) *TrafficService {
	return &TrafficService{
		db:         db,
		repository: repo,
	}
}

// Holds gate traffic summary data
type TrafficSummary struct {
	TotalRequests  int64                    `json:"total_requests"`
	Outcomes       map[string]int64         `json:"outcomes"`
	DenialRate     float64                  `json:"denial_rate"`
	AvgGateLatency float64                  `json:"avg_gate_latency_ms"`
	TopDeniedPaths []map[string]interface{} `json:"top_denied_paths"`
}

// Retrieves a gate traffic summary for a time range
func (s *TrafficService) GetSummary(ctx context.Context, from, to time.Time) (*TrafficSummary, error) {
	summary := &TrafficSummary{}

	totalRequests, err := s.repository.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.TotalRequests = totalRequests

	if totalRequests == 0 {
		summary.Outcomes = map[string]int64{}
		return summary, nil
	}

	outcomes, err := s.repository.CountByOutcome(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.Outcomes = outcomes

	denied := totalRequests - outcomes[models.OutcomeAllowed]
	summary.DenialRate = (float64(denied) / float64(totalRequests)) * 100

	avgLatency, err := s.repository.GetAverageResponseTime(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.AvgGateLatency = avgLatency

	topDenied, err := s.repository.TopDeniedPaths(ctx, from, to, 10)
	if err != nil {
		return nil, err
	}
	summary.TopDeniedPaths = topDenied

	return summary, nil
}

// Retrieves recent decisions with pagination
func (s *TrafficService) GetDecisions(ctx context.Context, from, to time.Time, limit, offset int) ([]models.GateDecision, error) {
	return s.repository.FindByTimeRange(ctx, from, to, limit, offset)
}

// Deletes decisions older than the retention period
func (s *TrafficService) CleanupOldDecisions(ctx context.Context, retentionDays int) (int64, error) {
	cutOffDate := time.Now().AddDate(0, 0, -retentionDays)
	return s.repository.DeleteOldDecisions(ctx, cutOffDate)
}
