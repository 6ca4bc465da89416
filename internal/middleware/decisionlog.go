package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/models"
	"github.com/aman-churiwal/storefront-gateway/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	decisionBatchSize    = 100
	decisionFlushEvery   = 5 * time.Second
	decisionInsertBounds = 10 * time.Second
)

// DecisionLogger records the outcome of every gated request to Postgres in
// batches, off the request path.
type DecisionLogger struct {
	repo *repository.GateDecisionRepository
	ch   chan models.GateDecision
	stop chan struct{}
	done chan struct{}
}

func NewDecisionLogger(repo *repository.GateDecisionRepository, bufferSize int) *DecisionLogger {
	l := &DecisionLogger{
		repo: repo,
		ch:   make(chan models.GateDecision, bufferSize),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go l.worker()

	return l
}

func (l *DecisionLogger) worker() {
	defer close(l.done)

	batch := make([]*models.GateDecision, 0, decisionBatchSize)
	ticker := time.NewTicker(decisionFlushEvery)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), decisionInsertBounds)
		if err := l.repo.CreateBatch(ctx, batch); err != nil {
			log.Printf("failed to insert gate decisions: %v", err)
		}
		cancel()

		batch = make([]*models.GateDecision, 0, decisionBatchSize)
	}

	for {
		select {
		case decision := <-l.ch:
			d := decision
			batch = append(batch, &d)

			if len(batch) >= decisionBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-l.stop:
			// Drain whatever is still queued, then flush once
			for {
				select {
				case decision := <-l.ch:
					d := decision
					batch = append(batch, &d)
				default:
					flush()
					return
				}
			}
		}
	}
}

// Stop flushes pending decisions and waits for the worker to exit.
func (l *DecisionLogger) Stop() {
	close(l.stop)
	<-l.done
}

// Middleware builds the decision record after the rest of the chain has run.
func (l *DecisionLogger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		var userID *uuid.UUID
		if sess := SessionFrom(c); sess != nil {
			id := sess.UserID
			userID = &id
		}

		decision := models.GateDecision{
			Timestamp:      start,
			ClientID:       ClientIdentifier(c.Request),
			UserID:         userID,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			Outcome:        outcomeFor(c, status),
			StatusCode:     status,
			ResponseTimeMs: int(duration.Milliseconds()),
			UserAgent:      c.Request.UserAgent(),
		}

		select {
		case l.ch <- decision:
			// Queued
		default:
			// Channel full, drop rather than block the response
			log.Println("gate decision channel full, dropping entry")
		}
	}
}

// Stages tag their own denials; anything untagged is inferred from status.
func outcomeFor(c *gin.Context, status int) string {
	if outcome := c.GetString("gate_outcome"); outcome != "" {
		return outcome
	}

	switch {
	case status == http.StatusTooManyRequests:
		return models.OutcomeRateLimited
	case status == http.StatusForbidden:
		return models.OutcomeForbidden
	case status == http.StatusFound || status == http.StatusTemporaryRedirect:
		return models.OutcomeRedirected
	case status >= 500:
		return models.OutcomeError
	default:
		return models.OutcomeAllowed
	}
}
