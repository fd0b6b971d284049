package service

import (
	"context"
	"fmt"

	"ieum/internal/metrics"
	"ieum/internal/model"
	"ieum/internal/repo"

	"github.com/google/uuid"
)

const defaultQueueSize = 64

// Planner turns a recommendation request into a date plan.
type Planner interface {
	Plan(ctx context.Context, r *model.Recommendation) (*model.RecommendationResult, error)
}

// RecommendationProcessor drains queued requests on a single worker goroutine.
// Requests that do not fit into the queue stay PENDING and are picked up on the next start.
type RecommendationProcessor struct {
	Deps
	recs    repo.RecommendationRepository
	planner Planner
	queue   chan uuid.UUID
}

func NewRecommendationProcessor(d Deps, recs repo.RecommendationRepository, planner Planner, queueSize int) *RecommendationProcessor {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if planner == nil {
		planner = TemplatePlanner{}
	}
	return &RecommendationProcessor{Deps: d, recs: recs, planner: planner, queue: make(chan uuid.UUID, queueSize)}
}

// Enqueue never blocks; false means the queue is full.
func (p *RecommendationProcessor) Enqueue(id uuid.UUID) bool {
	select {
	case p.queue <- id:
		return true
	default:
		return false
	}
}

// Run first processes rows left PENDING or PROCESSING by a previous run, then serves the queue until ctx ends.
func (p *RecommendationProcessor) Run(ctx context.Context) error {
	for _, status := range []model.RecommendationStatus{model.RecommendationProcessing, model.RecommendationPending} {
		ids, err := p.recs.ListRecommendationIDsByStatus(ctx, status)
		if err != nil {
			return fmt.Errorf("list %s recommendations: %w", status, err)
		}
		if len(ids) > 0 {
			p.log().Infow("resuming recommendations", "status", status, "count", len(ids))
		}
		for _, id := range ids {
			if ctx.Err() != nil {
				return nil
			}
			p.process(ctx, id, true)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case id := <-p.queue:
			p.process(ctx, id, false)
		}
	}
}

func (p *RecommendationProcessor) process(ctx context.Context, id uuid.UUID, resume bool) {
	r, err := p.recs.GetRecommendationByID(ctx, id)
	if err != nil {
		p.log().Warnw("recommendation lookup failed", "recommendation_id", id, "error", err)
		return
	}
	switch r.Status {
	case model.RecommendationPending:
	case model.RecommendationProcessing:
		if !resume {
			return
		}
	default:
		return
	}

	r.Status = model.RecommendationProcessing
	if err := p.recs.SaveRecommendation(ctx, r); err != nil {
		p.log().Warnw("recommendation save failed", "recommendation_id", id, "error", err)
		return
	}

	result, err := p.planner.Plan(ctx, r)
	if err != nil {
		p.log().Warnw("recommendation failed", "recommendation_id", id, "error", err)
		r.Status = model.RecommendationFailed
	} else {
		now := p.now()
		r.Status = model.RecommendationCompleted
		r.Result = result
		r.CompletedAt = &now
	}
	if err := p.recs.SaveRecommendation(ctx, r); err != nil {
		p.log().Warnw("recommendation save failed", "recommendation_id", id, "error", err)
		return
	}
	metrics.RecommendationsProcessed.WithLabelValues(string(r.Status)).Inc()

	data := RecommendationData{ID: r.ID, Status: string(r.Status)}
	if r.Result != nil {
		data.Title = &r.Result.Title
	}
	p.publish(ctx, r.CoupleID, AreaRecommendation, RecommendationSyncMessage{
		EventType:      string(r.Status),
		Recommendation: data,
		UserID:         r.RequestedByID,
		Timestamp:      p.now(),
	})
}

// TemplatePlanner builds a fixed lunch-and-cafe course around the requested location.
type TemplatePlanner struct{}

func (TemplatePlanner) Plan(_ context.Context, r *model.Recommendation) (*model.RecommendationResult, error) {
	area := "Seoul"
	if r.LocationAddress != nil && *r.LocationAddress != "" {
		area = *r.LocationAddress
	}
	return &model.RecommendationResult{
		Title:       "Recommended date course",
		Description: "A relaxed lunch followed by a quiet cafe",
		Places: []model.RecommendedPlace{
			{Name: "Cozy restaurant", Category: "restaurant", Address: area},
			{Name: "Quiet cafe", Category: "cafe", Address: area},
		},
		EstimatedTime: "3-4 hours",
		EstimatedCost: 50000,
	}, nil
}
