package service

import (
	"context"
	"time"

	"ieum/internal/apperr"
	"ieum/internal/model"
	"ieum/internal/repo"

	"github.com/google/uuid"
)

const defaultRecommendationPageSize = 20

type CreateRecommendationRequest struct {
	LocationAddress *string           `json:"locationAddress" validate:"omitempty,max=200"`
	LocationLat     *float64          `json:"locationLat" validate:"omitempty,latitude"`
	LocationLng     *float64          `json:"locationLng" validate:"omitempty,longitude"`
	Date            *string           `json:"date"`
	Preferences     map[string]string `json:"preferences"`
}

type RecommendationFeedbackRequest struct {
	Rating      int     `json:"rating" validate:"gte=1,lte=5"`
	Comment     *string `json:"comment" validate:"omitempty,max=500"`
	SaveAsEvent bool    `json:"saveAsEvent"`
}

type RecommendationResponse struct {
	ID              uuid.UUID                     `json:"id"`
	Status          model.RecommendationStatus    `json:"status"`
	LocationAddress *string                       `json:"locationAddress"`
	LocationLat     *float64                      `json:"locationLat"`
	LocationLng     *float64                      `json:"locationLng"`
	Date            *string                       `json:"date"`
	Preferences     map[string]string             `json:"preferences"`
	Result          *model.RecommendationResult   `json:"result"`
	Feedback        *model.RecommendationFeedback `json:"feedback"`
	SavedEventID    *uuid.UUID                    `json:"savedEventId"`
	CreatedAt       time.Time                     `json:"createdAt"`
	CompletedAt     *time.Time                    `json:"completedAt"`
}

func NewRecommendationResponse(r *model.Recommendation) RecommendationResponse {
	return RecommendationResponse{
		ID:              r.ID,
		Status:          r.Status,
		LocationAddress: r.LocationAddress,
		LocationLat:     r.Latitude,
		LocationLng:     r.Longitude,
		Date:            formatDatePtr(r.Date),
		Preferences:     r.Preferences,
		Result:          r.Result,
		Feedback:        r.Feedback,
		SavedEventID:    r.SavedEventID,
		CreatedAt:       r.CreatedAt,
		CompletedAt:     r.CompletedAt,
	}
}

type RecommendationListResponse struct {
	Recommendations []RecommendationResponse `json:"recommendations"`
	TotalCount      int64                    `json:"totalCount"`
	Page            int                      `json:"page"`
	Size            int                      `json:"size"`
}

// Enqueuer hands a stored request to the background processor.
type Enqueuer interface {
	Enqueue(id uuid.UUID) bool
}

type RecommendationService struct {
	Deps
	Recommendations repo.RecommendationRepository
	Events          repo.EventRepository
	Queue           Enqueuer
}

func NewRecommendationService(d Deps, recs repo.RecommendationRepository, events repo.EventRepository, queue Enqueuer) *RecommendationService {
	return &RecommendationService{Deps: d, Recommendations: recs, Events: events, Queue: queue}
}

// Create stores a PENDING request and queues it. The plan arrives later on the recommendation topic.
func (s *RecommendationService) Create(ctx context.Context, userID uuid.UUID, req CreateRecommendationRequest) (*RecommendationResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return nil, err
	}

	r := &model.Recommendation{
		CoupleID:        c.ID,
		RequestedByID:   userID,
		LocationAddress: req.LocationAddress,
		Latitude:        req.LocationLat,
		Longitude:       req.LocationLng,
		Date:            date,
		Preferences:     req.Preferences,
		Status:          model.RecommendationPending,
	}
	if err := s.Recommendations.CreateRecommendation(ctx, r); err != nil {
		return nil, err
	}

	if s.Queue != nil && !s.Queue.Enqueue(r.ID) {
		s.log().Warnw("recommendation queue full, left pending", "recommendation_id", r.ID)
	}
	resp := NewRecommendationResponse(r)
	return &resp, nil
}

func (s *RecommendationService) List(ctx context.Context, userID uuid.UUID, page, size int) (*RecommendationListResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := PageRequest(page, size, defaultRecommendationPageSize)
	recs, total, err := s.Recommendations.ListRecommendations(ctx, c.ID, p)
	if err != nil {
		return nil, err
	}

	out := &RecommendationListResponse{Recommendations: make([]RecommendationResponse, 0, len(recs)), TotalCount: total, Page: p.Number, Size: p.Size}
	for i := range recs {
		out.Recommendations = append(out.Recommendations, NewRecommendationResponse(&recs[i]))
	}
	return out, nil
}

func (s *RecommendationService) Get(ctx context.Context, userID, id uuid.UUID) (*RecommendationResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	r, err := s.Recommendations.GetRecommendation(ctx, c.ID, id)
	if err != nil {
		return nil, notFound(err, "Recommendation not found")
	}
	resp := NewRecommendationResponse(r)
	return &resp, nil
}

// SubmitFeedback rates a finished plan and, on request, copies it into the calendar as an all-day event.
func (s *RecommendationService) SubmitFeedback(ctx context.Context, userID, id uuid.UUID, req RecommendationFeedbackRequest) (*RecommendationResponse, error) {
	var (
		r     *model.Recommendation
		event *model.Event
	)
	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.completeCoupleOf(ctx, userID)
		if err != nil {
			return err
		}
		if r, err = s.Recommendations.GetRecommendation(ctx, c.ID, id); err != nil {
			return notFound(err, "Recommendation not found")
		}
		if r.Status != model.RecommendationCompleted {
			return apperr.BadRequest("Recommendation is not completed yet")
		}

		r.Feedback = &model.RecommendationFeedback{Rating: req.Rating, Comment: req.Comment, SubmittedAt: s.now()}

		if req.SaveAsEvent && r.Result != nil {
			event = s.eventFrom(r, userID)
			if err := s.Events.CreateEvent(ctx, event); err != nil {
				return err
			}
			r.SavedEventID = &event.ID
		}
		return s.Recommendations.SaveRecommendation(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	if event != nil {
		s.publish(ctx, event.CoupleID, AreaSchedule, ScheduleSyncMessage{
			EventType: "ADDED",
			Schedule:  scheduleOf(event),
			UserID:    userID,
			Timestamp: s.now(),
		})
	}
	resp := NewRecommendationResponse(r)
	return &resp, nil
}

func (s *RecommendationService) eventFrom(r *model.Recommendation, userID uuid.UUID) *model.Event {
	start := s.now()
	end := start.Add(2 * time.Hour)
	if r.Date != nil {
		start = *r.Date
		end = start.Add(23*time.Hour + 59*time.Minute)
	}
	title := r.Result.Title
	if title == "" {
		title = "Recommended date"
	}
	desc := r.Result.Description
	return &model.Event{
		CoupleID:    r.CoupleID,
		CreatedByID: userID,
		Title:       title,
		Description: &desc,
		StartDate:   start,
		EndDate:     end,
		IsAllDay:    true,
		Location:    r.LocationAddress,
		Repeat:      model.RepeatNone,
	}
}
