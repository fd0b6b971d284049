package service

import (
	"context"

	"ieum/internal/dday"
	"ieum/internal/repo"

	"github.com/google/uuid"
)

type DdayResponse struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Dday  int    `json:"dday"`
	Type  string `json:"type"`
}

type DdayListResponse struct {
	Ddays []DdayResponse `json:"ddays"`
}

type DdayService struct {
	Deps
	Events repo.EventRepository
}

func NewDdayService(d Deps, events repo.EventRepository) *DdayService {
	return &DdayService{Deps: d, Events: events}
}

func (s *DdayService) List(ctx context.Context, userID uuid.UUID) (*DdayListResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	upcoming, err := s.Events.ListUpcomingEvents(ctx, c.ID, now, dday.MaxEvents)
	if err != nil {
		return nil, err
	}

	events := make([]dday.Event, 0, len(upcoming))
	for _, e := range upcoming {
		events = append(events, dday.Event{Title: e.Title, Start: e.StartDate})
	}

	entries := dday.Build(now, c.Anniversary, events)
	out := &DdayListResponse{Ddays: make([]DdayResponse, 0, len(entries))}
	for _, e := range entries {
		out.Ddays = append(out.Ddays, DdayResponse{Title: e.Title, Date: formatDate(e.Date), Dday: e.Days, Type: e.Type})
	}
	return out, nil
}
