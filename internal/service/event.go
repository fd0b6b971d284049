package service

import (
	"context"
	"time"

	"ieum/internal/apperr"
	"ieum/internal/model"
	"ieum/internal/repo"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Title           string  `json:"title" validate:"required,max=100"`
	Description     *string `json:"description"`
	StartDate       string  `json:"startDate" validate:"required"`
	EndDate         string  `json:"endDate" validate:"required"`
	IsAllDay        bool    `json:"isAllDay"`
	Location        *string `json:"location"`
	ReminderMinutes *int    `json:"reminderMinutes" validate:"omitempty,min=0"`
	Repeat          *string `json:"repeat" validate:"omitempty,oneof=NONE DAILY WEEKLY MONTHLY YEARLY"`
}

type UpdateEventRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=100"`
	Description     *string `json:"description"`
	StartDate       *string `json:"startDate"`
	EndDate         *string `json:"endDate"`
	IsAllDay        *bool   `json:"isAllDay"`
	Location        *string `json:"location"`
	ReminderMinutes *int    `json:"reminderMinutes" validate:"omitempty,min=0"`
	Repeat          *string `json:"repeat" validate:"omitempty,oneof=NONE DAILY WEEKLY MONTHLY YEARLY"`
}

type EventResponse struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	Description     *string          `json:"description"`
	StartDate       time.Time        `json:"startDate"`
	EndDate         time.Time        `json:"endDate"`
	IsAllDay        bool             `json:"isAllDay"`
	Location        *string          `json:"location"`
	ReminderMinutes *int             `json:"reminderMinutes"`
	Repeat          model.RepeatType `json:"repeat"`
	CreatedByID     uuid.UUID        `json:"createdById"`
	CreatedAt       time.Time        `json:"createdAt"`
}

func NewEventResponse(e *model.Event) EventResponse {
	return EventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		StartDate:       e.StartDate,
		EndDate:         e.EndDate,
		IsAllDay:        e.IsAllDay,
		Location:        e.Location,
		ReminderMinutes: e.ReminderMinutes,
		Repeat:          e.Repeat,
		CreatedByID:     e.CreatedByID,
		CreatedAt:       e.CreatedAt,
	}
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
}

// EventService manages the shared calendar. Mutations are announced on the schedule topic.
type EventService struct {
	Deps
	Events repo.EventRepository
}

func NewEventService(d Deps, events repo.EventRepository) *EventService {
	return &EventService{Deps: d, Events: events}
}

func (s *EventService) Create(ctx context.Context, userID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	start, err := ParseDateTime(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDateTime(req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperr.BadRequest("endDate must not be before startDate")
	}

	e := &model.Event{
		CoupleID:        c.ID,
		CreatedByID:     userID,
		Title:           req.Title,
		Description:     req.Description,
		StartDate:       start,
		EndDate:         end,
		IsAllDay:        req.IsAllDay,
		Location:        req.Location,
		ReminderMinutes: req.ReminderMinutes,
		Repeat:          model.RepeatNone,
	}
	if req.Repeat != nil {
		e.Repeat = model.RepeatType(*req.Repeat)
	}
	if err := s.Events.CreateEvent(ctx, e); err != nil {
		return nil, err
	}

	s.announce(ctx, "ADDED", e, userID)
	resp := NewEventResponse(e)
	return &resp, nil
}

// List returns every event, or with both bounds set only those lying fully inside [from, to].
func (s *EventService) List(ctx context.Context, userID uuid.UUID, from, to string) (*EventListResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	var events []model.Event
	if from != "" && to != "" {
		start, err := ParseDateTime(from)
		if err != nil {
			return nil, err
		}
		end, err := ParseDateTime(to)
		if err != nil {
			return nil, err
		}
		events, err = s.Events.ListEventsInRange(ctx, c.ID, start, end)
		if err != nil {
			return nil, err
		}
	} else if events, err = s.Events.ListEvents(ctx, c.ID); err != nil {
		return nil, err
	}

	out := &EventListResponse{Events: make([]EventResponse, 0, len(events))}
	for i := range events {
		out.Events = append(out.Events, NewEventResponse(&events[i]))
	}
	return out, nil
}

func (s *EventService) Get(ctx context.Context, userID, id uuid.UUID) (*EventResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.Events.GetEvent(ctx, c.ID, id)
	if err != nil {
		return nil, notFound(err, "Event not found")
	}
	resp := NewEventResponse(e)
	return &resp, nil
}

func (s *EventService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.Events.GetEvent(ctx, c.ID, id)
	if err != nil {
		return nil, notFound(err, "Event not found")
	}

	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = req.Description
	}
	if req.StartDate != nil {
		if e.StartDate, err = ParseDateTime(*req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if e.EndDate, err = ParseDateTime(*req.EndDate); err != nil {
			return nil, err
		}
	}
	if e.EndDate.Before(e.StartDate) {
		return nil, apperr.BadRequest("endDate must not be before startDate")
	}
	if req.IsAllDay != nil {
		e.IsAllDay = *req.IsAllDay
	}
	if req.Location != nil {
		e.Location = req.Location
	}
	if req.ReminderMinutes != nil {
		e.ReminderMinutes = req.ReminderMinutes
	}
	if req.Repeat != nil {
		e.Repeat = model.RepeatType(*req.Repeat)
	}

	if err := s.Events.SaveEvent(ctx, e); err != nil {
		return nil, err
	}
	s.announce(ctx, "UPDATED", e, userID)
	resp := NewEventResponse(e)
	return &resp, nil
}

func (s *EventService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return err
	}
	e, err := s.Events.GetEvent(ctx, c.ID, id)
	if err != nil {
		return notFound(err, "Event not found")
	}
	if err := s.Events.DeleteEvent(ctx, c.ID, id); err != nil {
		return notFound(err, "Event not found")
	}
	s.announce(ctx, "DELETED", e, userID)
	return nil
}

func (s *EventService) announce(ctx context.Context, eventType string, e *model.Event, userID uuid.UUID) {
	s.publish(ctx, e.CoupleID, AreaSchedule, ScheduleSyncMessage{
		EventType: eventType,
		Schedule:  scheduleOf(e),
		UserID:    userID,
		Timestamp: s.now(),
	})
}

func scheduleOf(e *model.Event) ScheduleData {
	d := ScheduleData{
		ID:          e.ID,
		Title:       e.Title,
		Date:        formatDate(e.StartDate),
		ColorHex:    scheduleColor,
		Description: e.Description,
	}
	if !e.IsAllDay {
		t := e.StartDate.UTC().Format("15:04")
		d.Time = &t
	}
	return d
}
