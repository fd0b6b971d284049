package service

import (
	"context"
	"strconv"

	"ieum/internal/mbti"

	"github.com/google/uuid"
)

type MbtiSubmitRequest struct {
	Answers map[int]string `json:"answers" validate:"required"`
}

type MbtiQuestionsResponse struct {
	Questions []mbti.Question `json:"questions"`
}

type MbtiCoupleResultResponse struct {
	MyMbti        *string             `json:"myMbti"`
	PartnerMbti   *string             `json:"partnerMbti"`
	Compatibility *mbti.Compatibility `json:"compatibility"`
}

type MbtiService struct {
	Deps
}

func NewMbtiService(d Deps) *MbtiService {
	return &MbtiService{Deps: d}
}

func (s *MbtiService) Questions() MbtiQuestionsResponse {
	return MbtiQuestionsResponse{Questions: mbti.Questions()}
}

// Submit stores the caller's type and tells the couple about it when a partner exists.
func (s *MbtiService) Submit(ctx context.Context, userID uuid.UUID, req MbtiSubmitRequest) (*mbti.Result, error) {
	res, err := mbti.Score(req.Answers)
	if err != nil {
		return nil, err
	}
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	answers := make(map[string]string, len(req.Answers))
	for id, a := range req.Answers {
		answers[strconv.Itoa(id)] = a
	}
	u.MbtiType = &res.Type
	u.MbtiAnswers = answers
	if err := s.Users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}

	if c, err := s.coupleOf(ctx, userID); err == nil && c.IsComplete() {
		s.publish(ctx, c.ID, AreaCouple, MbtiUpdatedMessage{
			Type:      "MBTI_UPDATED",
			UserID:    userID,
			MbtiType:  res.Type,
			Timestamp: s.now(),
		})
	}
	return res, nil
}

// CoupleResult compares both types; compatibility stays null until both members have one.
func (s *MbtiService) CoupleResult(ctx context.Context, userID uuid.UUID) (*MbtiCoupleResultResponse, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	c, err := s.coupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &MbtiCoupleResultResponse{MyMbti: u.MbtiType}
	if partnerID, ok := c.OtherMember(userID); ok {
		p, err := s.user(ctx, partnerID)
		if err != nil {
			return nil, err
		}
		resp.PartnerMbti = p.MbtiType
	}
	if resp.MyMbti != nil && resp.PartnerMbti != nil {
		if resp.Compatibility, err = mbti.Compare(*resp.MyMbti, *resp.PartnerMbti); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
