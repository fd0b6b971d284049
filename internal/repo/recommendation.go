package repo

import (
	"context"

	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecommendationRepository interface {
	CreateRecommendation(ctx context.Context, r *model.Recommendation) error
	GetRecommendation(ctx context.Context, coupleID, id uuid.UUID) (*model.Recommendation, error)
	// GetRecommendationByID is used by the background processor, which has no couple context.
	GetRecommendationByID(ctx context.Context, id uuid.UUID) (*model.Recommendation, error)
	ListRecommendations(ctx context.Context, coupleID uuid.UUID, page Page) ([]model.Recommendation, int64, error)
	ListRecommendationIDsByStatus(ctx context.Context, status model.RecommendationStatus) ([]uuid.UUID, error)
	SaveRecommendation(ctx context.Context, r *model.Recommendation) error
}

type recommendationRepo struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepo{db: db}
}

func (r *recommendationRepo) CreateRecommendation(ctx context.Context, rec *model.Recommendation) error {
	return conn(ctx, r.db).Create(rec).Error
}

func (r *recommendationRepo) GetRecommendation(ctx context.Context, coupleID, id uuid.UUID) (*model.Recommendation, error) {
	var rec model.Recommendation
	if err := conn(ctx, r.db).Where("id = ? AND couple_id = ?", id, coupleID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepo) GetRecommendationByID(ctx context.Context, id uuid.UUID) (*model.Recommendation, error) {
	var rec model.Recommendation
	if err := conn(ctx, r.db).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recommendationRepo) ListRecommendations(ctx context.Context, coupleID uuid.UUID, page Page) ([]model.Recommendation, int64, error) {
	db := conn(ctx, r.db)
	var total int64
	if err := db.Model(&model.Recommendation{}).Where("couple_id = ?", coupleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []model.Recommendation
	err := db.Where("couple_id = ?", coupleID).
		Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&out).Error
	return out, total, err
}

func (r *recommendationRepo) ListRecommendationIDsByStatus(ctx context.Context, status model.RecommendationStatus) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := conn(ctx, r.db).Model(&model.Recommendation{}).
		Where("status = ?", status).
		Order("created_at").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *recommendationRepo) SaveRecommendation(ctx context.Context, rec *model.Recommendation) error {
	return conn(ctx, r.db).Save(rec).Error
}
