package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/payrelay/interfaces"
	"github.com/customeros/payrelay/internal/models"
	"github.com/customeros/payrelay/internal/tracing"
	"github.com/customeros/payrelay/internal/utils"
)

type attributionDeliveryRepository struct {
	db *gorm.DB
}

// NewAttributionDeliveryRepository creates a new delivery log repository
func NewAttributionDeliveryRepository(db *gorm.DB) interfaces.AttributionDeliveryRepository {
	return &attributionDeliveryRepository{
		db: db,
	}
}

// Create inserts a new delivery record
func (r *attributionDeliveryRepository) Create(ctx context.Context, delivery *models.AttributionDelivery) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attributionDeliveryRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if delivery == nil {
		err := errors.New("delivery cannot be nil")
		tracing.TraceErr(span, err)
		return "", err
	}

	if delivery.ID == "" {
		delivery.ID = utils.GenerateNanoIDWithPrefix("adel", 16)
	}

	now := utils.Now()
	delivery.CreatedAt = now
	delivery.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	return delivery.ID, nil
}

// RecordAttempt bumps the attempt counter and stores the latest outcome
func (r *attributionDeliveryRepository) RecordAttempt(ctx context.Context, id string, status string, attemptErr string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attributionDeliveryRepository.RecordAttempt")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("id", id, "status", status)

	if id == "" {
		err := errors.New("delivery id cannot be empty")
		tracing.TraceErr(span, err)
		return err
	}

	updates := map[string]interface{}{
		"status":     status,
		"attempts":   gorm.Expr("attempts + 1"),
		"updated_at": utils.Now(),
	}
	if attemptErr != "" {
		updates["last_error"] = attemptErr
		updates["error_log"] = gorm.Expr("array_append(error_log, ?)", attemptErr)
	}

	result := r.db.WithContext(ctx).
		Model(&models.AttributionDelivery{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		err := errors.Errorf("delivery %s not found", id)
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

// ListRetryable returns failed deliveries that still have attempts left
func (r *attributionDeliveryRepository) ListRetryable(ctx context.Context, maxAttempts int, limit int) ([]models.AttributionDelivery, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attributionDeliveryRepository.ListRetryable")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var deliveries []models.AttributionDelivery
	err := r.db.WithContext(ctx).
		Where("status = ?", "failed").
		Where("attempts < ?", maxAttempts).
		Order("created_at asc").
		Limit(limit).
		Find(&deliveries).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return deliveries, nil
}
