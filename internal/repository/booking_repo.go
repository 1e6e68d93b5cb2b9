package repository

import (
	"context"
	"time"

	"shiftly/internal/models"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateStatusIf moves the booking's status only when the current status is
// one of from, returning whether the write happened.
func (r *BookingRepository) UpdateStatusIf(ctx context.Context, id uint, from []string, to string, set map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range set {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// ListOverlapping returns the worker's bookings for one business whose date
// range intersects [from, to) and whose status is accepted or later.
func (r *BookingRepository) ListOverlapping(ctx context.Context, workerID, businessID uint, from, to time.Time, statuses []string) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.WithContext(ctx).
		Where("worker_id = ? AND business_id = ? AND status IN ?", workerID, businessID, statuses).
		Where("start_date < ? AND end_date >= ?", to, from).
		Order("start_date ASC").
		Find(&list).Error
	return list, err
}
