package repository

import (
	"context"

	"soggiorno/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DatasetRepository is the data access layer for datasets, their bookings
// and their manual exemptions.
type DatasetRepository interface {
	Create(ctx context.Context, ds *model.Dataset) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Dataset, error)
	List(ctx context.Context) ([]model.Dataset, error)
	Update(ctx context.Context, ds *model.Dataset) error
	Delete(ctx context.Context, id uuid.UUID) error

	InsertBookings(ctx context.Context, bookings []model.Booking) error
	BookingsByDataset(ctx context.Context, datasetID uuid.UUID) ([]model.Booking, error)
	DeleteBookings(ctx context.Context, datasetID uuid.UUID) error

	ExemptionsByDataset(ctx context.Context, datasetID uuid.UUID) ([]model.ManualExemption, error)
	FindExemption(ctx context.Context, datasetID uuid.UUID, guestName string) (*model.ManualExemption, error)
	AddExemption(ctx context.Context, ex *model.ManualExemption) error
	RemoveExemption(ctx context.Context, datasetID uuid.UUID, guestName string) error
}

type datasetRepository struct {
	db *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

func (r *datasetRepository) Create(ctx context.Context, ds *model.Dataset) error {
	return GetDB(ctx, r.db).Create(ds).Error
}

func (r *datasetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Dataset, error) {
	var ds model.Dataset
	if err := GetDB(ctx, r.db).First(&ds, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ds, nil
}

func (r *datasetRepository) List(ctx context.Context) ([]model.Dataset, error) {
	var datasets []model.Dataset
	if err := GetDB(ctx, r.db).Order("created_at desc").Find(&datasets).Error; err != nil {
		return nil, err
	}
	return datasets, nil
}

func (r *datasetRepository) Update(ctx context.Context, ds *model.Dataset) error {
	return GetDB(ctx, r.db).Save(ds).Error
}

func (r *datasetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Dataset{}).Error
}

func (r *datasetRepository) InsertBookings(ctx context.Context, bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).CreateInBatches(bookings, 200).Error
}

// BookingsByDataset returns the bookings in import order, so recomputed
// results and exports keep the row order of the source file.
func (r *datasetRepository) BookingsByDataset(ctx context.Context, datasetID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := GetDB(ctx, r.db).
		Where("dataset_id = ?", datasetID).
		Order("created_at asc, id asc").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *datasetRepository) DeleteBookings(ctx context.Context, datasetID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("dataset_id = ?", datasetID).Delete(&model.Booking{}).Error
}

func (r *datasetRepository) ExemptionsByDataset(ctx context.Context, datasetID uuid.UUID) ([]model.ManualExemption, error) {
	var exemptions []model.ManualExemption
	if err := GetDB(ctx, r.db).Where("dataset_id = ?", datasetID).Find(&exemptions).Error; err != nil {
		return nil, err
	}
	return exemptions, nil
}

func (r *datasetRepository) FindExemption(ctx context.Context, datasetID uuid.UUID, guestName string) (*model.ManualExemption, error) {
	var ex model.ManualExemption
	if err := GetDB(ctx, r.db).
		First(&ex, "dataset_id = ? AND guest_name = ?", datasetID, guestName).Error; err != nil {
		return nil, err
	}
	return &ex, nil
}

func (r *datasetRepository) AddExemption(ctx context.Context, ex *model.ManualExemption) error {
	return GetDB(ctx, r.db).Create(ex).Error
}

func (r *datasetRepository) RemoveExemption(ctx context.Context, datasetID uuid.UUID, guestName string) error {
	return GetDB(ctx, r.db).
		Where("dataset_id = ? AND guest_name = ?", datasetID, guestName).
		Delete(&model.ManualExemption{}).Error
}
