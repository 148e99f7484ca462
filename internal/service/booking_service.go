package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"soggiorno/internal/engine"
	"soggiorno/internal/model"
	"soggiorno/internal/repository"
	"soggiorno/internal/rules"
	"soggiorno/internal/websocket"
	"soggiorno/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateDatasetRequest struct {
	Name         string `json:"name" binding:"required"`
	Municipality string `json:"municipality"`
	OverrideRate string `json:"override_rate"` // Decimal string, e.g. "6.00"
}

type UpdateDatasetRequest struct {
	Name         string `json:"name"`
	Municipality string `json:"municipality"`
	OverrideRate string `json:"override_rate"`
}

type DatasetResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Municipality string  `json:"municipality"`
	OverrideRate *string `json:"override_rate"`
	CreatedAt    string  `json:"created_at"`
}

type ImportBookingsRequest struct {
	Platform string          `json:"platform"` // booking, airbnb or empty for generic
	Rows     []engine.RawRow `json:"rows" binding:"required,min=1"`
}

type ToggleExemptionRequest struct {
	GuestName string `json:"guest_name" binding:"required"`
}

type ImportResult struct {
	DatasetID string `json:"dataset_id"`
	Imported  int    `json:"imported"`
}

type ComputedBookingResponse struct {
	ID              string `json:"id"`
	GuestName       string `json:"guest_name"`
	CountryCode     string `json:"country_code"`
	CountryName     string `json:"country_name"`
	TotalGuests     int    `json:"total_guests"`
	ChildCount      int    `json:"child_count"`
	ChildAges       []int  `json:"child_ages,omitempty"`
	Arrival         string `json:"arrival"`
	Departure       string `json:"departure"`
	Status          string `json:"status"`
	Nights          int    `json:"nights"`
	TaxableNights   int    `json:"taxable_nights"`
	ExemptChildren  int    `json:"exempt_children"`
	TaxableChildren int    `json:"taxable_children"`
	TaxableAdults   int    `json:"taxable_adults"`
	Rate            string `json:"rate"`
	ManuallyExempt  bool   `json:"manually_exempt"`
	SpansMonths     bool   `json:"spans_months"`
	TaxAmount       string `json:"tax_amount"`
}

// RecomputeOptions are per-request overrides for the what-if recompute: an
// empty field defers to the dataset's stored municipality/rate.
type RecomputeOptions struct {
	Municipality string
	Rate         string
}

// RecomputeContext carries the inputs a recompute resolved to, so reports
// and exports can echo them back.
type RecomputeContext struct {
	Dataset    model.Dataset
	Rule       model.MunicipalityRule
	Rate       decimal.Decimal // rate actually applied to non-seasonal rules
	Exemptions model.ExemptionSet
}

type ListBookingsOptions struct {
	RecomputeOptions
	Month string // YYYY-MM arrival filter, empty for all
	Page  int
	Limit int
}

// --- Interface ---

type BookingService interface {
	CreateDataset(ctx context.Context, req CreateDatasetRequest, userID string) (DatasetResponse, error)
	ListDatasets(ctx context.Context) ([]DatasetResponse, error)
	GetDataset(ctx context.Context, id string) (DatasetResponse, error)
	UpdateDataset(ctx context.Context, id string, req UpdateDatasetRequest, userID string) (DatasetResponse, error)
	DeleteDataset(ctx context.Context, id string, userID string) error

	ImportBookings(ctx context.Context, datasetID string, req ImportBookingsRequest, userID string) (ImportResult, error)
	ListBookings(ctx context.Context, datasetID string, opts ListBookingsOptions) ([]ComputedBookingResponse, int64, error)
	ToggleExemption(ctx context.Context, datasetID, guestName, userID string) (bool, error)

	// Recompute re-derives every computed booking of the dataset from its
	// stored rows. There is no incremental path: any rate, municipality or
	// exemption change recomputes the whole collection.
	Recompute(ctx context.Context, datasetID string, opts RecomputeOptions) ([]model.ComputedBooking, RecomputeContext, error)
}

type bookingService struct {
	datasets  repository.DatasetRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
	hub       *websocket.Hub
	logger    *zap.Logger
}

func NewBookingService(
	datasets repository.DatasetRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		datasets:  datasets,
		audits:    audits,
		txManager: txManager,
		hub:       hub,
		logger:    logger,
	}
}

// --- Implementation ---

func (s *bookingService) CreateDataset(ctx context.Context, req CreateDatasetRequest, userID string) (DatasetResponse, error) {
	rate, err := parseOptionalRate(req.OverrideRate)
	if err != nil {
		return DatasetResponse{}, err
	}
	if req.Municipality != "" {
		if _, ok := rules.Lookup(req.Municipality); !ok {
			return DatasetResponse{}, fmt.Errorf("unknown municipality '%s'", req.Municipality)
		}
	}

	ds := model.Dataset{
		Name:         req.Name,
		Municipality: req.Municipality,
		OverrideRate: rate,
	}
	if err := s.datasets.Create(ctx, &ds); err != nil {
		return DatasetResponse{}, fmt.Errorf("failed to create dataset: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionCreateDataset, ds.ID.String(), ds.Name, req)
	return toDatasetResponse(ds), nil
}

func (s *bookingService) ListDatasets(ctx context.Context) ([]DatasetResponse, error) {
	datasets, err := s.datasets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	res := make([]DatasetResponse, 0, len(datasets))
	for _, ds := range datasets {
		res = append(res, toDatasetResponse(ds))
	}
	return res, nil
}

func (s *bookingService) GetDataset(ctx context.Context, id string) (DatasetResponse, error) {
	ds, err := s.findDataset(ctx, id)
	if err != nil {
		return DatasetResponse{}, err
	}
	return toDatasetResponse(*ds), nil
}

func (s *bookingService) UpdateDataset(ctx context.Context, id string, req UpdateDatasetRequest, userID string) (DatasetResponse, error) {
	ds, err := s.findDataset(ctx, id)
	if err != nil {
		return DatasetResponse{}, err
	}

	if req.Name != "" {
		ds.Name = req.Name
	}
	if req.Municipality != "" {
		if _, ok := rules.Lookup(req.Municipality); !ok {
			return DatasetResponse{}, fmt.Errorf("unknown municipality '%s'", req.Municipality)
		}
		ds.Municipality = req.Municipality
	}
	if req.OverrideRate != "" {
		rate, err := parseOptionalRate(req.OverrideRate)
		if err != nil {
			return DatasetResponse{}, err
		}
		ds.OverrideRate = rate
	}

	if err := s.datasets.Update(ctx, ds); err != nil {
		return DatasetResponse{}, fmt.Errorf("failed to update dataset: %w", err)
	}

	// Stored parameters changed: previously served results are stale.
	s.notifyResultsUpdated(ds.ID.String())
	return toDatasetResponse(*ds), nil
}

func (s *bookingService) DeleteDataset(ctx context.Context, id string, userID string) error {
	ds, err := s.findDataset(ctx, id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.datasets.DeleteBookings(txCtx, ds.ID); err != nil {
			return err
		}
		return s.datasets.Delete(txCtx, ds.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionDeleteDataset, id, ds.Name, map[string]string{"deleted_id": id})
	return nil
}

func (s *bookingService) ImportBookings(ctx context.Context, datasetID string, req ImportBookingsRequest, userID string) (ImportResult, error) {
	ds, err := s.findDataset(ctx, datasetID)
	if err != nil {
		return ImportResult{}, err
	}

	bookings := engine.NormalizeAll(req.Rows, engine.ParsePlatform(req.Platform))
	for i := range bookings {
		bookings[i].DatasetID = ds.ID
	}

	if err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.datasets.InsertBookings(txCtx, bookings)
	}); err != nil {
		return ImportResult{}, fmt.Errorf("failed to import bookings: %w", err)
	}

	s.logger.Info("bookings imported",
		zap.String("dataset_id", ds.ID.String()),
		zap.String("platform", req.Platform),
		zap.Int("rows", len(bookings)))

	s.writeAuditLog(ctx, userID, model.ActionImportBookings, ds.ID.String(), ds.Name,
		map[string]any{"platform": req.Platform, "rows": len(bookings)})
	s.notifyResultsUpdated(ds.ID.String())

	return ImportResult{DatasetID: ds.ID.String(), Imported: len(bookings)}, nil
}

func (s *bookingService) ListBookings(ctx context.Context, datasetID string, opts ListBookingsOptions) ([]ComputedBookingResponse, int64, error) {
	computed, _, err := s.Recompute(ctx, datasetID, opts.RecomputeOptions)
	if err != nil {
		return nil, 0, err
	}

	if opts.Month != "" {
		filtered := computed[:0]
		for _, cb := range computed {
			if string(model.YearMonthOf(cb.Arrival)) == opts.Month {
				filtered = append(filtered, cb)
			}
		}
		computed = filtered
	}

	total := int64(len(computed))
	start, end := pagination.New(opts.Page, opts.Limit).Bounds(len(computed))

	res := make([]ComputedBookingResponse, 0, end-start)
	for _, cb := range computed[start:end] {
		res = append(res, toComputedBookingResponse(cb))
	}
	return res, total, nil
}

func (s *bookingService) ToggleExemption(ctx context.Context, datasetID, guestName, userID string) (bool, error) {
	ds, err := s.findDataset(ctx, datasetID)
	if err != nil {
		return false, err
	}
	if guestName == "" {
		return false, errors.New("guest name is required")
	}

	exempt := false
	_, err = s.datasets.FindExemption(ctx, ds.ID, guestName)
	switch {
	case err == nil:
		if err := s.datasets.RemoveExemption(ctx, ds.ID, guestName); err != nil {
			return false, fmt.Errorf("failed to remove exemption: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		ex := model.ManualExemption{DatasetID: ds.ID, GuestName: guestName}
		if err := s.datasets.AddExemption(ctx, &ex); err != nil {
			return false, fmt.Errorf("failed to add exemption: %w", err)
		}
		exempt = true
	default:
		return false, fmt.Errorf("failed to look up exemption: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionToggleExemption, ds.ID.String(), guestName,
		map[string]any{"guest_name": guestName, "exempt": exempt})
	s.notifyResultsUpdated(ds.ID.String())
	return exempt, nil
}

func (s *bookingService) Recompute(ctx context.Context, datasetID string, opts RecomputeOptions) ([]model.ComputedBooking, RecomputeContext, error) {
	ds, err := s.findDataset(ctx, datasetID)
	if err != nil {
		return nil, RecomputeContext{}, err
	}

	bookings, err := s.datasets.BookingsByDataset(ctx, ds.ID)
	if err != nil {
		return nil, RecomputeContext{}, fmt.Errorf("failed to load bookings: %w", err)
	}
	exemptionRows, err := s.datasets.ExemptionsByDataset(ctx, ds.ID)
	if err != nil {
		return nil, RecomputeContext{}, fmt.Errorf("failed to load exemptions: %w", err)
	}

	names := make([]string, 0, len(exemptionRows))
	for _, ex := range exemptionRows {
		names = append(names, ex.GuestName)
	}
	exemptions := model.NewExemptionSet(names...)

	municipality := ds.Municipality
	if opts.Municipality != "" {
		municipality = opts.Municipality
	}
	rule := rules.Resolve(municipality)

	rate := decimal.Zero
	if ds.OverrideRate != nil {
		rate = *ds.OverrideRate
	}
	if opts.Rate != "" {
		parsed, err := decimal.NewFromString(opts.Rate)
		if err != nil {
			return nil, RecomputeContext{}, fmt.Errorf("invalid rate value: %w", err)
		}
		rate = parsed
	}

	computed := engine.ComputeAll(bookings, rule, rate, exemptions)
	rc := RecomputeContext{Dataset: *ds, Rule: rule, Rate: rate, Exemptions: exemptions}
	if !rate.IsPositive() {
		rc.Rate = rule.DefaultRate
	}
	return computed, rc, nil
}

// --- Helpers ---

func (s *bookingService) findDataset(ctx context.Context, id string) (*model.Dataset, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset id: %w", err)
	}
	ds, err := s.datasets.FindByID(ctx, parsed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("dataset not found")
		}
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	return ds, nil
}

func parseOptionalRate(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid rate value: %w", err)
	}
	if rate.IsNegative() {
		return nil, errors.New("rate must not be negative")
	}
	return &rate, nil
}

func toDatasetResponse(ds model.Dataset) DatasetResponse {
	res := DatasetResponse{
		ID:           ds.ID.String(),
		Name:         ds.Name,
		Municipality: ds.Municipality,
		CreatedAt:    ds.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if ds.OverrideRate != nil {
		rate := ds.OverrideRate.StringFixed(2)
		res.OverrideRate = &rate
	}
	return res
}

func toComputedBookingResponse(cb model.ComputedBooking) ComputedBookingResponse {
	return ComputedBookingResponse{
		ID:              cb.ID.String(),
		GuestName:       cb.GuestName,
		CountryCode:     cb.CountryCode,
		CountryName:     CountryName(cb.CountryCode),
		TotalGuests:     cb.TotalGuests,
		ChildCount:      cb.ChildCount,
		ChildAges:       cb.ChildAges,
		Arrival:         cb.Arrival.Format("2006-01-02"),
		Departure:       cb.Departure.Format("2006-01-02"),
		Status:          string(cb.Status),
		Nights:          cb.Nights,
		TaxableNights:   cb.TaxableNights,
		ExemptChildren:  cb.ExemptChildren,
		TaxableChildren: cb.TaxableChildren,
		TaxableAdults:   cb.TaxableAdults,
		Rate:            cb.ResolvedRate.StringFixed(2),
		ManuallyExempt:  cb.ManuallyExempt,
		SpansMonths:     engine.AllocatePeriod(cb).SpansMonths,
		TaxAmount:       cb.TaxAmount.StringFixed(2),
	}
}

func (s *bookingService) notifyResultsUpdated(datasetID string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent("results_updated", map[string]string{"dataset_id": datasetID})
}

func (s *bookingService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}

	// Best-effort audit log — don't fail the operation if logging fails
	if err := s.audits.Log(ctx, &entry); err != nil {
		s.logger.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}
