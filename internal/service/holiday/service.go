package holiday

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/holiday"
	"github.com/google/uuid"
)

type holidayServiceImpl struct {
	holidayRepo holiday.HolidayRepository
	logger      *slog.Logger
}

func NewHolidayService(holidayRepo holiday.HolidayRepository, logger *slog.Logger) holiday.HolidayService {
	return &holidayServiceImpl{
		holidayRepo: holidayRepo,
		logger:      logger,
	}
}

func (s *holidayServiceImpl) Create(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	id, err := uuid.NewV7()
	if err != nil {
		return holiday.HolidayResponse{}, fmt.Errorf("failed to generate holiday id: %w", err)
	}

	created, err := s.holidayRepo.Create(ctx, holiday.Holiday{
		ID:   id.String(),
		Date: date,
		Name: req.Name,
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}

	// Periods already created keep their working days until the next generation run
	s.logger.Info("Holiday created", "holiday_id", created.ID, "date", req.Date)
	return mapToResponse(created), nil
}

func (s *holidayServiceImpl) List(ctx context.Context, filter holiday.HolidayFilter) ([]holiday.HolidayResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	from, _ := time.Parse("2006-01-02", filter.From)
	to, _ := time.Parse("2006-01-02", filter.To)

	holidays, err := s.holidayRepo.ListInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	result := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		result = append(result, mapToResponse(h))
	}
	return result, nil
}

func (s *holidayServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.holidayRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Holiday deleted", "holiday_id", id)
	return nil
}

func mapToResponse(h holiday.Holiday) holiday.HolidayResponse {
	return holiday.HolidayResponse{
		ID:   h.ID,
		Date: h.Date.Format("2006-01-02"),
		Name: h.Name,
	}
}
