package setting

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/pkg/errors"
)

// Defaults applied when a setting row is missing or unparsable.
const (
	DefaultSlotLengthMinutes = 15
	DefaultCancellationHours = 24
)

// Service reads system settings through a short-lived in-process cache.
// Settings change rarely and are read on every slot computation, so a
// small TTL keeps the hot path off the database.
type Service struct {
	repo  repository.SettingRepository
	cache *cache.Cache
}

func NewService(repo repository.SettingRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(time.Minute, 5*time.Minute),
	}
}

// Get returns the raw value for key, or "" when the key is not set.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if v, found := s.cache.Get(key); found {
		return v.(string), nil
	}

	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if setting == nil {
		return "", nil
	}

	s.cache.Set(key, setting.Value, cache.DefaultExpiration)
	return setting.Value, nil
}

func (s *Service) getInt(ctx context.Context, key string, fallback int) int {
	raw, err := s.Get(ctx, key)
	if err != nil || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// SlotLengthMinutes returns the configured slot length in minutes.
func (s *Service) SlotLengthMinutes(ctx context.Context) int {
	return s.getInt(ctx, model.SettingSlotLengthMinutes, DefaultSlotLengthMinutes)
}

// CancellationHours returns the minimum lead time, in hours, required
// between now and an appointment for a cancellation to be accepted.
func (s *Service) CancellationHours(ctx context.Context) int {
	return s.getInt(ctx, model.SettingCancellationHours, DefaultCancellationHours)
}

func (s *Service) Upsert(ctx context.Context, key string, req *model.UpsertSettingRequest, updatedBy uuid.UUID) (*model.SystemSetting, error) {
	setting := &model.SystemSetting{
		Key:         key,
		Value:       req.Value,
		Description: req.Description,
		UpdatedBy:   &updatedBy,
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, errors.NewInternal(err)
	}

	s.cache.Delete(key)
	return setting, nil
}

func (s *Service) List(ctx context.Context) ([]*model.SystemSetting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return settings, nil
}
