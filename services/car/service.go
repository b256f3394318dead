package car

import (
	"context"
	"encoding/json"
	"time"

	carRepo "rentx/database/repository/car"
	"rentx/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	availableCarsKey = "cars:available"
	listingTTL       = 10 * time.Minute
)

// CarService is the read-mostly car surface with an explicit read-through
// cache on the availability listing. Mutations invalidate the cache; a
// scheduler task additionally clears it wholesale on a fixed cadence.
type CarService interface {
	GetCar(ctx context.Context, id string) (*models.Car, error)
	GetAvailableCars(ctx context.Context) ([]models.Car, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	ClearListingCache(ctx context.Context)
}

// DefaultCarService implements CarService.
type DefaultCarService struct {
	Repo   carRepo.CarRepository
	Cache  *redis.Client
	Logger *zap.Logger
}

func (s *DefaultCarService) GetCar(ctx context.Context, id string) (*models.Car, error) {
	return s.Repo.GetByID(ctx, id)
}

// GetAvailableCars serves the listing from cache when present, falling
// back to the repository and repopulating. Cache failures degrade to
// uncached reads.
func (s *DefaultCarService) GetAvailableCars(ctx context.Context) ([]models.Car, error) {
	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx, availableCarsKey).Result()
		if err == nil {
			var cars []models.Car
			if err := json.Unmarshal([]byte(cached), &cars); err == nil {
				return cars, nil
			}
			s.Logger.Warn("dropping unreadable car listing cache entry", zap.Error(err))
		} else if err != redis.Nil {
			s.Logger.Warn("car listing cache read failed", zap.Error(err))
		}
	}

	cars, err := s.Repo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if data, err := json.Marshal(cars); err == nil {
			if err := s.Cache.Set(ctx, availableCarsKey, data, listingTTL).Err(); err != nil {
				s.Logger.Warn("car listing cache write failed", zap.Error(err))
			}
		}
	}
	return cars, nil
}

// SetAvailability flips the availability flag and invalidates the cached
// listing. The auto-cancellation sweep uses this to free cars.
func (s *DefaultCarService) SetAvailability(ctx context.Context, id string, available bool) error {
	if err := s.Repo.SetAvailability(ctx, id, available); err != nil {
		return err
	}
	s.ClearListingCache(ctx)
	return nil
}

// ClearListingCache drops the cached availability listing.
func (s *DefaultCarService) ClearListingCache(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, availableCarsKey).Err(); err != nil {
		s.Logger.Warn("car listing cache clear failed", zap.Error(err))
	}
}
