package car

import (
	"context"
	"testing"

	"rentx/models"

	"go.uber.org/zap"
)

type fakeCarRepo struct {
	cars         []models.Car
	availability map[string]bool
	getCalls     int
}

func (f *fakeCarRepo) GetByID(ctx context.Context, id string) (*models.Car, error) {
	for i := range f.cars {
		if f.cars[i].ID == id {
			return &f.cars[i], nil
		}
	}
	return nil, nil
}

func (f *fakeCarRepo) GetAvailable(ctx context.Context) ([]models.Car, error) {
	f.getCalls++
	var out []models.Car
	for _, c := range f.cars {
		if c.Available {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCarRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	if f.availability == nil {
		f.availability = map[string]bool{}
	}
	f.availability[id] = available
	return nil
}

func newService(repo *fakeCarRepo) *DefaultCarService {
	// No cache wired: every read must degrade to the repository.
	return &DefaultCarService{Repo: repo, Logger: zap.NewNop()}
}

func TestGetAvailableCarsWithoutCache(t *testing.T) {
	repo := &fakeCarRepo{cars: []models.Car{
		{ID: "car-1", Available: true},
		{ID: "car-2", Available: false},
		{ID: "car-3", Available: true},
	}}
	svc := newService(repo)

	cars, err := svc.GetAvailableCars(context.Background())
	if err != nil {
		t.Fatalf("GetAvailableCars: %v", err)
	}
	if len(cars) != 2 {
		t.Errorf("got %d cars, want 2", len(cars))
	}
	if repo.getCalls != 1 {
		t.Errorf("repo reads = %d, want 1", repo.getCalls)
	}
}

func TestSetAvailability(t *testing.T) {
	repo := &fakeCarRepo{cars: []models.Car{{ID: "car-1", Available: false}}}
	svc := newService(repo)

	if err := svc.SetAvailability(context.Background(), "car-1", true); err != nil {
		t.Fatalf("SetAvailability: %v", err)
	}
	if !repo.availability["car-1"] {
		t.Error("availability flag was not written through")
	}
}
