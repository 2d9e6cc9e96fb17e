package address

import "context"

// Service validates and stores checkout addresses.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByUser(ctx context.Context, userID int) ([]Saved, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Create(ctx context.Context, userID int, a Address) (Saved, error) {
	if err := Validate(a); err != nil {
		return Saved{}, err
	}
	return s.repo.Create(ctx, userID, a)
}
