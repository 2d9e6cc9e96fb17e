package user

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Service wraps profile reads for handlers.
type Service struct {
	repo   Repository
	logger *log.Entry
}

func NewService(repo Repository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "user")
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(ctx context.Context, id int) (Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// Bootstrap loads the profile at session start. Read failures here are
// non-critical: they are logged and an empty profile is returned so the
// session can proceed.
func (s *Service) Bootstrap(ctx context.Context, id int) Profile {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithField("userID", id).WithError(err).Warn("profile bootstrap read failed")
		return Profile{ID: id}
	}
	return p
}
