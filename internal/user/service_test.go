package user

import (
	"context"
	"errors"
	"testing"
)

type failingProfileRepo struct{}

func (failingProfileRepo) GetByID(context.Context, int) (Profile, error) {
	return Profile{}, errors.New("connection reset")
}

func TestBootstrap_ReadFailureIsNonCritical(t *testing.T) {
	svc := NewService(failingProfileRepo{}, nil)

	p := svc.Bootstrap(context.Background(), 42)
	if p.ID != 42 {
		t.Fatalf("expected fallback profile carrying the user id, got %+v", p)
	}
}

func TestBootstrap_ReturnsProfile(t *testing.T) {
	repo := NewInMemoryRepository([]Profile{{ID: 42, Email: "dana@example.com", Role: "customer"}})
	svc := NewService(repo, nil)

	p := svc.Bootstrap(context.Background(), 42)
	if p.Email != "dana@example.com" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}
