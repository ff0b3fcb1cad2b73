package application

import (
	"context"
	"time"

	"github.com/sngm3741/webform-relay/internal/message/domain"
)

// MessageRepository is the persistence port for stored messages.
type MessageRepository interface {
	Insert(ctx context.Context, msg domain.StoredMessage) (string, error)
}

// PersistService stamps incoming submissions and hands them to the repository.
type PersistService interface {
	Persist(ctx context.Context, sub domain.Submission) (domain.StoredMessage, error)
}

type persistService struct {
	repo     MessageRepository
	location *time.Location
	now      func() time.Time
}

// NewPersistService creates a PersistService. Timestamps are rendered in loc;
// a nil loc means the server's local time zone.
func NewPersistService(repo MessageRepository, loc *time.Location) PersistService {
	return newPersistService(repo, loc, time.Now)
}

func newPersistService(repo MessageRepository, loc *time.Location, now func() time.Time) *persistService {
	if loc == nil {
		loc = time.Local
	}
	return &persistService{repo: repo, location: loc, now: now}
}

func (s *persistService) Persist(ctx context.Context, sub domain.Submission) (domain.StoredMessage, error) {
	msg := domain.NewStoredMessage(sub, s.now().In(s.location))
	id, err := s.repo.Insert(ctx, msg)
	if err != nil {
		return msg, err
	}
	msg.ID = id
	return msg, nil
}
