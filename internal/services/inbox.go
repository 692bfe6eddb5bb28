package services

import (
	"context"
	"strings"

	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"github.com/welldanyogia/webrana-catchmail/internal/preview"
	"github.com/welldanyogia/webrana-catchmail/internal/repository"
)

// EmailDetail is one email together with its chronological neighbours.
// Previous and Next are nil at either end of the inbox.
type EmailDetail struct {
	Email    *models.Email
	Previous *models.Email
	Next     *models.Email
}

// InboxService serves the read paths of the target inbox
type InboxService struct {
	repo   repository.EmailRepository
	target string
}

// NewInboxService creates a new InboxService scoped to targetEmail
func NewInboxService(repo repository.EmailRepository, targetEmail string) *InboxService {
	return &InboxService{repo: repo, target: strings.TrimSpace(targetEmail)}
}

// List returns every email in the inbox, newest first, with previews
func (s *InboxService) List(ctx context.Context) ([]models.EmailListItem, error) {
	emails, err := s.repo.ListByRecipient(ctx, s.target)
	if err != nil {
		return nil, err
	}

	items := make([]models.EmailListItem, 0, len(emails))
	for _, e := range emails {
		items = append(items, models.EmailListItem{
			ID:         e.ID,
			Sender:     e.Sender,
			Subject:    e.Subject,
			Preview:    preview.Build(e.Body, e.HTML),
			ReceivedAt: e.ReceivedAt,
		})
	}
	return items, nil
}

// Detail returns an email and its neighbours.
// Returns repository.ErrNotFound when the id is not in the inbox.
func (s *InboxService) Detail(ctx context.Context, id uint) (*EmailDetail, error) {
	email, err := s.repo.GetByID(ctx, s.target, id)
	if err != nil {
		return nil, err
	}

	prev, err := s.repo.GetPrevious(ctx, s.target, email.ReceivedAt, email.ID)
	if err != nil {
		return nil, err
	}

	next, err := s.repo.GetNext(ctx, s.target, email.ReceivedAt, email.ID)
	if err != nil {
		return nil, err
	}

	return &EmailDetail{Email: email, Previous: prev, Next: next}, nil
}

// Latest returns the newest email or repository.ErrNotFound when the inbox is empty
func (s *InboxService) Latest(ctx context.Context) (*models.Email, error) {
	return s.repo.GetLatest(ctx, s.target)
}
