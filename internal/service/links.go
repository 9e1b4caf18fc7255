// Package service holds the link business logic shared by the HTTP
// handlers: input sanitization, persistence, and the date-grouped shape
// the API serves.
package service

import (
	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/query"
	"LinkBoard-Backend/internal/repository"
	"LinkBoard-Backend/pkg/validate"
	"context"
	"fmt"
)

type LinkService struct {
	storage repository.Storage
}

func NewLinkService(storage repository.Storage) *LinkService {
	return &LinkService{
		storage: storage,
	}
}

// CreateLinkInput is the raw client payload before sanitization.
type CreateLinkInput struct {
	URL         string
	Description string
	Tags        string
	Category    string
	IsPrivate   bool
}

// Create validates and sanitizes the input, then persists the link.
// Validation failures surface the sentinel errors from pkg/validate.
func (s *LinkService) Create(ctx context.Context, userID int64, input CreateLinkInput) (*domain.Link, error) {
	sanitizedURL, err := validate.URL(input.URL)
	if err != nil {
		return nil, err
	}
	category, err := validate.Category(input.Category)
	if err != nil {
		return nil, err
	}

	link := &domain.Link{
		UserID:    userID,
		URL:       sanitizedURL,
		IsPrivate: input.IsPrivate,
	}
	if desc := validate.TextMax(input.Description, validate.MaxDescriptionLen); desc != "" {
		link.Description = &desc
	}
	if tags := validate.Tags(input.Tags); tags != "" {
		link.Tags = &tags
	}
	if category != "" {
		link.Category = &category
	}

	if err := s.storage.CreateLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}
	return link, nil
}

// UserLinks returns the user's links grouped by creation date.
func (s *LinkService) UserLinks(ctx context.Context, userID int64) (query.Store, error) {
	links, err := s.storage.ListUserLinks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return query.BuildStore(links), nil
}

// PublicLinks returns every public link grouped by creation date, each
// annotated with the owner's username.
func (s *LinkService) PublicLinks(ctx context.Context) (query.Store, error) {
	links, err := s.storage.ListPublicLinks(ctx)
	if err != nil {
		return nil, err
	}
	return query.BuildStore(links), nil
}
