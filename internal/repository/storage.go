package repository

import (
	"LinkBoard-Backend/internal/domain"
	"context"
	"errors"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already taken")
	ErrLinkNotFound = errors.New("link not found")
	ErrLinkLocked   = errors.New("link is locked by an administrator")
	ErrLastAdmin    = errors.New("cannot remove the last administrator")
)

type Storage interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Link methods
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLink(ctx context.Context, id int64) (*domain.Link, error)
	ListUserLinks(ctx context.Context, userID int64) ([]domain.Link, error)
	ListPublicLinks(ctx context.Context) ([]domain.Link, error)
	DeleteLink(ctx context.Context, id, userID int64) error
	SetFavorite(ctx context.Context, id, userID int64, favorite bool) error
	TogglePrivacy(ctx context.Context, id, userID int64) (*domain.Link, error)
	IncrementAccessCount(ctx context.Context, id int64, delta int64) error

	// Admin methods
	ListAllLinks(ctx context.Context) ([]domain.Link, error)
	ListAllUsers(ctx context.Context) ([]domain.User, error)
	AdminDeleteLink(ctx context.Context, id int64) error
	AdminToggleLinkLock(ctx context.Context, id int64) (*domain.Link, error)
	AdminForcePrivate(ctx context.Context, id int64) error
	AdminToggleUserAdmin(ctx context.Context, userID int64) (*domain.User, error)
	AdminDeleteUser(ctx context.Context, userID int64) error
}
