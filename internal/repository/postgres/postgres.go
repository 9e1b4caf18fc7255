// Package postgres implements the Storage interface on PostgreSQL via GORM.
package postgres

import (
	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostgresStorage struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{
		db:  db,
		log: log,
	}
}

// --- User Methods ---

func (s *PostgresStorage) CreateUser(ctx context.Context, user *domain.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		s.log.Error("failed to check username", zap.String("username", user.Username), zap.Error(err))
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return repository.ErrUserExists
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		s.log.Error("failed to create user", zap.String("username", user.Username), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("created new user", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user", zap.Int64("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by username", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStorage) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by google_id", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// --- Link Methods ---

func (s *PostgresStorage) CreateLink(ctx context.Context, link *domain.Link) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		s.log.Error("failed to create link", zap.Int64("user_id", link.UserID), zap.Error(err))
		return fmt.Errorf("failed to create link: %w", err)
	}

	s.log.Info("created link", zap.Int64("link_id", link.ID), zap.Int64("user_id", link.UserID))
	return nil
}

func (s *PostgresStorage) GetLink(ctx context.Context, id int64) (*domain.Link, error) {
	var link domain.Link
	err := s.db.WithContext(ctx).First(&link, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link", zap.Int64("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return &link, nil
}

func (s *PostgresStorage) ListUserLinks(ctx context.Context, userID int64) ([]domain.Link, error) {
	var links []domain.Link
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&links).Error
	if err != nil {
		s.log.Error("failed to list user links", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list user links: %w", err)
	}
	return links, nil
}

// ListPublicLinks returns public links from every user, each annotated
// with the owner's username for display.
func (s *PostgresStorage) ListPublicLinks(ctx context.Context) ([]domain.Link, error) {
	var links []domain.Link
	err := s.db.WithContext(ctx).Model(&domain.Link{}).
		Select("links.*, users.username AS username").
		Joins("JOIN users ON users.id = links.user_id").
		Where("links.is_private = ?", false).
		Order("links.created_at DESC").
		Scan(&links).Error
	if err != nil {
		s.log.Error("failed to list public links", zap.Error(err))
		return nil, fmt.Errorf("failed to list public links: %w", err)
	}
	return links, nil
}

func (s *PostgresStorage) DeleteLink(ctx context.Context, id, userID int64) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Link{})
	if result.Error != nil {
		s.log.Error("failed to delete link", zap.Int64("link_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	s.log.Info("deleted link", zap.Int64("link_id", id), zap.Int64("user_id", userID))
	return nil
}

func (s *PostgresStorage) SetFavorite(ctx context.Context, id, userID int64, favorite bool) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_favorite", favorite)
	if result.Error != nil {
		s.log.Error("failed to set favorite", zap.Int64("link_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to set favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}
	return nil
}

// TogglePrivacy flips is_private unless an administrator locked the link.
func (s *PostgresStorage) TogglePrivacy(ctx context.Context, id, userID int64) (*domain.Link, error) {
	var link domain.Link
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link for privacy toggle", zap.Int64("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	if link.IsLocked {
		return nil, repository.ErrLinkLocked
	}

	link.IsPrivate = !link.IsPrivate
	if err := s.db.WithContext(ctx).Model(&link).Update("is_private", link.IsPrivate).Error; err != nil {
		s.log.Error("failed to toggle privacy", zap.Int64("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to toggle privacy: %w", err)
	}
	return &link, nil
}

func (s *PostgresStorage) IncrementAccessCount(ctx context.Context, id int64, delta int64) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("id = ?", id).
		Update("access_count", gorm.Expr("access_count + ?", delta))
	if result.Error != nil {
		s.log.Error("failed to increment access count", zap.Int64("link_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to increment access count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}
	return nil
}

// --- Admin Methods ---

func (s *PostgresStorage) ListAllLinks(ctx context.Context) ([]domain.Link, error) {
	var links []domain.Link
	err := s.db.WithContext(ctx).Model(&domain.Link{}).
		Select("links.*, users.username AS username").
		Joins("JOIN users ON users.id = links.user_id").
		Order("links.created_at DESC").
		Scan(&links).Error
	if err != nil {
		s.log.Error("failed to list all links", zap.Error(err))
		return nil, fmt.Errorf("failed to list all links: %w", err)
	}
	return links, nil
}

func (s *PostgresStorage) ListAllUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	if err != nil {
		s.log.Error("failed to list all users", zap.Error(err))
		return nil, fmt.Errorf("failed to list all users: %w", err)
	}
	return users, nil
}

func (s *PostgresStorage) AdminDeleteLink(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&domain.Link{}, id)
	if result.Error != nil {
		s.log.Error("failed to admin-delete link", zap.Int64("link_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to delete link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	s.log.Info("admin deleted link", zap.Int64("link_id", id))
	return nil
}

// AdminToggleLinkLock flips the lock flag. Locking also forces the link
// private so the owner cannot re-expose it.
func (s *PostgresStorage) AdminToggleLinkLock(ctx context.Context, id int64) (*domain.Link, error) {
	var link domain.Link
	err := s.db.WithContext(ctx).First(&link, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrLinkNotFound
	}
	if err != nil {
		s.log.Error("failed to get link for lock toggle", zap.Int64("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	link.IsLocked = !link.IsLocked
	updates := map[string]any{"is_locked": link.IsLocked}
	if link.IsLocked {
		link.IsPrivate = true
		updates["is_private"] = true
	}

	if err := s.db.WithContext(ctx).Model(&link).Updates(updates).Error; err != nil {
		s.log.Error("failed to toggle link lock", zap.Int64("link_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to toggle lock: %w", err)
	}

	s.log.Info("admin toggled link lock", zap.Int64("link_id", id), zap.Bool("is_locked", link.IsLocked))
	return &link, nil
}

func (s *PostgresStorage) AdminForcePrivate(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&domain.Link{}).
		Where("id = ?", id).
		Update("is_private", true)
	if result.Error != nil {
		s.log.Error("failed to force link private", zap.Int64("link_id", id), zap.Error(result.Error))
		return fmt.Errorf("failed to force private: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrLinkNotFound
	}

	s.log.Info("admin forced link private", zap.Int64("link_id", id))
	return nil
}

// AdminToggleUserAdmin flips the admin flag. Demoting the last remaining
// administrator is refused so the instance cannot lock itself out.
func (s *PostgresStorage) AdminToggleUserAdmin(ctx context.Context, userID int64) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user for admin toggle", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin {
		var admins int64
		if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
			return nil, fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return nil, repository.ErrLastAdmin
		}
	}

	user.IsAdmin = !user.IsAdmin
	if err := s.db.WithContext(ctx).Model(&user).Update("is_admin", user.IsAdmin).Error; err != nil {
		s.log.Error("failed to toggle admin flag", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to toggle admin: %w", err)
	}

	s.log.Info("admin toggled user role", zap.Int64("user_id", userID), zap.Bool("is_admin", user.IsAdmin))
	return &user, nil
}

// AdminDeleteUser removes a user and all of their links in one transaction.
func (s *PostgresStorage) AdminDeleteUser(ctx context.Context, userID int64) error {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrUserNotFound
	}
	if err != nil {
		s.log.Error("failed to get user for deletion", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsAdmin {
		var admins int64
		if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return repository.ErrLastAdmin
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Link{}).Error; err != nil {
			return fmt.Errorf("failed to delete user links: %w", err)
		}
		if err := tx.Delete(&domain.User{}, userID).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to delete user", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}

	s.log.Info("admin deleted user", zap.Int64("user_id", userID), zap.String("username", user.Username))
	return nil
}
