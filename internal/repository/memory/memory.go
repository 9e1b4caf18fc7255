// Package memory is an in-memory Storage used by tests and local runs
// without a database.
package memory

import (
	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

type Storage struct {
	mu         sync.RWMutex
	users      map[int64]*domain.User
	links      map[int64]*domain.Link
	nextUserID int64
	nextLinkID int64
}

func New() *Storage {
	return &Storage{
		users:      make(map[int64]*domain.User),
		links:      make(map[int64]*domain.Link),
		nextUserID: 1,
		nextLinkID: 1,
	}
}

// --- User Methods ---

func (s *Storage) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return repository.ErrUserExists
		}
	}

	user.ID = s.nextUserID
	s.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *Storage) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *Storage) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *Storage) GetUserByGoogleID(_ context.Context, googleID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.GoogleID != nil && *user.GoogleID == googleID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email != nil && *user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// --- Link Methods ---

func (s *Storage) CreateLink(_ context.Context, link *domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link.ID = s.nextLinkID
	s.nextLinkID++
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	clone := *link
	s.links[link.ID] = &clone
	return nil
}

func (s *Storage) GetLink(_ context.Context, id int64) (*domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	clone := *link
	return &clone, nil
}

func (s *Storage) ListUserLinks(_ context.Context, userID int64) ([]domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var links []domain.Link
	for _, link := range s.links {
		if link.UserID == userID {
			links = append(links, *link)
		}
	}
	sortByCreatedDesc(links)
	return links, nil
}

func (s *Storage) ListPublicLinks(_ context.Context) ([]domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var links []domain.Link
	for _, link := range s.links {
		if link.IsPrivate {
			continue
		}
		clone := *link
		if owner, ok := s.users[link.UserID]; ok {
			clone.Username = owner.Username
		}
		links = append(links, clone)
	}
	sortByCreatedDesc(links)
	return links, nil
}

func (s *Storage) DeleteLink(_ context.Context, id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok || link.UserID != userID {
		return repository.ErrLinkNotFound
	}
	delete(s.links, id)
	return nil
}

func (s *Storage) SetFavorite(_ context.Context, id, userID int64, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok || link.UserID != userID {
		return repository.ErrLinkNotFound
	}
	link.IsFavorite = favorite
	return nil
}

func (s *Storage) TogglePrivacy(_ context.Context, id, userID int64) (*domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok || link.UserID != userID {
		return nil, repository.ErrLinkNotFound
	}
	if link.IsLocked {
		return nil, repository.ErrLinkLocked
	}
	link.IsPrivate = !link.IsPrivate
	clone := *link
	return &clone, nil
}

func (s *Storage) IncrementAccessCount(_ context.Context, id int64, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return repository.ErrLinkNotFound
	}
	link.AccessCount += delta
	return nil
}

// --- Admin Methods ---

func (s *Storage) ListAllLinks(_ context.Context) ([]domain.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var links []domain.Link
	for _, link := range s.links {
		clone := *link
		if owner, ok := s.users[link.UserID]; ok {
			clone.Username = owner.Username
		}
		links = append(links, clone)
	}
	sortByCreatedDesc(links)
	return links, nil
}

func (s *Storage) ListAllUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []domain.User
	for _, user := range s.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Storage) AdminDeleteLink(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.links[id]; !ok {
		return repository.ErrLinkNotFound
	}
	delete(s.links, id)
	return nil
}

func (s *Storage) AdminToggleLinkLock(_ context.Context, id int64) (*domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	link.IsLocked = !link.IsLocked
	if link.IsLocked {
		link.IsPrivate = true
	}
	clone := *link
	return &clone, nil
}

func (s *Storage) AdminForcePrivate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return repository.ErrLinkNotFound
	}
	link.IsPrivate = true
	return nil
}

func (s *Storage) AdminToggleUserAdmin(_ context.Context, userID int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if user.IsAdmin && s.countAdmins() <= 1 {
		return nil, repository.ErrLastAdmin
	}
	user.IsAdmin = !user.IsAdmin
	clone := *user
	return &clone, nil
}

func (s *Storage) AdminDeleteUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.IsAdmin && s.countAdmins() <= 1 {
		return repository.ErrLastAdmin
	}

	for id, link := range s.links {
		if link.UserID == userID {
			delete(s.links, id)
		}
	}
	delete(s.users, userID)
	return nil
}

// --- Helpers ---

func (s *Storage) countAdmins() int {
	count := 0
	for _, user := range s.users {
		if user.IsAdmin {
			count++
		}
	}
	return count
}

func sortByCreatedDesc(links []domain.Link) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].ID > links[j].ID
		}
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
}
