package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/models"

	"github.com/gofrs/uuid"
)

// MemoryStorage is an in-process Storage with the same observable
// semantics as PostgresStorage (unique email, ErrNotFound, newest
// first listings). Used by tests; not wired into the server.
type MemoryStorage struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]models.User
	projects map[uuid.UUID]models.Project
	entries  map[uuid.UUID]models.Entry
	seq      int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:    make(map[uuid.UUID]models.User),
		projects: make(map[uuid.UUID]models.Project),
		entries:  make(map[uuid.UUID]models.Entry),
	}
}

// now returns strictly increasing timestamps so that ordering by
// created_at is deterministic even within one wall-clock tick.
func (m *MemoryStorage) now() time.Time {
	m.seq++
	return time.Now().UTC().Add(time.Duration(m.seq) * time.Microsecond)
}

func (m *MemoryStorage) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return models.User{}, ErrUserExists
		}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return models.User{}, fmt.Errorf("storage.CreateUser: %w", err)
	}

	now := m.now()
	user := models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[id] = user

	user.PasswordHash = ""
	user.Projects = []uuid.UUID{}
	return user, nil
}

func (m *MemoryStorage) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return models.User{}, ErrNotFound
	}

	user.PasswordHash = ""
	user.Projects = m.projectIDs(userID)
	return user, nil
}

func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			user.Projects = m.projectIDs(user.ID)
			return user, nil
		}
	}

	return models.User{}, ErrNotFound
}

func (m *MemoryStorage) UpdateUser(ctx context.Context, userID uuid.UUID, name, email, passwordHash string) (models.User, error) {
	m.mu.Lock()

	user, ok := m.users[userID]
	if !ok {
		m.mu.Unlock()
		return models.User{}, ErrNotFound
	}

	for _, u := range m.users {
		if u.ID != userID && u.Email == email {
			m.mu.Unlock()
			return models.User{}, ErrUserExists
		}
	}

	user.Name = name
	user.Email = email
	if passwordHash != "" {
		user.PasswordHash = passwordHash
	}
	user.UpdatedAt = m.now()
	m.users[userID] = user
	m.mu.Unlock()

	return m.GetUserByID(ctx, userID)
}

func (m *MemoryStorage) projectIDs(userID uuid.UUID) []uuid.UUID {
	ids := []uuid.UUID{}
	for _, project := range m.projects {
		if project.UserID == userID {
			ids = append(ids, project.ID)
		}
	}
	return ids
}

func (m *MemoryStorage) CreateProject(ctx context.Context, userID uuid.UUID, name, description string) (models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := uuid.NewV4()
	if err != nil {
		return models.Project{}, fmt.Errorf("storage.CreateProject: %w", err)
	}

	now := m.now()
	project := models.Project{
		ID:          id,
		Name:        name,
		Description: description,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.projects[id] = project

	return project, nil
}

func (m *MemoryStorage) GetProjectByID(ctx context.Context, projectID uuid.UUID) (models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	project, ok := m.projects[projectID]
	if !ok {
		return models.Project{}, ErrNotFound
	}

	return project, nil
}

func (m *MemoryStorage) ListProjectsByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	projects := []models.Project{}
	for _, project := range m.projects {
		if project.UserID == userID {
			projects = append(projects, project)
		}
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})

	return projects, nil
}

func (m *MemoryStorage) UpdateProject(ctx context.Context, projectID uuid.UUID, name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	project, ok := m.projects[projectID]
	if !ok {
		return ErrNotFound
	}

	project.Name = name
	project.Description = description
	project.UpdatedAt = m.now()
	m.projects[projectID] = project

	return nil
}

func (m *MemoryStorage) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[projectID]; !ok {
		return ErrNotFound
	}
	delete(m.projects, projectID)

	for id, entry := range m.entries {
		if entry.ProjectID != nil && *entry.ProjectID == projectID {
			entry.ProjectID = nil
			m.entries[id] = entry
		}
	}

	return nil
}

func (m *MemoryStorage) CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := uuid.NewV4()
	if err != nil {
		return models.Entry{}, fmt.Errorf("storage.CreateEntry: %w", err)
	}

	entry.ID = id
	entry.CreatedAt = m.now()
	m.entries[id] = entry

	return entry, nil
}

func (m *MemoryStorage) DeleteEntry(ctx context.Context, kind models.EntryKind, entryID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[entryID]
	if !ok || entry.Kind != kind {
		return ErrNotFound
	}
	delete(m.entries, entryID)

	return nil
}

func (m *MemoryStorage) ListEntriesByProject(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) ([]models.Entry, error) {
	return m.list(kind, func(e models.Entry) bool {
		return e.ProjectID != nil && *e.ProjectID == projectID
	}), nil
}

func (m *MemoryStorage) ListGeneralEntries(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error) {
	return m.list(kind, func(e models.Entry) bool {
		return e.UserID == userID && e.ProjectID == nil
	}), nil
}

func (m *MemoryStorage) ListEntriesByUser(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error) {
	return m.list(kind, func(e models.Entry) bool {
		return e.UserID == userID
	}), nil
}

func (m *MemoryStorage) list(kind models.EntryKind, match func(models.Entry) bool) []models.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := []models.Entry{}
	for _, entry := range m.entries {
		if entry.Kind == kind && match(entry) {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries
}

func (m *MemoryStorage) TotalByUser(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error) {
	return m.sum(kind, func(e models.Entry) bool {
		return e.UserID == userID
	}), nil
}

func (m *MemoryStorage) TotalByProject(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) (float64, error) {
	return m.sum(kind, func(e models.Entry) bool {
		return e.ProjectID != nil && *e.ProjectID == projectID
	}), nil
}

func (m *MemoryStorage) TotalGeneral(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error) {
	return m.sum(kind, func(e models.Entry) bool {
		return e.UserID == userID && e.ProjectID == nil
	}), nil
}

func (m *MemoryStorage) sum(kind models.EntryKind, match func(models.Entry) bool) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total float64
	for _, entry := range m.entries {
		if entry.Kind == kind && match(entry) {
			total += entry.Amount
		}
	}

	return total
}

func (m *MemoryStorage) Close() {}
