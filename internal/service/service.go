package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/blacklist"
	"fintrack/internal/models"
	"fintrack/internal/storage"

	"github.com/gofrs/uuid"
)

// Pattern-only validation: case-variant duplicates of the same
// mailbox pass as distinct addresses.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	minNameLen     = 3
	minPasswordLen = 6
)

type Service interface {
	Register(ctx context.Context, name, email, password string) (models.User, string, error)
	Login(ctx context.Context, email, password string) (models.User, string, error)
	Logout(ctx context.Context, token string) error
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, email, password string) (models.User, error)
	Transactions(ctx context.Context, userID uuid.UUID, generalOnly bool) ([]models.Entry, error)

	CreateProject(ctx context.Context, userID uuid.UUID, name, description string) (models.Project, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (models.Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	UpdateProject(ctx context.Context, projectID uuid.UUID, name, description string) error
	DeleteProject(ctx context.Context, projectID uuid.UUID) error

	CreateEntry(ctx context.Context, kind models.EntryKind, userID uuid.UUID, tag, category string, amount float64, projectID *uuid.UUID) (models.Entry, error)
	DeleteEntry(ctx context.Context, kind models.EntryKind, entryID uuid.UUID) error
	ProjectEntries(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) ([]models.Entry, error)
	GeneralEntries(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error)
	UserEntries(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error)
	TotalForUser(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error)
	TotalForProject(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) (float64, error)
	TotalGeneral(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error)
}

type service struct {
	storage   storage.Storage
	issuer    *auth.Issuer
	blacklist blacklist.Blacklist
}

func NewService(st storage.Storage, issuer *auth.Issuer, bl blacklist.Blacklist) *service {
	return &service{
		storage:   st,
		issuer:    issuer,
		blacklist: bl,
	}
}

func (s *service) Register(ctx context.Context, name, email, password string) (models.User, string, error) {
	const op = "service.Register"

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if len(name) < minNameLen {
		return models.User{}, "", newValidationError("name must be at least 3 characters long")
	}
	if !emailPattern.MatchString(email) {
		return models.User{}, "", newValidationError("please enter a valid email address")
	}
	if len(password) < minPasswordLen {
		return models.User{}, "", newValidationError("password must be at least 6 characters long")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.CreateUser(ctx, name, email, passwordHash)
	if errors.Is(err, storage.ErrUserExists) {
		return models.User{}, "", ErrEmailTaken
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	user.PasswordHash = ""

	return user, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (models.User, string, error) {
	const op = "service.Login"

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, "", newValidationError("all fields are required")
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	if ok := auth.CheckPasswordHash(user.PasswordHash, password); !ok {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	user.PasswordHash = ""

	return user, token, nil
}

// Logout writes the raw token into the blacklist for the full token
// TTL, so the entry cannot expire before the token itself does.
func (s *service) Logout(ctx context.Context, token string) error {
	const op = "service.Logout"

	if err := s.blacklist.Revoke(ctx, token, s.issuer.TTL()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *service) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "service.GetUserByID"

	user, err := s.storage.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email, password string) (models.User, error) {
	const op = "service.UpdateProfile"

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if len(name) < minNameLen {
		return models.User{}, newValidationError("name must be at least 3 characters long")
	}
	if !emailPattern.MatchString(email) {
		return models.User{}, newValidationError("please enter a valid email address")
	}

	var passwordHash string
	if password != "" {
		if len(password) < minPasswordLen {
			return models.User{}, newValidationError("password must be at least 6 characters long")
		}

		var err error
		passwordHash, err = auth.HashPassword(password)
		if err != nil {
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	user, err := s.storage.UpdateUser(ctx, userID, name, email, passwordHash)
	switch {
	case errors.Is(err, storage.ErrUserExists):
		return models.User{}, ErrEmailTaken
	case errors.Is(err, storage.ErrNotFound):
		return models.User{}, ErrNotFound
	case err != nil:
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Transactions merges the user's incomes and expenses into one
// newest-first feed. With generalOnly set, only entries outside any
// project are included.
func (s *service) Transactions(ctx context.Context, userID uuid.UUID, generalOnly bool) ([]models.Entry, error) {
	const op = "service.Transactions"

	list := s.storage.ListEntriesByUser
	if generalOnly {
		list = s.storage.ListGeneralEntries
	}

	incomes, err := list(ctx, models.EntryIncome, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	expenses, err := list(ctx, models.EntryExpense, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transactions := append(incomes, expenses...)
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})

	return transactions, nil
}

func (s *service) CreateProject(ctx context.Context, userID uuid.UUID, name, description string) (models.Project, error) {
	const op = "service.CreateProject"

	name = strings.TrimSpace(name)
	if name == "" {
		return models.Project{}, newValidationError("project name is required")
	}

	project, err := s.storage.CreateProject(ctx, userID, name, description)
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

func (s *service) GetProject(ctx context.Context, projectID uuid.UUID) (models.Project, error) {
	const op = "service.GetProject"

	project, err := s.storage.GetProjectByID(ctx, projectID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

func (s *service) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	const op = "service.ListProjects"

	projects, err := s.storage.ListProjectsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

func (s *service) UpdateProject(ctx context.Context, projectID uuid.UUID, name, description string) error {
	const op = "service.UpdateProject"

	name = strings.TrimSpace(name)
	if name == "" {
		return newValidationError("project name is required")
	}

	err := s.storage.UpdateProject(ctx, projectID, name, description)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *service) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	const op = "service.DeleteProject"

	err := s.storage.DeleteProject(ctx, projectID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *service) CreateEntry(ctx context.Context, kind models.EntryKind, userID uuid.UUID, tag, category string, amount float64, projectID *uuid.UUID) (models.Entry, error) {
	const op = "service.CreateEntry"

	tag = strings.TrimSpace(tag)
	if tag == "" {
		return models.Entry{}, newValidationError("tag is required")
	}
	if amount <= 0 {
		return models.Entry{}, newValidationError("amount must be greater than zero")
	}

	if projectID != nil {
		if _, err := s.GetProject(ctx, *projectID); err != nil {
			return models.Entry{}, err
		}
	}

	entry, err := s.storage.CreateEntry(ctx, models.Entry{
		Tag:       tag,
		Amount:    amount,
		Category:  strings.TrimSpace(category),
		UserID:    userID,
		ProjectID: projectID,
		Kind:      kind,
	})
	if err != nil {
		return models.Entry{}, fmt.Errorf("%s: %w", op, err)
	}

	return entry, nil
}

func (s *service) DeleteEntry(ctx context.Context, kind models.EntryKind, entryID uuid.UUID) error {
	const op = "service.DeleteEntry"

	err := s.storage.DeleteEntry(ctx, kind, entryID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *service) ProjectEntries(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) ([]models.Entry, error) {
	const op = "service.ProjectEntries"

	entries, err := s.storage.ListEntriesByProject(ctx, kind, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

func (s *service) GeneralEntries(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error) {
	const op = "service.GeneralEntries"

	entries, err := s.storage.ListGeneralEntries(ctx, kind, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

func (s *service) UserEntries(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error) {
	const op = "service.UserEntries"

	entries, err := s.storage.ListEntriesByUser(ctx, kind, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

func (s *service) TotalForUser(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error) {
	const op = "service.TotalForUser"

	total, err := s.storage.TotalByUser(ctx, kind, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

func (s *service) TotalForProject(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) (float64, error) {
	const op = "service.TotalForProject"

	total, err := s.storage.TotalByProject(ctx, kind, projectID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

func (s *service) TotalGeneral(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error) {
	const op = "service.TotalGeneral"

	total, err := s.storage.TotalGeneral(ctx, kind, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}
