package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/models"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	usersTable    = "users"
	projectsTable = "projects"
	incomesTable  = "incomes"
	expensesTable = "expenses"
)

const uniqueViolationCode = "23505"

type Storage interface {

	// Пользователи
	CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, name, email, passwordHash string) (models.User, error)

	// Проекты
	CreateProject(ctx context.Context, userID uuid.UUID, name, description string) (models.Project, error)
	GetProjectByID(ctx context.Context, projectID uuid.UUID) (models.Project, error)
	ListProjectsByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	UpdateProject(ctx context.Context, projectID uuid.UUID, name, description string) error
	DeleteProject(ctx context.Context, projectID uuid.UUID) error

	// Доходы и расходы
	CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error)
	DeleteEntry(ctx context.Context, kind models.EntryKind, entryID uuid.UUID) error
	ListEntriesByProject(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) ([]models.Entry, error)
	ListGeneralEntries(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error)
	ListEntriesByUser(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error)
	TotalByUser(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error)
	TotalByProject(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) (float64, error)
	TotalGeneral(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error)

	Close()
}

type PostgresStorage struct {
	db *pgxpool.Pool
}

func NewPostgresStorage(dbURL string) (*PostgresStorage, error) {
	const op = "storage.NewPostgresStorage"

	conn, err := pgxpool.Connect(context.Background(), dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PostgresStorage{
		db: conn,
	}, nil
}

// Init creates the schema when it does not exist yet. The unique
// index on users.email backs ErrUserExists.
func (p *PostgresStorage) Init(ctx context.Context) error {
	const op = "storage.Init"

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS %[2]s (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		user_id UUID NOT NULL REFERENCES %[1]s(id),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS %[3]s (
		id UUID PRIMARY KEY,
		tag TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		user_id UUID NOT NULL REFERENCES %[1]s(id),
		project_id UUID REFERENCES %[2]s(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS %[4]s (
		id UUID PRIMARY KEY,
		tag TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		user_id UUID NOT NULL REFERENCES %[1]s(id),
		project_id UUID REFERENCES %[2]s(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`, usersTable, projectsTable, incomesTable, expensesTable)

	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func entriesTable(kind models.EntryKind) string {
	if kind == models.EntryExpense {
		return expensesTable
	}
	return incomesTable
}

func (p *PostgresStorage) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	const op = "storage.CreateUser"

	id, err := uuid.NewV4()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO %s(id, name, email, password_hash, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5);`, usersTable)

	if _, err := p.db.Exec(ctx, query, id, name, email, passwordHash, now); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.User{
		ID:        id,
		Name:      name,
		Email:     email,
		Projects:  []uuid.UUID{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "storage.GetUserByID"

	var user models.User
	query := fmt.Sprintf("SELECT id, name, email, created_at, updated_at FROM %s WHERE id=$1;", usersTable)

	err := p.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("%s: %w", op, err)
	}

	if user.Projects, err = p.projectIDs(ctx, user.ID); err != nil {
		return user, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// GetUserByEmail is the only lookup that carries the password hash
// out of the store; callers use it for credential comparison only.
func (p *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.GetUserByEmail"

	var user models.User
	query := fmt.Sprintf("SELECT id, name, email, password_hash, created_at, updated_at FROM %s WHERE email=$1;", usersTable)

	err := p.db.QueryRow(ctx, query, email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return user, ErrNotFound
	}
	if err != nil {
		return user, fmt.Errorf("%s: %w", op, err)
	}

	if user.Projects, err = p.projectIDs(ctx, user.ID); err != nil {
		return user, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (p *PostgresStorage) UpdateUser(ctx context.Context, userID uuid.UUID, name, email, passwordHash string) (models.User, error) {
	const op = "storage.UpdateUser"

	var query string
	var err error
	if passwordHash != "" {
		query = fmt.Sprintf("UPDATE %s SET name=$1, email=$2, password_hash=$3, updated_at=$4 WHERE id=$5;", usersTable)
		_, err = p.db.Exec(ctx, query, name, email, passwordHash, time.Now().UTC(), userID)
	} else {
		query = fmt.Sprintf("UPDATE %s SET name=$1, email=$2, updated_at=$3 WHERE id=$4;", usersTable)
		_, err = p.db.Exec(ctx, query, name, email, time.Now().UTC(), userID)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return models.User{}, ErrUserExists
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return p.GetUserByID(ctx, userID)
}

func (p *PostgresStorage) projectIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := fmt.Sprintf("SELECT id FROM %s WHERE user_id=$1;", projectsTable)

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (p *PostgresStorage) CreateProject(ctx context.Context, userID uuid.UUID, name, description string) (models.Project, error) {
	const op = "storage.CreateProject"

	id, err := uuid.NewV4()
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO %s(id, name, description, user_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $5);`, projectsTable)

	if _, err := p.db.Exec(ctx, query, id, name, description, userID, now); err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Project{
		ID:          id,
		Name:        name,
		Description: description,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (p *PostgresStorage) GetProjectByID(ctx context.Context, projectID uuid.UUID) (models.Project, error) {
	const op = "storage.GetProjectByID"

	var project models.Project
	query := fmt.Sprintf("SELECT id, name, description, user_id, created_at, updated_at FROM %s WHERE id=$1;", projectsTable)

	err := p.db.QueryRow(ctx, query, projectID).Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.UserID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return project, ErrNotFound
	}
	if err != nil {
		return project, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

func (p *PostgresStorage) ListProjectsByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	const op = "storage.ListProjectsByUser"

	query := fmt.Sprintf(`SELECT id, name, description, user_id, created_at, updated_at
	FROM %s WHERE user_id=$1 ORDER BY created_at DESC;`, projectsTable)

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var project models.Project

		err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Description,
			&project.UserID,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s (rows): %w", op, err)
	}

	return projects, nil
}

func (p *PostgresStorage) UpdateProject(ctx context.Context, projectID uuid.UUID, name, description string) error {
	const op = "storage.UpdateProject"

	query := fmt.Sprintf("UPDATE %s SET name=$1, description=$2, updated_at=$3 WHERE id=$4;", projectsTable)

	tag, err := p.db.Exec(ctx, query, name, description, time.Now().UTC(), projectID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *PostgresStorage) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	const op = "storage.DeleteProject"

	query := fmt.Sprintf("DELETE FROM %s WHERE id=$1;", projectsTable)

	tag, err := p.db.Exec(ctx, query, projectID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *PostgresStorage) CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	const op = "storage.CreateEntry"

	id, err := uuid.NewV4()
	if err != nil {
		return models.Entry{}, fmt.Errorf("%s: %w", op, err)
	}

	entry.ID = id
	entry.CreatedAt = time.Now().UTC()

	query := fmt.Sprintf(`INSERT INTO %s(id, tag, amount, category, user_id, project_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);`, entriesTable(entry.Kind))

	var projectID uuid.NullUUID
	if entry.ProjectID != nil {
		projectID = uuid.NullUUID{UUID: *entry.ProjectID, Valid: true}
	}

	if _, err := p.db.Exec(ctx, query, entry.ID, entry.Tag, entry.Amount, entry.Category, entry.UserID, projectID, entry.CreatedAt); err != nil {
		return models.Entry{}, fmt.Errorf("%s: %w", op, err)
	}

	return entry, nil
}

func (p *PostgresStorage) DeleteEntry(ctx context.Context, kind models.EntryKind, entryID uuid.UUID) error {
	const op = "storage.DeleteEntry"

	query := fmt.Sprintf("DELETE FROM %s WHERE id=$1;", entriesTable(kind))

	tag, err := p.db.Exec(ctx, query, entryID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *PostgresStorage) ListEntriesByProject(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) ([]models.Entry, error) {
	const op = "storage.ListEntriesByProject"

	query := fmt.Sprintf(`SELECT id, tag, amount, category, user_id, project_id, created_at
	FROM %s WHERE project_id=$1 ORDER BY created_at DESC;`, entriesTable(kind))

	return p.listEntries(ctx, op, kind, query, projectID)
}

// ListGeneralEntries returns the user's entries recorded outside
// any project.
func (p *PostgresStorage) ListGeneralEntries(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error) {
	const op = "storage.ListGeneralEntries"

	query := fmt.Sprintf(`SELECT id, tag, amount, category, user_id, project_id, created_at
	FROM %s WHERE user_id=$1 AND project_id IS NULL ORDER BY created_at DESC;`, entriesTable(kind))

	return p.listEntries(ctx, op, kind, query, userID)
}

func (p *PostgresStorage) ListEntriesByUser(ctx context.Context, kind models.EntryKind, userID uuid.UUID) ([]models.Entry, error) {
	const op = "storage.ListEntriesByUser"

	query := fmt.Sprintf(`SELECT id, tag, amount, category, user_id, project_id, created_at
	FROM %s WHERE user_id=$1 ORDER BY created_at DESC;`, entriesTable(kind))

	return p.listEntries(ctx, op, kind, query, userID)
}

func (p *PostgresStorage) listEntries(ctx context.Context, op string, kind models.EntryKind, query string, arg interface{}) ([]models.Entry, error) {
	rows, err := p.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var entry models.Entry
		var projectID uuid.NullUUID

		err := rows.Scan(&entry.ID, &entry.Tag, &entry.Amount, &entry.Category, &entry.UserID, &projectID, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if projectID.Valid {
			id := projectID.UUID
			entry.ProjectID = &id
		}
		entry.Kind = kind

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s (rows): %w", op, err)
	}

	return entries, nil
}

func (p *PostgresStorage) TotalByUser(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error) {
	const op = "storage.TotalByUser"

	query := fmt.Sprintf("SELECT COALESCE(SUM(amount), 0) FROM %s WHERE user_id=$1;", entriesTable(kind))

	return p.total(ctx, op, query, userID)
}

func (p *PostgresStorage) TotalByProject(ctx context.Context, kind models.EntryKind, projectID uuid.UUID) (float64, error) {
	const op = "storage.TotalByProject"

	query := fmt.Sprintf("SELECT COALESCE(SUM(amount), 0) FROM %s WHERE project_id=$1;", entriesTable(kind))

	return p.total(ctx, op, query, projectID)
}

func (p *PostgresStorage) TotalGeneral(ctx context.Context, kind models.EntryKind, userID uuid.UUID) (float64, error) {
	const op = "storage.TotalGeneral"

	query := fmt.Sprintf("SELECT COALESCE(SUM(amount), 0) FROM %s WHERE user_id=$1 AND project_id IS NULL;", entriesTable(kind))

	return p.total(ctx, op, query, userID)
}

func (p *PostgresStorage) total(ctx context.Context, op, query string, arg interface{}) (float64, error) {
	var total float64
	if err := p.db.QueryRow(ctx, query, arg).Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return total, nil
}

func (p *PostgresStorage) Close() {
	p.db.Close()
}
