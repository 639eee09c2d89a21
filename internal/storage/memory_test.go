package storage

import (
	"context"
	"testing"

	"fintrack/internal/models"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_UniqueEmail(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()

	_, err := st.CreateUser(ctx, "Ann", "ann@x.com", "hash")
	require.NoError(t, err)

	_, err = st.CreateUser(ctx, "Other", "ann@x.com", "hash")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestMemoryStorage_NotFound(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	_, err := st.GetUserByID(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = st.GetUserByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = st.GetProjectByID(ctx, id)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, st.DeleteEntry(ctx, models.EntryIncome, id), ErrNotFound)
}

func TestMemoryStorage_DeleteEntryChecksKind(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "Ann", "ann@x.com", "hash")
	require.NoError(t, err)

	entry, err := st.CreateEntry(ctx, models.Entry{
		Tag:    "salary",
		Amount: 1000,
		UserID: user.ID,
		Kind:   models.EntryIncome,
	})
	require.NoError(t, err)

	// An income id is not deletable through the expenses table.
	require.ErrorIs(t, st.DeleteEntry(ctx, models.EntryExpense, entry.ID), ErrNotFound)
	require.NoError(t, st.DeleteEntry(ctx, models.EntryIncome, entry.ID))
}

func TestMemoryStorage_ProjectDeleteDetachesEntries(t *testing.T) {
	st := NewMemoryStorage()
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "Ann", "ann@x.com", "hash")
	require.NoError(t, err)

	project, err := st.CreateProject(ctx, user.ID, "home", "")
	require.NoError(t, err)

	_, err = st.CreateEntry(ctx, models.Entry{
		Tag:       "paint",
		Amount:    30,
		UserID:    user.ID,
		ProjectID: &project.ID,
		Kind:      models.EntryExpense,
	})
	require.NoError(t, err)

	require.NoError(t, st.DeleteProject(ctx, project.ID))

	general, err := st.ListGeneralEntries(ctx, models.EntryExpense, user.ID)
	require.NoError(t, err)
	require.Len(t, general, 1)
}
