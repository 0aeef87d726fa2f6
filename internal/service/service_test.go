package service

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"choreshare/internal/config"
	"choreshare/internal/database"
	"choreshare/internal/lock"
	"choreshare/internal/models"
	"choreshare/internal/repository"
	"choreshare/internal/security"
)

type fixture struct {
	db        *database.DB
	users     *repository.UserRepository
	families  *repository.FamilyRepository
	guard     *MembershipGuard
	tasks     *TaskService
	familySvc *FamilyService
	auth      *AuthService
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := repository.NewUserRepository(db)
	families := repository.NewFamilyRepository(db)
	guard := NewMembershipGuard(families)

	tasks := NewTaskService(
		repository.NewTaskRepository(db),
		families,
		users,
		repository.NewTemplateRepository(db),
		guard,
		lock.NewLocalLocker(),
		TaskServiceOptions{Defaults: config.DefaultTaskDefaults(), StrictAssignment: strict, Logger: logger},
	)
	familySvc, err := NewFamilyService(families, guard, false, logger)
	require.NoError(t, err)

	return &fixture{
		db:        db,
		users:     users,
		families:  families,
		guard:     guard,
		tasks:     tasks,
		familySvc: familySvc,
		auth:      NewAuthService(users, security.NewTokenIssuer("test-secret"), time.Hour, logger),
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(email, "hash", "User "+email)
	require.NoError(t, err)
	return u
}

func (f *fixture) family(t *testing.T, creator *models.User, members ...*models.User) *models.Family {
	t.Helper()
	fam, err := f.familySvc.CreateFamily("Household", creator.ID)
	require.NoError(t, err)
	for _, m := range members {
		_, err := f.familySvc.RedeemInvite(fam.InviteCode, m.ID)
		require.NoError(t, err)
	}
	return fam
}

func (f *fixture) task(t *testing.T, callerID, familyID int64, difficulty int) *models.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(callerID, familyID, CreateTaskInput{Title: "chore", Difficulty: &difficulty})
	require.NoError(t, err)
	return task
}

func intPtr(v int) *int { return &v }

func idPtr(v int64) *int64 { return &v }
