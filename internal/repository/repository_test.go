package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"choreshare/internal/database"
	"choreshare/internal/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func mustCreateUser(t *testing.T, repo *UserRepository, email string) *models.User {
	t.Helper()
	user, err := repo.CreateUser(email, "hash", "User "+email)
	if err != nil {
		t.Fatalf("CreateUser(%q) error = %v", email, err)
	}
	return user
}

func mustCreateTask(t *testing.T, repo *TaskRepository, familyID, createdBy int64, difficulty int) *models.Task {
	t.Helper()
	now := time.Now().UTC()
	task := &models.Task{
		FamilyID:      familyID,
		Title:         "chore",
		Difficulty:    difficulty,
		EstimatedDays: 1,
		CreatedBy:     createdBy,
		DueDate:       models.DueDateFor(now, 1),
		CreatedAt:     now,
	}
	if err := repo.CreateTask(task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	return task
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)

	mustCreateUser(t, users, "dup@example.com")
	_, err := users.CreateUser("dup@example.com", "hash", "Again")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateUser() duplicate error = %v, want ErrDuplicate", err)
	}
}

func TestFamilyMembership(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	families := NewFamilyRepository(db)

	alice := mustCreateUser(t, users, "alice@example.com")
	bob := mustCreateUser(t, users, "bob@example.com")

	family, err := families.CreateFamily("Smiths", "ABCD1234", alice.ID)
	if err != nil {
		t.Fatalf("CreateFamily() error = %v", err)
	}

	if ok, _ := families.IsFamilyMember(alice.ID, family.ID); !ok {
		t.Error("creator should be a member")
	}
	if ok, _ := families.IsFamilyMember(bob.ID, family.ID); ok {
		t.Error("bob should not be a member yet")
	}
	if ok, _ := families.IsFamilyMember(alice.ID, family.ID+100); ok {
		t.Error("membership of a missing family should be false")
	}

	joined, err := families.JoinFamily(family.ID, bob.ID)
	if err != nil || !joined {
		t.Fatalf("JoinFamily() = %v, %v", joined, err)
	}
	joined, err = families.JoinFamily(family.ID, bob.ID)
	if err != nil || joined {
		t.Errorf("second JoinFamily() = %v, %v; want false, nil", joined, err)
	}

	ids, err := families.MemberIDs(db, family.ID)
	if err != nil {
		t.Fatalf("MemberIDs() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != alice.ID || ids[1] != bob.ID {
		t.Errorf("MemberIDs() = %v, want [%d %d]", ids, alice.ID, bob.ID)
	}

	list, err := families.GetUserFamilies(bob.ID)
	if err != nil || len(list) != 1 || list[0].ID != family.ID {
		t.Errorf("GetUserFamilies() = %v, %v", list, err)
	}
}

func TestGetFamilyByInviteCodeOldestWins(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	families := NewFamilyRepository(db)
	alice := mustCreateUser(t, users, "alice@example.com")

	first, _ := families.CreateFamily("First", "SAMECODE", alice.ID)
	if _, err := families.CreateFamily("Second", "SAMECODE", alice.ID); err != nil {
		t.Fatalf("duplicate invite codes should be storable: %v", err)
	}

	got, err := families.GetFamilyByInviteCode("SAMECODE")
	if err != nil || got == nil || got.ID != first.ID {
		t.Errorf("GetFamilyByInviteCode() = %+v, %v; want family %d", got, err, first.ID)
	}

	missing, err := families.GetFamilyByInviteCode("NOPE0000")
	if err != nil || missing != nil {
		t.Errorf("GetFamilyByInviteCode(missing) = %+v, %v", missing, err)
	}

	exists, err := families.InviteCodeExists("SAMECODE")
	if err != nil || !exists {
		t.Errorf("InviteCodeExists() = %v, %v", exists, err)
	}
}

func TestTaskLifecycleQueries(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	families := NewFamilyRepository(db)
	tasks := NewTaskRepository(db)

	alice := mustCreateUser(t, users, "alice@example.com")
	eve := mustCreateUser(t, users, "eve@example.com")
	family, _ := families.CreateFamily("Smiths", "ABCD1234", alice.ID)

	task := mustCreateTask(t, tasks, family.ID, alice.ID, 3)

	got, err := tasks.GetTaskForMember(task.ID, alice.ID)
	if err != nil || got == nil {
		t.Fatalf("GetTaskForMember(member) = %v, %v", got, err)
	}
	if got.State() != models.TaskUnassigned || got.CreatedByName != alice.Name {
		t.Errorf("unexpected task %+v", got)
	}

	if hidden, _ := tasks.GetTaskForMember(task.ID, eve.ID); hidden != nil {
		t.Error("non-member should not see the task")
	}

	// Completing an unassigned task changes nothing
	if ok, _ := tasks.CompleteTask(task.ID, alice.ID, time.Now().UTC()); ok {
		t.Error("CompleteTask on an unassigned task should not match")
	}

	if ok, err := tasks.AssignTask(task.ID, alice.ID); err != nil || !ok {
		t.Fatalf("AssignTask() = %v, %v", ok, err)
	}
	if ok, _ := tasks.AssignTask(task.ID+100, alice.ID); ok {
		t.Error("AssignTask on a missing task should report false")
	}

	if ok, _ := tasks.CompleteTask(task.ID, eve.ID, time.Now().UTC()); ok {
		t.Error("only the assignee may complete")
	}
	if ok, err := tasks.CompleteTask(task.ID, alice.ID, time.Now().UTC()); err != nil || !ok {
		t.Fatalf("CompleteTask() = %v, %v", ok, err)
	}
	if ok, _ := tasks.CompleteTask(task.ID, alice.ID, time.Now().UTC()); ok {
		t.Error("a completed task cannot be completed again")
	}

	got, _ = tasks.GetTaskForMember(task.ID, alice.ID)
	if got.State() != models.TaskCompleted || got.CompletedAt == nil || got.AssignedToName != alice.Name {
		t.Errorf("unexpected completed task %+v", got)
	}
}

func TestListFamilyTasksOrder(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	families := NewFamilyRepository(db)
	tasks := NewTaskRepository(db)

	alice := mustCreateUser(t, users, "alice@example.com")
	family, _ := families.CreateFamily("Smiths", "ABCD1234", alice.ID)

	done := mustCreateTask(t, tasks, family.ID, alice.ID, 1)
	older := mustCreateTask(t, tasks, family.ID, alice.ID, 2)
	newer := mustCreateTask(t, tasks, family.ID, alice.ID, 3)

	tasks.AssignTask(done.ID, alice.ID)
	tasks.CompleteTask(done.ID, alice.ID, time.Now().UTC())

	list, err := tasks.ListFamilyTasks(family.ID)
	if err != nil {
		t.Fatalf("ListFamilyTasks() error = %v", err)
	}
	want := []int64{newer.ID, older.ID, done.ID}
	if len(list) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(list), len(want))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("list[%d] = task %d, want %d", i, list[i].ID, id)
		}
	}
}

func TestAssignIfUnassigned(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	families := NewFamilyRepository(db)
	tasks := NewTaskRepository(db)

	alice := mustCreateUser(t, users, "alice@example.com")
	bob := mustCreateUser(t, users, "bob@example.com")
	family, _ := families.CreateFamily("Smiths", "ABCD1234", alice.ID)
	task := mustCreateTask(t, tasks, family.ID, alice.ID, 2)

	err := tasks.WithTx(context.Background(), func(q database.DBTX) error {
		open, err := tasks.LockUnassignedTasks(q, family.ID)
		if err != nil {
			return err
		}
		if len(open) != 1 || open[0].ID != task.ID || open[0].Difficulty != 2 {
			t.Errorf("LockUnassignedTasks() = %+v", open)
		}

		ok, err := tasks.AssignIfUnassigned(q, task.ID, alice.ID)
		if err != nil || !ok {
			t.Errorf("first AssignIfUnassigned() = %v, %v", ok, err)
		}
		ok, err = tasks.AssignIfUnassigned(q, task.ID, bob.ID)
		if err != nil || ok {
			t.Errorf("second AssignIfUnassigned() = %v, %v; want false", ok, err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}

	got, _ := tasks.GetTaskForMember(task.ID, alice.ID)
	if !got.IsAssignedTo(alice.ID) {
		t.Errorf("task assigned to %v, want %d", got.AssignedTo, alice.ID)
	}
}

func TestMemberWorkloads(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	families := NewFamilyRepository(db)
	tasks := NewTaskRepository(db)

	alice := mustCreateUser(t, users, "alice@example.com")
	bob := mustCreateUser(t, users, "bob@example.com")
	family, _ := families.CreateFamily("Smiths", "ABCD1234", alice.ID)
	families.JoinFamily(family.ID, bob.ID)

	for i := 0; i < 3; i++ {
		task := mustCreateTask(t, tasks, family.ID, alice.ID, 1)
		tasks.AssignTask(task.ID, alice.ID)
		if i == 0 {
			tasks.CompleteTask(task.ID, alice.ID, time.Now().UTC())
		}
	}

	members, err := families.GetMemberWorkloads(family.ID)
	if err != nil {
		t.Fatalf("GetMemberWorkloads() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	if members[0].UserID != alice.ID || members[0].ActiveTasks != 2 || members[0].CompletedTasks != 1 {
		t.Errorf("alice workload = %+v", members[0])
	}
	if members[1].UserID != bob.ID || members[1].ActiveTasks != 0 || members[1].CompletedTasks != 0 {
		t.Errorf("bob workload = %+v", members[1])
	}
}

func TestTemplates(t *testing.T) {
	db := openTestDB(t)
	templates := NewTemplateRepository(db)

	list, err := templates.ListTemplates()
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(list) == 0 {
		t.Fatal("expected seeded templates")
	}
	for i := 1; i < len(list); i++ {
		prev, cur := list[i-1], list[i]
		if prev.Category > cur.Category || (prev.Category == cur.Category && prev.Name > cur.Name) {
			t.Errorf("templates out of order at %d: %q/%q before %q/%q", i, prev.Category, prev.Name, cur.Category, cur.Name)
		}
	}

	got, err := templates.GetTemplate(list[0].ID)
	if err != nil || got == nil || got.Name != list[0].Name {
		t.Errorf("GetTemplate() = %+v, %v", got, err)
	}
	if missing, err := templates.GetTemplate(99999); err != nil || missing != nil {
		t.Errorf("GetTemplate(missing) = %+v, %v", missing, err)
	}
}

func TestSessions(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	alice := mustCreateUser(t, users, "alice@example.com")

	if _, err := users.CreateSession("live", alice.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := users.CreateSession("stale", alice.ID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	n, err := users.DeleteExpiredSessions()
	if err != nil || n != 1 {
		t.Errorf("DeleteExpiredSessions() = %d, %v; want 1", n, err)
	}

	if s, _ := users.GetSession("live"); s == nil || s.UserID != alice.ID {
		t.Errorf("live session = %+v", s)
	}
	if s, _ := users.GetSession("stale"); s != nil {
		t.Error("stale session should be gone")
	}
}
