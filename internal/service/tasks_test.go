package service

import (
	"context"
	"testing"

	"github.com/Benhap1/taskmanager/internal/events"
	"github.com/Benhap1/taskmanager/internal/models"
)

func TestCreateTaskSetsAuthor(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a@x.com", models.RoleAuthor)
	b := f.register(t, "b@x.com", models.RoleAssignee)

	task := f.createTask(t, a, b)
	if task.ID == 0 || task.AuthorID() != a.ID || task.AssigneeID() != b.ID {
		t.Fatalf("unexpected task: %#v", task)
	}
	if got := f.published.types(); len(got) != 1 || got[0] != events.TypeTaskCreated {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a@x.com", models.RoleAuthor)
	ctx := context.Background()

	_, err := f.tasks.Create(ctx, TaskInput{Title: "  ", Status: "DONE", Priority: models.PriorityLow}, a)
	if !HasCode(err, CodeValidation) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}

	missing := int64(999)
	_, err = f.tasks.Create(ctx, TaskInput{Title: "t", Status: models.StatusPending, Priority: models.PriorityLow, AssigneeID: &missing}, a)
	if !HasCode(err, CodeValidation) {
		t.Fatalf("expected VALIDATION_FAILED for unknown assignee, got %v", err)
	}
}

func TestUpdateTaskByNonAuthorLeavesTaskUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@x.com", models.RoleAuthor)
	b := f.register(t, "b@x.com", models.RoleAssignee)
	task := f.createTask(t, a, nil)

	in := TaskInput{Title: "hijacked", Status: models.StatusCompleted, Priority: models.PriorityHigh}
	if _, err := f.tasks.Update(ctx, task.ID, in, b); !HasCode(err, CodeAccessDenied) {
		t.Fatalf("expected ACCESS_DENIED, got %v", err)
	}
	stored, err := f.tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if stored.Title != "Write spec" || stored.Status != models.StatusPending {
		t.Fatalf("task changed by non-author: %#v", stored)
	}

	if _, err := f.tasks.Update(ctx, 999, in, a); !HasCode(err, CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdateTaskPreservesAuthorAndReassigns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@x.com", models.RoleAuthor)
	b := f.register(t, "b@x.com", models.RoleAssignee)
	task := f.createTask(t, a, nil)

	in := TaskInput{Title: "Write the spec", Status: models.StatusInProgress, Priority: models.PriorityHigh, AssigneeID: &b.ID}
	updated, err := f.tasks.Update(ctx, task.ID, in, a)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.ID != task.ID || updated.AuthorID() != a.ID || updated.AssigneeID() != b.ID {
		t.Fatalf("unexpected task: %#v", updated)
	}

	in.AssigneeID = nil
	if _, err := f.tasks.Update(ctx, task.ID, in, a); err != nil {
		t.Fatalf("clearing assignee returned error: %v", err)
	}
	stored, _ := f.tasks.GetByID(ctx, task.ID)
	if stored.Assignee != nil {
		t.Fatalf("assignee not cleared: %#v", stored.Assignee)
	}
}

func TestUpdateStatusAssigneeOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@x.com", models.RoleAuthor)
	b := f.register(t, "b@x.com", models.RoleAssignee)
	unassigned := f.createTask(t, a, nil)
	assigned := f.createTask(t, a, b)

	if _, err := f.tasks.UpdateStatus(ctx, unassigned.ID, a, models.StatusCompleted); !HasCode(err, CodeAccessDenied) {
		t.Fatalf("expected ACCESS_DENIED without assignee, got %v", err)
	}
	if _, err := f.tasks.UpdateStatus(ctx, assigned.ID, a, models.StatusCompleted); !HasCode(err, CodeAccessDenied) {
		t.Fatalf("expected ACCESS_DENIED for author, got %v", err)
	}
	if _, err := f.tasks.UpdateStatus(ctx, 999, b, models.StatusCompleted); !HasCode(err, CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if _, err := f.tasks.UpdateStatus(ctx, assigned.ID, b, "DONE"); !HasCode(err, CodeValidation) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}

	if _, err := f.tasks.UpdateStatus(ctx, assigned.ID, b, "completed"); !HasCode(err, CodeValidation) {
		t.Fatalf("expected VALIDATION_FAILED for lower-case status, got %v", err)
	}

	task, err := f.tasks.UpdateStatus(ctx, assigned.ID, b, models.StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if task.Status != models.StatusCompleted {
		t.Fatalf("unexpected status: %s", task.Status)
	}
	stored, _ := f.tasks.GetByID(ctx, assigned.ID)
	if stored.Status != models.StatusCompleted {
		t.Fatalf("status not persisted: %s", stored.Status)
	}
}

func TestDeleteTaskAuthorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@x.com", models.RoleAuthor)
	b := f.register(t, "b@x.com", models.RoleAssignee)
	task := f.createTask(t, a, b)

	if err := f.tasks.Delete(ctx, task.ID, b); !HasCode(err, CodeAccessDenied) {
		t.Fatalf("expected ACCESS_DENIED, got %v", err)
	}
	if err := f.tasks.Delete(ctx, task.ID, a); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := f.tasks.Delete(ctx, task.ID, a); !HasCode(err, CodeNotFound) {
		t.Fatalf("expected NOT_FOUND on second delete, got %v", err)
	}
}

func TestListTasksByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@x.com", models.RoleAuthor)
	b := f.register(t, "b@x.com", models.RoleAssignee)
	for i := 0; i < 3; i++ {
		f.createTask(t, a, b)
	}
	f.createTask(t, a, nil)

	page, err := f.tasks.ListByAuthor(ctx, "a@x.com", models.PageRequest{Page: 0, Size: 3})
	if err != nil {
		t.Fatalf("ListByAuthor returned error: %v", err)
	}
	if page.TotalElements != 4 || len(page.Content) != 3 || page.TotalPages != 2 {
		t.Fatalf("unexpected page: %#v", page)
	}

	page, err = f.tasks.ListByAssignee(ctx, "b@x.com", models.PageRequest{})
	if err != nil {
		t.Fatalf("ListByAssignee returned error: %v", err)
	}
	if page.TotalElements != 3 || page.Size != defaultPageSize {
		t.Fatalf("unexpected page: %#v", page)
	}

	empty, err := f.tasks.ListByAuthor(ctx, "nobody@x.com", models.PageRequest{Size: 10})
	if err != nil {
		t.Fatalf("ListByAuthor returned error: %v", err)
	}
	if empty.TotalElements != 0 || empty.Content == nil || len(empty.Content) != 0 {
		t.Fatalf("expected empty page, got %#v", empty)
	}
}
