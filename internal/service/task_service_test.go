package service

import (
	"context"
	"testing"

	"github.com/craftnest/teamforge-backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskRequiresManageStory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	moderator := env.addMember(t, "mod", types.MemberActive, 150)

	_, err := env.services.Task.Create(ctx, moderator.ID, CreateTaskInput{
		Title:      "Build spawn",
		Category:   types.CategoryBuild,
		AssigneeID: types.AssigneeAll,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	pending := env.addMember(t, "newbie", types.MemberPending, 0)

	tests := []struct {
		name  string
		input CreateTaskInput
		want  error
	}{
		{
			"empty title",
			CreateTaskInput{Title: "  ", Category: types.CategoryTask, AssigneeID: types.AssigneeAll},
			ErrInvalidInput,
		},
		{
			"unknown category",
			CreateTaskInput{Title: "x", Category: "painting", AssigneeID: types.AssigneeAll},
			ErrInvalidInput,
		},
		{
			"unknown priority",
			CreateTaskInput{Title: "x", Category: types.CategoryTask, Priority: "urgent", AssigneeID: types.AssigneeAll},
			ErrInvalidInput,
		},
		{
			"unknown assignee",
			CreateTaskInput{Title: "x", Category: types.CategoryTask, AssigneeID: "ghost"},
			ErrInvalidAssignee,
		},
		{
			"pending assignee",
			CreateTaskInput{Title: "x", Category: types.CategoryTask, AssigneeID: pending.ID},
			ErrInvalidAssignee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Task.Create(ctx, admin.ID, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateTaskDefaultsAndAssignment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	assignee := env.addMember(t, "worker", types.MemberActive, 0)

	task, err := env.services.Task.Create(ctx, admin.ID, CreateTaskInput{
		Title:      "Announce maintenance window",
		Category:   types.CategoryChatAnnouncement,
		AssigneeID: assignee.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, types.TaskPending, task.Status)
	assert.Equal(t, types.PriorityMedium, task.Priority)
	assert.Equal(t, admin.ID, task.CreatedBy)
	assert.Nil(t, task.CompletedBy)
	assert.Nil(t, task.CompletedAt)

	// The direct assignee received a notification.
	notifications := env.notificationsFor(t, assignee.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, "TASK_ASSIGNED", notifications[0].Type)
}

func TestCompleteTaskByAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	assignee := env.addMember(t, "worker", types.MemberActive, 0)

	task, err := env.services.Task.Create(ctx, admin.ID, CreateTaskInput{
		Title:      "Repair farm",
		Category:   types.CategoryBuild,
		AssigneeID: assignee.ID,
	})
	require.NoError(t, err)

	completed, err := env.services.Task.Complete(ctx, assignee.ID, task.ID)
	require.NoError(t, err)

	assert.Equal(t, types.TaskCompleted, completed.Status)
	require.NotNil(t, completed.CompletedBy)
	assert.Equal(t, assignee.ID, *completed.CompletedBy)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, env.now, *completed.CompletedAt)
}

func TestCompleteAllTaskByAnyActiveMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	junior := env.addMember(t, "junior", types.MemberActive, 0)

	task, err := env.services.Task.Create(ctx, admin.ID, CreateTaskInput{
		Title:      "Greet new players",
		Category:   types.CategoryTask,
		AssigneeID: types.AssigneeAll,
	})
	require.NoError(t, err)

	completed, err := env.services.Task.Complete(ctx, junior.ID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedBy)
	assert.Equal(t, junior.ID, *completed.CompletedBy)
}

func TestCompleteTaskNotAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	assignee := env.addMember(t, "worker", types.MemberActive, 0)
	bystander := env.addMember(t, "bystander", types.MemberActive, 0)

	task, err := env.services.Task.Create(ctx, admin.ID, CreateTaskInput{
		Title:      "Rebuild nether hub",
		Category:   types.CategoryBuild,
		AssigneeID: assignee.ID,
	})
	require.NoError(t, err)

	_, err = env.services.Task.Complete(ctx, bystander.ID, task.ID)
	assert.ErrorIs(t, err, ErrNotAssignee)

	// manage_story holders may close tasks on the assignee's behalf.
	completed, err := env.services.Task.Complete(ctx, admin.ID, task.ID)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedBy)
	assert.Equal(t, admin.ID, *completed.CompletedBy)
}

func TestCompleteTaskIsOneWay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	assignee := env.addMember(t, "worker", types.MemberActive, 0)

	task, err := env.services.Task.Create(ctx, admin.ID, CreateTaskInput{
		Title:      "Sort storage",
		Category:   types.CategoryTask,
		AssigneeID: assignee.ID,
	})
	require.NoError(t, err)

	_, err = env.services.Task.Complete(ctx, assignee.ID, task.ID)
	require.NoError(t, err)

	// A second completion fails and the original completer stands.
	_, err = env.services.Task.Complete(ctx, admin.ID, task.ID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	got, err := env.services.Task.Get(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedBy)
	assert.Equal(t, assignee.ID, *got.CompletedBy)
}

func TestCompleteUnknownTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member := env.addMember(t, "member", types.MemberActive, 0)

	_, err := env.services.Task.Complete(ctx, member.ID, "no-such-task")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTasksForIncludesAllTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.addMember(t, "admin", types.MemberActive, 500)
	worker := env.addMember(t, "worker", types.MemberActive, 0)
	other := env.addMember(t, "other", types.MemberActive, 0)

	direct, err := env.services.Task.Create(ctx, admin.ID, CreateTaskInput{
		Title:      "Direct assignment",
		Category:   types.CategoryTask,
		AssigneeID: worker.ID,
	})
	require.NoError(t, err)

	shared, err := env.services.Task.Create(ctx, admin.ID, CreateTaskInput{
		Title:      "Open to everyone",
		Category:   types.CategoryTask,
		AssigneeID: types.AssigneeAll,
	})
	require.NoError(t, err)

	_, err = env.services.Task.Create(ctx, admin.ID, CreateTaskInput{
		Title:      "Someone else's job",
		Category:   types.CategoryTask,
		AssigneeID: other.ID,
	})
	require.NoError(t, err)

	tasks, err := env.services.Task.TasksFor(ctx, worker.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	// Newest first.
	assert.Equal(t, shared.ID, tasks[0].ID)
	assert.Equal(t, direct.ID, tasks[1].ID)
}
