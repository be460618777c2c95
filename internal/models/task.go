package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskReview     TaskStatus = "review"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssignedTo  uuid.UUID    `json:"assigned_to"`
	AssignedBy  uuid.UUID    `json:"assigned_by"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at"`
}

// TaskUpdate is one of StatusChange, PriorityChange, Reschedule or Reassign.
type TaskUpdate interface {
	apply(c *Collaboration, t *Task) error
	details() map[string]any
}

type StatusChange struct {
	Status TaskStatus
}

// Moving into completed stamps CompletedAt. Moving out never clears it.
func (u StatusChange) apply(_ *Collaboration, t *Task) error {
	if !u.Status.Valid() {
		return ErrInvalidStatus
	}
	if u.Status == TaskCompleted && t.Status != TaskCompleted {
		ts := now()
		t.CompletedAt = &ts
	}
	t.Status = u.Status
	return nil
}

func (u StatusChange) details() map[string]any {
	return map[string]any{"status": string(u.Status)}
}

type PriorityChange struct {
	Priority TaskPriority
}

func (u PriorityChange) apply(_ *Collaboration, t *Task) error {
	if !u.Priority.Valid() {
		return ErrInvalidPriority
	}
	t.Priority = u.Priority
	return nil
}

func (u PriorityChange) details() map[string]any {
	return map[string]any{"priority": string(u.Priority)}
}

// Reschedule sets or clears the due date.
type Reschedule struct {
	DueDate *time.Time
}

func (u Reschedule) apply(_ *Collaboration, t *Task) error {
	t.DueDate = u.DueDate
	return nil
}

func (u Reschedule) details() map[string]any {
	if u.DueDate == nil {
		return map[string]any{"due_date": nil}
	}
	return map[string]any{"due_date": u.DueDate.Format(time.RFC3339)}
}

type Reassign struct {
	AssignedTo uuid.UUID
}

func (u Reassign) apply(c *Collaboration, t *Task) error {
	if !c.IsParticipant(u.AssignedTo) {
		return ErrInvalidAssignee
	}
	t.AssignedTo = u.AssignedTo
	return nil
}

func (u Reassign) details() map[string]any {
	return map[string]any{"assigned_to": u.AssignedTo.String()}
}

// TaskIDAt maps an array position to the task's stable id.
func (c *Collaboration) TaskIDAt(index int) (uuid.UUID, error) {
	if index < 0 || index >= len(c.Tasks) {
		return uuid.Nil, ErrTaskNotFound
	}
	return c.Tasks[index].ID, nil
}

func (c *Collaboration) Task(taskID uuid.UUID) (*Task, error) {
	for i := range c.Tasks {
		if c.Tasks[i].ID == taskID {
			return &c.Tasks[i], nil
		}
	}
	return nil, ErrTaskNotFound
}

// AddTask creates a todo task. The actor needs canInvite and the assignee
// must be the owner or an accepted member. Empty priority means medium.
func (c *Collaboration) AddTask(actorID uuid.UUID, title, description string, assignedTo uuid.UUID, priority TaskPriority, dueDate *time.Time) (*Task, error) {
	if !c.HasPermission(actorID, PermissionInvite) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyText
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if !c.IsParticipant(assignedTo) {
		return nil, ErrInvalidAssignee
	}

	c.Tasks = append(c.Tasks, Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		AssignedTo:  assignedTo,
		AssignedBy:  actorID,
		Status:      TaskTodo,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now(),
	})
	task := &c.Tasks[len(c.Tasks)-1]
	c.record(ActionTaskCreated, actorID, map[string]any{
		"task_id":     task.ID.String(),
		"title":       truncate(title, auditTextLimit),
		"assigned_to": assignedTo.String(),
	})
	return task, nil
}

// UpdateTask applies one update to a task. Only the assignee or the owner
// may update it.
func (c *Collaboration) UpdateTask(actorID, taskID uuid.UUID, update TaskUpdate) (*Task, error) {
	task, err := c.Task(taskID)
	if err != nil {
		return nil, err
	}
	if !c.IsOwner(actorID) && task.AssignedTo != actorID {
		return nil, ErrPermissionDenied
	}

	oldStatus := task.Status
	updated := *task
	if err := update.apply(c, &updated); err != nil {
		return nil, err
	}
	*task = updated

	c.record(ActionTaskUpdated, actorID, map[string]any{
		"task_id":    taskID.String(),
		"old_status": string(oldStatus),
		"updates":    update.details(),
	})
	return task, nil
}
