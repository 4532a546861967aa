// internal/repository/memory.go
package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory implementations used for tests and as the no-database
// fallback. Guarded by a single RWMutex each; per-entity write ordering
// is the service layer's responsibility.

// ============================================
// In-Memory Member Repository
// ============================================

type inMemoryMemberRepository struct {
	mu            sync.RWMutex
	members       map[string]*Member
	refreshTokens map[string]*RefreshToken
}

func newInMemoryMemberRepository() *inMemoryMemberRepository {
	return &inMemoryMemberRepository{
		members:       make(map[string]*Member),
		refreshTokens: make(map[string]*RefreshToken),
	}
}

func (r *inMemoryMemberRepository) Create(ctx context.Context, member *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member.ID = uuid.New().String()
	member.CreatedAt = time.Now()
	member.UpdatedAt = time.Now()
	now := time.Now()
	member.LastActiveAt = &now
	if member.Status == "" {
		member.Status = "pending"
	}
	r.members[member.ID] = member
	return nil
}

func (r *inMemoryMemberRepository) FindByID(ctx context.Context, id string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.members[id]; ok {
		return m, nil
	}
	return nil, nil
}

func (r *inMemoryMemberRepository) FindByUsername(ctx context.Context, username string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if strings.EqualFold(m.Username, username) {
			return m, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMemberRepository) FindAll(ctx context.Context) ([]*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].Username < members[j].Username
	})
	return members, nil
}

func (r *inMemoryMemberRepository) FindByStatus(ctx context.Context, status string) ([]*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []*Member
	for _, m := range r.members {
		if m.Status == status {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

func (r *inMemoryMemberRepository) FindInactiveSince(ctx context.Context, threshold time.Time) ([]*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []*Member
	for _, m := range r.members {
		if m.Status == "active" && m.LastActiveAt != nil && m.LastActiveAt.Before(threshold) {
			members = append(members, m)
		}
	}
	return members, nil
}

func (r *inMemoryMemberRepository) Update(ctx context.Context, member *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member.UpdatedAt = time.Now()
	r.members[member.ID] = member
	return nil
}

func (r *inMemoryMemberRepository) UpdateLastActive(ctx context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[memberID]; ok {
		now := time.Now()
		m.LastActiveAt = &now
	}
	return nil
}

func (r *inMemoryMemberRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, id)
	return nil
}

func (r *inMemoryMemberRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = uuid.New().String()
	token.CreatedAt = time.Now()
	r.refreshTokens[token.Token] = token
	return nil
}

func (r *inMemoryMemberRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rt, ok := r.refreshTokens[token]; ok {
		return rt, nil
	}
	return nil, nil
}

func (r *inMemoryMemberRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refreshTokens, token)
	return nil
}

func (r *inMemoryMemberRepository) DeleteMemberRefreshTokens(ctx context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, rt := range r.refreshTokens {
		if rt.MemberID == memberID {
			delete(r.refreshTokens, token)
		}
	}
	return nil
}

// ============================================
// In-Memory PointEvent Repository
// ============================================

type inMemoryPointEventRepository struct {
	mu     sync.RWMutex
	events []*PointEvent
}

func newInMemoryPointEventRepository() *inMemoryPointEventRepository {
	return &inMemoryPointEventRepository{}
}

func (r *inMemoryPointEventRepository) Append(ctx context.Context, event *PointEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = uuid.New().String()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, event)
	return nil
}

func (r *inMemoryPointEventRepository) FindByMemberID(ctx context.Context, memberID string) ([]*PointEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var events []*PointEvent
	// Walk backwards so same-timestamp events keep newest-first order.
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].MemberID == memberID {
			events = append(events, r.events[i])
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

func (r *inMemoryPointEventRepository) SumBindingByMemberID(ctx context.Context, memberID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := 0
	for _, e := range r.events {
		if e.MemberID == memberID && e.Binding {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (r *inMemoryPointEventRepository) DeleteByMemberID(ctx context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	for _, e := range r.events {
		if e.MemberID != memberID {
			kept = append(kept, e)
		}
	}
	r.events = kept
	return nil
}

// ============================================
// In-Memory Task Repository
// ============================================

type inMemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks []*Task
	byID  map[string]*Task
}

func newInMemoryTaskRepository() *inMemoryTaskRepository {
	return &inMemoryTaskRepository{byID: make(map[string]*Task)}
}

func (r *inMemoryTaskRepository) Create(ctx context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = uuid.New().String()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = task.CreatedAt
	if task.Status == "" {
		task.Status = "pending"
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	r.tasks = append(r.tasks, task)
	r.byID[task.ID] = task
	return nil
}

func (r *inMemoryTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.byID[id]; ok {
		return t, nil
	}
	return nil, nil
}

func (r *inMemoryTaskRepository) FindAll(ctx context.Context) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tasks := make([]*Task, 0, len(r.tasks))
	for i := len(r.tasks) - 1; i >= 0; i-- {
		tasks = append(tasks, r.tasks[i])
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *inMemoryTaskRepository) FindForAssignee(ctx context.Context, memberID string) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []*Task
	for i := len(r.tasks) - 1; i >= 0; i-- {
		t := r.tasks[i]
		if t.AssigneeID == memberID || t.AssigneeID == "all" {
			tasks = append(tasks, t)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *inMemoryTaskRepository) Update(ctx context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.UpdatedAt = time.Now()
	r.byID[task.ID] = task
	for i, t := range r.tasks {
		if t.ID == task.ID {
			r.tasks[i] = task
			break
		}
	}
	return nil
}

func (r *inMemoryTaskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			break
		}
	}
	return nil
}

// ============================================
// In-Memory Notification Repository
// ============================================

type inMemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*Notification
}

func newInMemoryNotificationRepository() *inMemoryNotificationRepository {
	return &inMemoryNotificationRepository{}
}

func (r *inMemoryNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = uuid.New().String()
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *inMemoryNotificationRepository) FindByID(ctx context.Context, id string) (*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, nil
}

func (r *inMemoryNotificationRepository) FindByMemberID(ctx context.Context, memberID string, unreadOnly bool) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var notifications []*Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if n.MemberID != memberID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (r *inMemoryNotificationRepository) CountByMemberID(ctx context.Context, memberID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total, unread := 0, 0
	for _, n := range r.notifications {
		if n.MemberID != memberID {
			continue
		}
		total++
		if !n.Read {
			unread++
		}
	}
	return total, unread, nil
}

func (r *inMemoryNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.Read = true
			break
		}
	}
	return nil
}

func (r *inMemoryNotificationRepository) MarkAllAsRead(ctx context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.MemberID == memberID {
			n.Read = true
		}
	}
	return nil
}

func (r *inMemoryNotificationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			break
		}
	}
	return nil
}

func (r *inMemoryNotificationRepository) DeleteAll(ctx context.Context, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.MemberID != memberID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

func (r *inMemoryNotificationRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.CreatedAt.Before(olderThan) && (!readOnly || n.Read) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return removed, nil
}
