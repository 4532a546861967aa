// internal/repository/postgres.go
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// PostgreSQL Member Repository
// ============================================

type pgMemberRepository struct {
	pool *pgxpool.Pool
}

func (r *pgMemberRepository) Create(ctx context.Context, member *Member) error {
	query := `
		INSERT INTO members (username, display_name, password, status, last_active_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	member.LastActiveAt = &now
	if member.Status == "" {
		member.Status = "pending"
	}
	return r.pool.QueryRow(ctx, query,
		member.Username, member.DisplayName, member.Password, member.Status, now,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *pgMemberRepository) FindByID(ctx context.Context, id string) (*Member, error) {
	query := `
		SELECT id, username, display_name, password, status, last_active_at, created_at, updated_at
		FROM members WHERE id = $1
	`
	m := &Member{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Username, &m.DisplayName, &m.Password,
		&m.Status, &m.LastActiveAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMemberRepository) FindByUsername(ctx context.Context, username string) (*Member, error) {
	query := `
		SELECT id, username, display_name, password, status, last_active_at, created_at, updated_at
		FROM members WHERE LOWER(username) = LOWER($1)
	`
	m := &Member{}
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&m.ID, &m.Username, &m.DisplayName, &m.Password,
		&m.Status, &m.LastActiveAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgMemberRepository) FindAll(ctx context.Context) ([]*Member, error) {
	query := `
		SELECT id, username, display_name, password, status, last_active_at, created_at, updated_at
		FROM members ORDER BY username
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *pgMemberRepository) FindByStatus(ctx context.Context, status string) ([]*Member, error) {
	query := `
		SELECT id, username, display_name, password, status, last_active_at, created_at, updated_at
		FROM members WHERE status = $1 ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *pgMemberRepository) FindInactiveSince(ctx context.Context, threshold time.Time) ([]*Member, error) {
	query := `
		SELECT id, username, display_name, password, status, last_active_at, created_at, updated_at
		FROM members
		WHERE status = 'active' AND last_active_at IS NOT NULL AND last_active_at < $1
	`
	rows, err := r.pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func scanMembers(rows pgx.Rows) ([]*Member, error) {
	var members []*Member
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(
			&m.ID, &m.Username, &m.DisplayName, &m.Password,
			&m.Status, &m.LastActiveAt, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (r *pgMemberRepository) Update(ctx context.Context, member *Member) error {
	query := `
		UPDATE members SET display_name = $2, password = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, member.ID, member.DisplayName, member.Password, member.Status)
	return err
}

func (r *pgMemberRepository) UpdateLastActive(ctx context.Context, memberID string) error {
	query := `UPDATE members SET last_active_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, memberID)
	return err
}

func (r *pgMemberRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM members WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *pgMemberRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, member_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query, token.Token, token.MemberID, token.ExpiresAt).
		Scan(&token.ID, &token.CreatedAt)
}

func (r *pgMemberRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	query := `
		SELECT id, token, member_id, expires_at, created_at
		FROM refresh_tokens WHERE token = $1
	`
	rt := &RefreshToken{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&rt.ID, &rt.Token, &rt.MemberID, &rt.ExpiresAt, &rt.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *pgMemberRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

func (r *pgMemberRepository) DeleteMemberRefreshTokens(ctx context.Context, memberID string) error {
	query := `DELETE FROM refresh_tokens WHERE member_id = $1`
	_, err := r.pool.Exec(ctx, query, memberID)
	return err
}

// ============================================
// PostgreSQL PointEvent Repository
// ============================================

type pgPointEventRepository struct {
	pool *pgxpool.Pool
}

func (r *pgPointEventRepository) Append(ctx context.Context, event *PointEvent) error {
	query := `
		INSERT INTO point_events (member_id, actor_id, kind, delta, reason, binding)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		event.MemberID, event.ActorID, event.Kind, event.Delta, event.Reason, event.Binding,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *pgPointEventRepository) FindByMemberID(ctx context.Context, memberID string) ([]*PointEvent, error) {
	query := `
		SELECT id, member_id, actor_id, kind, delta, reason, binding, created_at
		FROM point_events WHERE member_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*PointEvent
	for rows.Next() {
		e := &PointEvent{}
		if err := rows.Scan(
			&e.ID, &e.MemberID, &e.ActorID, &e.Kind, &e.Delta,
			&e.Reason, &e.Binding, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *pgPointEventRepository) SumBindingByMemberID(ctx context.Context, memberID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(delta), 0)
		FROM point_events WHERE member_id = $1 AND binding = TRUE
	`
	var sum int
	err := r.pool.QueryRow(ctx, query, memberID).Scan(&sum)
	return sum, err
}

func (r *pgPointEventRepository) DeleteByMemberID(ctx context.Context, memberID string) error {
	query := `DELETE FROM point_events WHERE member_id = $1`
	_, err := r.pool.Exec(ctx, query, memberID)
	return err
}

// ============================================
// PostgreSQL Task Repository
// ============================================

type pgTaskRepository struct {
	pool *pgxpool.Pool
}

func (r *pgTaskRepository) Create(ctx context.Context, task *Task) error {
	if task.Status == "" {
		task.Status = "pending"
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	query := `
		INSERT INTO tasks (title, description, category, priority, status, assignee_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		task.Title, task.Description, task.Category, task.Priority,
		task.Status, task.AssigneeID, task.CreatedBy,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	query := `
		SELECT id, title, description, category, priority, status,
		       assignee_id, created_by, completed_by, completed_at, created_at, updated_at
		FROM tasks WHERE id = $1
	`
	t := &Task{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Priority, &t.Status,
		&t.AssigneeID, &t.CreatedBy, &t.CompletedBy, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *pgTaskRepository) FindAll(ctx context.Context) ([]*Task, error) {
	query := `
		SELECT id, title, description, category, priority, status,
		       assignee_id, created_by, completed_by, completed_at, created_at, updated_at
		FROM tasks ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *pgTaskRepository) FindForAssignee(ctx context.Context, memberID string) ([]*Task, error) {
	query := `
		SELECT id, title, description, category, priority, status,
		       assignee_id, created_by, completed_by, completed_at, created_at, updated_at
		FROM tasks WHERE assignee_id = $1 OR assignee_id = 'all'
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func scanTasks(rows pgx.Rows) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		t := &Task{}
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Category, &t.Priority, &t.Status,
			&t.AssigneeID, &t.CreatedBy, &t.CompletedBy, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *pgTaskRepository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks SET
			title = $2, description = $3, category = $4, priority = $5, status = $6,
			assignee_id = $7, completed_by = $8, completed_at = $9, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID, task.Title, task.Description, task.Category, task.Priority,
		task.Status, task.AssigneeID, task.CompletedBy, task.CompletedAt,
	)
	return err
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// ============================================
// PostgreSQL Notification Repository
// ============================================

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

func (r *pgNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	data, err := json.Marshal(notification.Data)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO notifications (member_id, type, title, message, read, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		notification.MemberID, notification.Type, notification.Title,
		notification.Message, notification.Read, data,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *pgNotificationRepository) FindByID(ctx context.Context, id string) (*Notification, error) {
	query := `
		SELECT id, member_id, type, title, message, read, data, created_at
		FROM notifications WHERE id = $1
	`
	n := &Notification{}
	var data []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.MemberID, &n.Type, &n.Title, &n.Message, &n.Read, &data, &n.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (r *pgNotificationRepository) FindByMemberID(ctx context.Context, memberID string, unreadOnly bool) ([]*Notification, error) {
	query := `
		SELECT id, member_id, type, title, message, read, data, created_at
		FROM notifications WHERE member_id = $1
	`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		var data []byte
		if err := rows.Scan(
			&n.ID, &n.MemberID, &n.Type, &n.Title, &n.Message, &n.Read, &data, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, err
			}
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (r *pgNotificationRepository) CountByMemberID(ctx context.Context, memberID string) (total int, unread int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE read = FALSE)
		FROM notifications WHERE member_id = $1
	`
	err = r.pool.QueryRow(ctx, query, memberID).Scan(&total, &unread)
	return
}

func (r *pgNotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *pgNotificationRepository) MarkAllAsRead(ctx context.Context, memberID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE member_id = $1`
	_, err := r.pool.Exec(ctx, query, memberID)
	return err
}

func (r *pgNotificationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM notifications WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *pgNotificationRepository) DeleteAll(ctx context.Context, memberID string) error {
	query := `DELETE FROM notifications WHERE member_id = $1`
	_, err := r.pool.Exec(ctx, query, memberID)
	return err
}

func (r *pgNotificationRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`
	if readOnly {
		query += ` AND read = TRUE`
	}
	tag, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
