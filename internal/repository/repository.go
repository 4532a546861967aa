// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// Models / Entities
// ============================================

type Member struct {
	ID           string
	Username     string
	DisplayName  string
	Password     string
	Status       string
	LastActiveAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Derived on read from the point ledger; never stored.
	Points int
	Rank   string
}

type RefreshToken struct {
	ID        string
	Token     string
	MemberID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PointEvent is an immutable, append-only record of a point change.
// Binding events count toward the member's total; non-binding events are
// suggestions recorded by suggest_points holders.
type PointEvent struct {
	ID        string
	MemberID  string
	ActorID   string
	Kind      string
	Delta     int
	Reason    *string
	Binding   bool
	CreatedAt time.Time
}

type Task struct {
	ID          string
	Title       string
	Description *string
	Category    string
	Priority    string
	Status      string
	AssigneeID  string // member id or the "all" sentinel
	CreatedBy   string
	CompletedBy *string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Notification struct {
	ID        string
	MemberID  string
	Type      string
	Title     string
	Message   string
	Read      bool
	Data      map[string]interface{}
	CreatedAt time.Time
}

// ============================================
// Repository Interfaces
// ============================================

type MemberRepository interface {
	Create(ctx context.Context, member *Member) error
	FindByID(ctx context.Context, id string) (*Member, error)
	FindByUsername(ctx context.Context, username string) (*Member, error)
	FindAll(ctx context.Context) ([]*Member, error)
	FindByStatus(ctx context.Context, status string) ([]*Member, error)
	FindInactiveSince(ctx context.Context, threshold time.Time) ([]*Member, error)
	Update(ctx context.Context, member *Member) error
	UpdateLastActive(ctx context.Context, memberID string) error
	Delete(ctx context.Context, id string) error
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteMemberRefreshTokens(ctx context.Context, memberID string) error
}

// PointEventRepository is append-only: events are never updated or
// removed except when the owning member is deleted.
type PointEventRepository interface {
	Append(ctx context.Context, event *PointEvent) error
	FindByMemberID(ctx context.Context, memberID string) ([]*PointEvent, error)
	SumBindingByMemberID(ctx context.Context, memberID string) (int, error)
	DeleteByMemberID(ctx context.Context, memberID string) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	FindAll(ctx context.Context) ([]*Task, error)
	FindForAssignee(ctx context.Context, memberID string) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	FindByMemberID(ctx context.Context, memberID string, unreadOnly bool) ([]*Notification, error)
	CountByMemberID(ctx context.Context, memberID string) (total int, unread int, err error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context, memberID string) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context, memberID string) error
	DeleteOlderThan(ctx context.Context, olderThan time.Time, readOnly bool) (int, error)
}

// ============================================
// Repositories Container
// ============================================

type Repositories struct {
	MemberRepo       MemberRepository
	PointEventRepo   PointEventRepository
	TaskRepo         TaskRepository
	NotificationRepo NotificationRepository
}

// NewRepositories creates in-memory repositories (for testing/fallback)
func NewRepositories() *Repositories {
	return &Repositories{
		MemberRepo:       newInMemoryMemberRepository(),
		PointEventRepo:   newInMemoryPointEventRepository(),
		TaskRepo:         newInMemoryTaskRepository(),
		NotificationRepo: newInMemoryNotificationRepository(),
	}
}

// NewPgRepositories creates PostgreSQL-backed repositories
func NewPgRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		MemberRepo:       &pgMemberRepository{pool: pool},
		PointEventRepo:   &pgPointEventRepository{pool: pool},
		TaskRepo:         &pgTaskRepository{pool: pool},
		NotificationRepo: &pgNotificationRepository{pool: pool},
	}
}
