package service

import (
	"errors"
	"time"

	"github.com/craftnest/teamforge-backend/internal/config"
	"github.com/craftnest/teamforge-backend/internal/db"
	"github.com/craftnest/teamforge-backend/internal/notification"
	"github.com/craftnest/teamforge-backend/internal/rank"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")

	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidDelta     = errors.New("invalid point delta")
	ErrMemberNotFound   = errors.New("member not found")
	ErrDuplicateMember  = errors.New("member already exists")
	ErrInvalidAssignee  = errors.New("invalid assignee")
	ErrTaskNotFound     = errors.New("task not found")
	ErrAlreadyCompleted = errors.New("task already completed")
	ErrNotAssignee      = errors.New("member is not the task assignee")
)

// ActorSystem is the actor id recorded on ledger events appended by
// background jobs rather than a member.
const ActorSystem = "system"

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	Member       MemberService
	Ledger       LedgerService
	Task         TaskService
	Permission   PermissionService
	Notification NotificationService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	Catalog     *rank.Catalog
	NotifSvc    *notification.Service
	Broadcaster *socket.Broadcaster
	Cache       *db.RedisDB

	// Clock is overridable for tests; defaults to time.Now.
	Clock func() time.Time
}

func NewServices(deps *ServiceDeps) *Services {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	permissionService := NewPermissionService(
		deps.Catalog,
		deps.Repos.MemberRepo,
		deps.Repos.PointEventRepo,
		deps.Config.MinPoints,
	)

	ledgerService := NewLedgerService(
		deps.Repos.PointEventRepo,
		deps.Repos.MemberRepo,
		permissionService,
		deps.Catalog,
		deps.NotifSvc,
		deps.Broadcaster,
		deps.Cache,
		deps.Config.MinPoints,
		deps.Clock,
	)

	return &Services{
		Auth:       NewAuthService(deps.Config, deps.Repos.MemberRepo),
		Member:     NewMemberService(deps.Repos.MemberRepo, deps.Repos.PointEventRepo, permissionService, deps.Catalog, deps.NotifSvc, deps.Broadcaster, deps.Cache, deps.Config.MinPoints),
		Ledger:     ledgerService,
		Task:       NewTaskService(deps.Repos.TaskRepo, deps.Repos.MemberRepo, permissionService, deps.NotifSvc, deps.Broadcaster, deps.Clock),
		Permission: permissionService,
		Notification: NewNotificationService(
			deps.Repos.NotificationRepo,
			deps.Broadcaster,
		),
		Broadcaster: deps.Broadcaster,
	}
}
