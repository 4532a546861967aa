package models

import "time"

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=2,max=64"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=128"`
	Password    string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	Member       MemberResponse `json:"member"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

// ============================================
// Member DTOs
// ============================================

type MemberResponse struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"displayName"`
	Status       string     `json:"status"`
	Points       int        `json:"points"`
	Rank         string     `json:"rank"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ============================================
// Ledger DTOs
// ============================================

type RecordPointsRequest struct {
	Kind   string  `json:"kind" binding:"required"`
	Delta  int     `json:"delta"`
	Reason *string `json:"reason,omitempty"`
}

type RecordBatchRequest struct {
	Entries []RecordPointsRequest `json:"entries" binding:"required,min=1,dive"`
}

type PointEventResponse struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"memberId"`
	ActorID   string    `json:"actorId"`
	Kind      string    `json:"kind"`
	Delta     int       `json:"delta"`
	Reason    *string   `json:"reason,omitempty"`
	Binding   bool      `json:"binding"`
	CreatedAt time.Time `json:"createdAt"`
}

type PointTotalResponse struct {
	MemberID string `json:"memberId"`
	Points   int    `json:"points"`
	Rank     string `json:"rank"`
}

type PointKindResponse struct {
	Kind         string `json:"kind"`
	DefaultDelta int    `json:"defaultDelta"`
	Infraction   bool   `json:"infraction"`
}

// ============================================
// Task DTOs
// ============================================

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category" binding:"required"`
	Priority    string  `json:"priority,omitempty"`
	AssigneeID  string  `json:"assigneeId" binding:"required"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	AssigneeID  string     `json:"assigneeId"`
	CreatedBy   string     `json:"createdBy"`
	CompletedBy *string    `json:"completedBy,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ============================================
// Rank DTOs
// ============================================

type RankResponse struct {
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Threshold   int      `json:"threshold"`
	Infinite    bool     `json:"infinite"`
	Permissions []string `json:"permissions"`
}

// ============================================
// Notification DTOs
// ============================================

type NotificationResponse struct {
	ID        string                  `json:"id"`
	MemberID  string                  `json:"memberId"`
	Type      string                  `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Read      bool                    `json:"read"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

type NotificationCountResponse struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}

// ============================================
// Generic DTOs
// ============================================

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
