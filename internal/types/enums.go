package types

// Task Status values
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
)

// Task Category values
const (
	CategoryBuild            = "build"
	CategoryTask             = "task"
	CategoryChatAnnouncement = "chat_announcement"
)

// Task Priority values
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// AssigneeAll is the sentinel assignee meaning any member may complete the task.
const AssigneeAll = "all"

// Member Status values
const (
	MemberActive    = "active"
	MemberPending   = "pending"
	MemberSuspended = "suspended"
)

// Capability values granted per rank
const (
	CapManageUsers     = "manage_users"
	CapManagePoints    = "manage_points"
	CapApproveRequests = "approve_requests"
	CapManageStory     = "manage_story"
	CapSuggestPoints   = "suggest_points"
	CapViewTeam        = "view_team"
	CapViewAll         = "view_all"
)

// Point event kinds. Every kind except KindManual is an infraction with a
// fixed negative default delta.
const (
	KindUnfairPunishment   = "unfair_punishment"
	KindRightsAbuse        = "rights_abuse"
	KindInsults            = "insults"
	KindInactivity         = "inactivity"
	KindRepeatedMisconduct = "repeated_misconduct"
	KindSpam               = "spam"
	KindSevereViolation    = "severe_violation"
	KindManual             = "manual"
)

// InfractionDeltas maps each infraction kind to its default point delta.
var InfractionDeltas = map[string]int{
	KindUnfairPunishment:   -10,
	KindRightsAbuse:        -20,
	KindInsults:            -15,
	KindInactivity:         -25,
	KindRepeatedMisconduct: -30,
	KindSpam:               -5,
	KindSevereViolation:    -20,
}

// Valid value lists for validation
var ValidTaskStatuses = []string{TaskPending, TaskCompleted}

var ValidCategories = []string{
	CategoryBuild, CategoryTask, CategoryChatAnnouncement,
}

var ValidPriorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

var ValidMemberStatuses = []string{MemberActive, MemberPending, MemberSuspended}

var ValidCapabilities = []string{
	CapManageUsers, CapManagePoints, CapApproveRequests,
	CapManageStory, CapSuggestPoints, CapViewTeam, CapViewAll,
}

var ValidPointKinds = []string{
	KindUnfairPunishment, KindRightsAbuse, KindInsults, KindInactivity,
	KindRepeatedMisconduct, KindSpam, KindSevereViolation, KindManual,
}

// Helper functions for validation
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

func IsValidPriority(priority string) bool {
	for _, p := range ValidPriorities {
		if p == priority {
			return true
		}
	}
	return false
}

func IsValidMemberStatus(status string) bool {
	for _, s := range ValidMemberStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidCapability(capability string) bool {
	for _, c := range ValidCapabilities {
		if c == capability {
			return true
		}
	}
	return false
}

func IsValidPointKind(kind string) bool {
	for _, k := range ValidPointKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// IsInfraction reports whether the kind carries a fixed negative delta.
func IsInfraction(kind string) bool {
	_, ok := InfractionDeltas[kind]
	return ok
}
