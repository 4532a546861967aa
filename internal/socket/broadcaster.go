// internal/socket/broadcaster.go
package socket

import "log"

// Broadcaster provides high-level methods for broadcasting events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// ============================================
// Notification Broadcasting
// ============================================

// SendNotification sends a notification to a specific member
func (b *Broadcaster) SendNotification(memberID string, notification map[string]interface{}) {
	b.hub.SendToMember(memberID, MessageNotification, notification)
}

// SendNotificationCount updates notification count for a member
func (b *Broadcaster) SendNotificationCount(memberID string, total, unread int) {
	b.hub.SendToMember(memberID, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unread": unread,
	})
}

// ============================================
// Ledger / Rank Broadcasting
// ============================================

// BroadcastPointsRecorded announces a binding ledger event to the team room
func (b *Broadcaster) BroadcastPointsRecorded(memberID, kind string, delta, total int, actorID string) {
	b.hub.SendToRoom("team", MessagePointsRecorded, map[string]interface{}{
		"memberId": memberID,
		"kind":     kind,
		"delta":    delta,
		"total":    total,
		"actorId":  actorID,
	}, "")
}

// BroadcastRankChanged announces a rank transition to the team room
func (b *Broadcaster) BroadcastRankChanged(memberID, oldRank, newRank string, points int) {
	log.Printf("📡 BroadcastRankChanged: member=%s, %s -> %s", memberID, oldRank, newRank)
	b.hub.SendToRoom("team", MessageRankChanged, map[string]interface{}{
		"memberId": memberID,
		"oldRank":  oldRank,
		"newRank":  newRank,
		"points":   points,
	}, "")
}

// ============================================
// Task Broadcasting
// ============================================

// BroadcastTaskCreated broadcasts task creation to the team room
func (b *Broadcaster) BroadcastTaskCreated(task map[string]interface{}, excludeMemberID string) {
	b.hub.SendToRoom("team", MessageTaskCreated, task, excludeMemberID)
}

// SendTaskAssigned notifies the assigned member directly
func (b *Broadcaster) SendTaskAssigned(assigneeID string, task map[string]interface{}, assignedBy string) {
	b.hub.SendToMember(assigneeID, MessageTaskAssigned, map[string]interface{}{
		"task":       task,
		"assignedBy": assignedBy,
	})
}

// BroadcastTaskCompleted broadcasts task completion to the team room
func (b *Broadcaster) BroadcastTaskCompleted(task map[string]interface{}, completedBy string) {
	b.hub.SendToRoom("team", MessageTaskCompleted, map[string]interface{}{
		"task":        task,
		"completedBy": completedBy,
	}, "")
}

// ============================================
// Member Lifecycle Broadcasting
// ============================================

// BroadcastMemberApproved announces an approved registration to the team room
func (b *Broadcaster) BroadcastMemberApproved(member map[string]interface{}) {
	b.hub.SendToRoom("team", MessageMemberApproved, member, "")
}

// BroadcastMemberSuspended announces a suspension to the team room
func (b *Broadcaster) BroadcastMemberSuspended(memberID string, excludeMemberID string) {
	b.hub.SendToRoom("team", MessageMemberSuspended, map[string]interface{}{
		"memberId": memberID,
	}, excludeMemberID)
}

// BroadcastMemberRemoved announces a removal to the team room
func (b *Broadcaster) BroadcastMemberRemoved(memberID string, excludeMemberID string) {
	b.hub.SendToRoom("team", MessageMemberRemoved, map[string]interface{}{
		"memberId": memberID,
	}, excludeMemberID)
}

// ============================================
// Direct Member Messaging
// ============================================

// SendToMembers sends a message to multiple specific members
func (b *Broadcaster) SendToMembers(memberIDs []string, msgType MessageType, payload map[string]interface{}) {
	for _, memberID := range memberIDs {
		b.hub.SendToMember(memberID, msgType, payload)
	}
}
