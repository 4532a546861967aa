package cron

import (
	"context"
	"log"
	"time"

	"github.com/craftnest/teamforge-backend/internal/config"
	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/service"
	"github.com/robfig/cron/v3"
)

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	services *service.Services
	repos    *repository.Repositories
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.Config, services *service.Services, repos *repository.Repositories) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		services: services,
		repos:    repos,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every day at 9 AM - Inactivity sweep
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("[Cron] Running inactivity sweep...")
		s.sweepInactiveMembers()
	})

	// Clean up old notifications - Run every Sunday at midnight
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running notification cleanup...")
		s.cleanupOldNotifications()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// sweepInactiveMembers applies the inactivity infraction to active members
// who have not been seen for the configured number of days.
func (s *Scheduler) sweepInactiveMembers() {
	ctx := context.Background()

	threshold := time.Now().AddDate(0, 0, -s.cfg.InactivityDays)
	members, err := s.repos.MemberRepo.FindInactiveSince(ctx, threshold)
	if err != nil {
		log.Printf("[Cron] Error finding inactive members: %v", err)
		return
	}

	for _, member := range members {
		if _, err := s.services.Ledger.RecordInactivity(ctx, member.ID); err != nil {
			log.Printf("[Cron] Error recording inactivity for member %s: %v", member.ID, err)
			continue
		}
		log.Printf("[Cron] Applied inactivity deduction to %s (last active %s)", member.Username, member.LastActiveAt.Format("2006-01-02"))
	}

	if len(members) > 0 {
		log.Printf("[Cron] Inactivity sweep done, %d member(s) deducted", len(members))
	}
}

// cleanupOldNotifications removes read notifications older than 30 days.
func (s *Scheduler) cleanupOldNotifications() {
	ctx := context.Background()

	cutoff := time.Now().AddDate(0, 0, -30)
	removed, err := s.repos.NotificationRepo.DeleteOlderThan(ctx, cutoff, true)
	if err != nil {
		log.Printf("[Cron] Error cleaning up notifications: %v", err)
		return
	}

	log.Printf("[Cron] Notification cleanup removed %d notification(s)", removed)
}

// ManualTrigger allows manual triggering of scheduled checks (for testing)
func (s *Scheduler) ManualTrigger(checkType string) {
	switch checkType {
	case "inactivity":
		s.sweepInactiveMembers()
	case "cleanup":
		s.cleanupOldNotifications()
	case "all":
		s.sweepInactiveMembers()
		s.cleanupOldNotifications()
	}
}
