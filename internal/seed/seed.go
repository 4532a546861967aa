// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"github.com/craftnest/teamforge-backend/internal/repository"
	"github.com/craftnest/teamforge-backend/internal/types"
	"golang.org/x/crypto/bcrypt"
)

func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	// Check if data already exists
	members, _ := repos.MemberRepo.FindAll(ctx)
	if len(members) > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating initial team data...")

	// ============================================
	// CREATE MEMBERS (team across the rank ladder)
	// ============================================
	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	now := time.Now()

	// 1. NOVA - server owner, far past every threshold
	nova := &repository.Member{
		Username:     "nova",
		DisplayName:  "Nova",
		Password:     string(password),
		Status:       types.MemberActive,
		LastActiveAt: &now,
	}
	repos.MemberRepo.Create(ctx, nova)

	// 2. FINN - long-serving developer
	finn := &repository.Member{
		Username:     "finn",
		DisplayName:  "Finn",
		Password:     string(password),
		Status:       types.MemberActive,
		LastActiveAt: &now,
	}
	repos.MemberRepo.Create(ctx, finn)

	// 3. MIRA - moderator with a spotty record
	mira := &repository.Member{
		Username:     "mira",
		DisplayName:  "Mira",
		Password:     string(password),
		Status:       types.MemberActive,
		LastActiveAt: &now,
	}
	repos.MemberRepo.Create(ctx, mira)

	// 4. TOBI - fresh junior supporter
	tobi := &repository.Member{
		Username:     "tobi",
		DisplayName:  "Tobi",
		Password:     string(password),
		Status:       types.MemberActive,
		LastActiveAt: &now,
	}
	repos.MemberRepo.Create(ctx, tobi)

	// 5. LENA - still waiting for approval
	lena := &repository.Member{
		Username:    "lena",
		DisplayName: "Lena",
		Password:    string(password),
		Status:      types.MemberPending,
	}
	repos.MemberRepo.Create(ctx, lena)

	// ============================================
	// POINT HISTORIES (binding events, award then deduct)
	// ============================================
	award := func(memberID string, delta int, reason string) {
		repos.PointEventRepo.Append(ctx, &repository.PointEvent{
			MemberID: memberID,
			ActorID:  nova.ID,
			Kind:     types.KindManual,
			Delta:    delta,
			Reason:   &reason,
			Binding:  true,
		})
	}
	infraction := func(memberID string, kind string, reason string) {
		repos.PointEventRepo.Append(ctx, &repository.PointEvent{
			MemberID: memberID,
			ActorID:  nova.ID,
			Kind:     kind,
			Delta:    types.InfractionDeltas[kind],
			Reason:   &reason,
			Binding:  true,
		})
	}

	// Nova: 1200 points, holds the top earnable rank
	award(nova.ID, 800, "Founded the server")
	award(nova.ID, 400, "Infrastructure overhaul")

	// Finn: 540 points, Developer
	award(finn.ID, 350, "Plugin suite rewrite")
	award(finn.ID, 190, "Anti-cheat improvements")

	// Mira: 410 raw, 395 after a spam warning, Moderator
	award(mira.ID, 250, "Consistent chat moderation")
	award(mira.ID, 160, "Event supervision")
	infraction(mira.ID, types.KindSpam, "Command spam in global chat")

	// Tobi: 60 points, Jr. Supporter working upward
	award(tobi.ID, 60, "Helpful in support tickets")

	// ============================================
	// SAMPLE TASKS
	// ============================================
	desc := "Replace the outdated spawn area with the new hub design."
	repos.TaskRepo.Create(ctx, &repository.Task{
		Title:       "Rebuild the spawn hub",
		Description: &desc,
		Category:    types.CategoryBuild,
		Priority:    types.PriorityHigh,
		Status:      types.TaskPending,
		AssigneeID:  finn.ID,
		CreatedBy:   nova.ID,
	})

	repos.TaskRepo.Create(ctx, &repository.Task{
		Title:      "Announce the weekend build contest",
		Category:   types.CategoryChatAnnouncement,
		Priority:   types.PriorityMedium,
		Status:     types.TaskPending,
		AssigneeID: types.AssigneeAll,
		CreatedBy:  nova.ID,
	})

	repos.TaskRepo.Create(ctx, &repository.Task{
		Title:      "Review pending ban appeals",
		Category:   types.CategoryTask,
		Priority:   types.PriorityLow,
		Status:     types.TaskPending,
		AssigneeID: mira.ID,
		CreatedBy:  nova.ID,
	})

	log.Println("[Seed] ✅ Seed data created: 5 members, 3 tasks")
	log.Println("[Seed] Login with username nova/finn/mira/tobi, password: password123")
}
