// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/types"
)

func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	// Check if data already exists
	users, _ := repos.UserRepo.FindAll(ctx)
	if len(users) > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] Creating initial data...")

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	admin := &repository.User{
		Email:    "admin@taskhive.dev",
		Password: string(password),
		Name:     "Ava Admin",
		Role:     types.RoleAdmin,
	}
	repos.UserRepo.Create(ctx, admin)

	manager := &repository.User{
		Email:    "pm@taskhive.dev",
		Password: string(password),
		Name:     "Priya Manager",
		Role:     types.RoleProjectManager,
	}
	repos.UserRepo.Create(ctx, manager)

	member := &repository.User{
		Email:    "dev@taskhive.dev",
		Password: string(password),
		Name:     "Devon Member",
		Role:     types.RoleTeamMember,
	}
	repos.UserRepo.Create(ctx, member)

	start := time.Now().AddDate(0, 0, -14)
	end := time.Now().AddDate(0, 0, 30)
	project := &repository.Project{
		Name:      "Website Relaunch",
		Status:    types.ProjectActive,
		StartDate: start,
		EndDate:   &end,
		CreatorID: manager.ID,
	}
	repos.ProjectRepo.Create(ctx, project)
	repos.ProjectRepo.AddMember(ctx, &repository.ProjectMember{
		ProjectID: project.ID,
		UserID:    manager.ID,
		Role:      types.MemberRoleManager,
	})
	repos.ProjectRepo.AddMember(ctx, &repository.ProjectMember{
		ProjectID: project.ID,
		UserID:    member.ID,
		Role:      types.MemberRoleMember,
	})

	due := time.Now().AddDate(0, 0, 7)
	overdueDue := time.Now().AddDate(0, 0, -2)
	tasks := []*repository.Task{
		{
			ProjectID:  project.ID,
			Title:      "Draft new landing page copy",
			Status:     types.StatusTodo,
			Priority:   types.PriorityHigh,
			AssigneeID: &member.ID,
			CreatorID:  manager.ID,
			DueDate:    &due,
		},
		{
			ProjectID:  project.ID,
			Title:      "Migrate DNS records",
			Status:     types.StatusInProgress,
			Priority:   types.PriorityMedium,
			AssigneeID: &member.ID,
			CreatorID:  manager.ID,
			DueDate:    &overdueDue,
		},
		{
			ProjectID: project.ID,
			Title:     "Pick hosting provider",
			Status:    types.StatusDone,
			Priority:  types.PriorityLow,
			CreatorID: manager.ID,
		},
	}
	for _, task := range tasks {
		repos.TaskRepo.Create(ctx, task)
	}

	content := "DNS migration is blocked on registrar access."
	repos.CommentRepo.Create(ctx, &repository.Comment{
		TaskID:   tasks[1].ID,
		AuthorID: member.ID,
		Content:  &content,
	})

	log.Println("[Seed] Done: 3 users, 1 project, 3 tasks")
}
