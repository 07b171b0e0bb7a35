package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taskhive/taskhive-backend/internal/db"
	"github.com/taskhive/taskhive-backend/internal/progress"
	"github.com/taskhive/taskhive-backend/internal/repository"
)

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron        *cron.Cron
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	cache       *db.RedisDB
}

// NewScheduler creates a new scheduler
func NewScheduler(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, cache *db.RedisDB) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		cache:       cache,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every day at 9 AM - Overdue task report
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("[Cron] Running overdue task scan...")
		s.scanOverdueTasks()
	})

	// Run every day at midnight - Drop stale stats cache entries
	s.cron.AddFunc("0 0 * * *", func() {
		log.Println("[Cron] Refreshing project stats cache...")
		s.refreshStatsCache()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// scanOverdueTasks logs tasks whose due date has passed without completion.
func (s *Scheduler) scanOverdueTasks() {
	ctx := context.Background()

	tasks, err := s.taskRepo.FindOverdue(ctx)
	if err != nil {
		log.Printf("[Cron] Overdue scan failed: %v", err)
		return
	}

	now := time.Now()
	for _, task := range tasks {
		if !progress.TaskOverdue(task, now) {
			continue
		}
		log.Printf("[Cron] Overdue task: %s (%s) in project %s, due %s",
			task.Title, task.ID, task.ProjectID, task.DueDate.Format("2006-01-02"))
	}
	log.Printf("[Cron] Overdue scan complete: %d tasks", len(tasks))
}

// refreshStatsCache drops cached stats so day-boundary fields (overdue flags,
// days remaining) cannot serve stale across midnight.
func (s *Scheduler) refreshStatsCache() {
	if s.cache == nil {
		return
	}
	ctx := context.Background()

	projects, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		log.Printf("[Cron] Stats refresh failed: %v", err)
		return
	}
	for _, project := range projects {
		if err := s.cache.InvalidateCache(ctx, "project_stats:"+project.ID); err != nil {
			log.Printf("[Cron] Failed to drop stats cache for project %s: %v", project.ID, err)
		}
	}
	log.Printf("[Cron] Stats cache refreshed for %d projects", len(projects))
}
