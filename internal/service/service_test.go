package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/config"
	"github.com/taskhive/taskhive-backend/internal/repository"
	"github.com/taskhive/taskhive-backend/internal/types"
)

// fakeStore keeps "files" in a map so the discussion tests never touch disk.
type fakeStore struct {
	files      map[string][]byte
	failDelete bool
	nextID     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (s *fakeStore) Save(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.nextID++
	path := "mem://" + name
	s.files[path] = data
	return path, nil
}

func (s *fakeStore) Delete(path string) error {
	if s.failDelete {
		return errors.New("unlink failed")
	}
	delete(s.files, path)
	return nil
}

func (s *fakeStore) Exists(path string) bool {
	_, ok := s.files[path]
	return ok
}

type testEnv struct {
	services *Services
	repos    *repository.Repositories
	store    *fakeStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := repository.NewRepositories()
	store := newFakeStore()
	services := NewServices(&ServiceDeps{
		Config: &config.Config{JWTSecret: "test-secret", JWTExpiry: 1, RefreshExpiry: 7},
		Repos:  repos,
		Files:  store,
	})
	return &testEnv{services: services, repos: repos, store: store}
}

func (e *testEnv) createUser(t *testing.T, name, role string) (*repository.User, *types.Actor) {
	t.Helper()
	user := &repository.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: "irrelevant",
		Role:     role,
	}
	require.NoError(t, e.repos.UserRepo.Create(context.Background(), user))
	return user, types.NewActor(user.ID, user.Role)
}

func (e *testEnv) createProject(t *testing.T, actor *types.Actor, name string) *repository.Project {
	t.Helper()
	project, err := e.services.Project.Create(context.Background(), actor, &CreateProjectRequest{
		Name:      name,
		StartDate: time.Now().AddDate(0, 0, -7),
	})
	require.NoError(t, err)
	return project
}

func (e *testEnv) createTask(t *testing.T, actor *types.Actor, projectID, title, status string) *repository.Task {
	t.Helper()
	task, err := e.services.Task.Create(context.Background(), actor, &CreateTaskRequest{
		ProjectID: projectID,
		Title:     title,
		Status:    status,
	})
	require.NoError(t, err)
	return task
}

func upload(name, content string) Upload {
	return Upload{
		Name:     name,
		Size:     int64(len(content)),
		MimeType: "text/plain",
		Reader:   bytes.NewReader([]byte(content)),
	}
}
