package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/CUknot/studymatch_backend/models"
	"github.com/CUknot/studymatch_backend/repository"
)

// TaskPatch is a partial task update. DueDateSet with a nil DueDate clears
// the due date.
type TaskPatch struct {
	Title      *string
	DueDateSet bool
	DueDate    *time.Time
	Completed  *bool
}

type TaskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) List(ctx context.Context, userID uint) ([]models.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

func (s *TaskService) Add(ctx context.Context, userID uint, title string, due *time.Time) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	task := &models.Task{UserID: userID, Title: title, DueDate: due}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID uint, patch TaskPatch) (*models.Task, error) {
	task, err := s.owned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if patch.DueDateSet {
		task.DueDate = patch.DueDate
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	if err := s.tasks.DeleteOwned(ctx, taskID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) Toggle(ctx context.Context, userID, taskID uint) (*models.Task, error) {
	task, err := s.owned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	task.Completed = !task.Completed
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// owned hides tasks of other users behind the same not-found error as
// missing ones.
func (s *TaskService) owned(ctx context.Context, userID, taskID uint) (*models.Task, error) {
	task, err := s.tasks.FindOwned(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}
