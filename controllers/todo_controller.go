package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/CUknot/studymatch_backend/middleware"
	"github.com/CUknot/studymatch_backend/services"
	"github.com/gin-gonic/gin"
)

// optionalTime tells an absent dueDate apart from an explicit null.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	t, err := parseDueDate(s)
	if err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// parseDueDate accepts RFC 3339 timestamps and plain dates.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

type AddTaskInput struct {
	Title   string       `json:"title" example:"Read chapter 4"`
	DueDate optionalTime `json:"dueDate" swaggertype:"string" example:"2025-06-01"`
}

type UpdateTaskInput struct {
	Title     *string      `json:"title" example:"Read chapter 5"`
	DueDate   optionalTime `json:"dueDate" swaggertype:"string" example:"2025-06-02"`
	Completed *bool        `json:"completed" example:"true"`
}

type TodoController struct {
	tasks *services.TaskService
}

func NewTodoController(tasks *services.TaskService) *TodoController {
	return &TodoController{tasks: tasks}
}

// GetTasks godoc
// @Summary List the caller's tasks
// @Tags todo
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Task
// @Router /api/todo/display [get]
func (tc *TodoController) GetTasks(c *gin.Context) {
	tasks, err := tc.tasks.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// AddTask godoc
// @Summary Add a task
// @Tags todo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body AddTaskInput true "Task"
// @Success 201 {object} models.Task
// @Failure 400 {object} ErrorResponse "Title is required"
// @Router /api/todo/add [post]
func (tc *TodoController) AddTask(c *gin.Context) {
	var input AddTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	task, err := tc.tasks.Add(c.Request.Context(), middleware.UserID(c), input.Title, input.DueDate.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary Update a task
// @Description Only the fields present are changed; "dueDate": null clears the due date
// @Tags todo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param input body UpdateTaskInput true "Fields to change"
// @Success 200 {object} models.Task
// @Failure 400 {object} ErrorResponse "Invalid task id"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Router /api/todo/update/{id} [put]
func (tc *TodoController) UpdateTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid task id")
		return
	}
	var input UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	task, err := tc.tasks.Update(c.Request.Context(), middleware.UserID(c), id, services.TaskPatch{
		Title:      input.Title,
		DueDateSet: input.DueDate.Set,
		DueDate:    input.DueDate.Value,
		Completed:  input.Completed,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags todo
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid task id"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Router /api/todo/delete/{id} [delete]
func (tc *TodoController) DeleteTask(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid task id")
		return
	}
	if err := tc.tasks.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Msg: "Task deleted successfully"})
}

// ToggleComplete godoc
// @Summary Flip a task's completion flag
// @Tags todo
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} models.Task
// @Failure 400 {object} ErrorResponse "Invalid task id"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Router /api/todo/toggle/{id} [patch]
func (tc *TodoController) ToggleComplete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		badRequest(c, "Invalid task id")
		return
	}
	task, err := tc.tasks.Toggle(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
