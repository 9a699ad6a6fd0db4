package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/task-api/internal/api/metrics"
	"github.com/taskflow/task-api/internal/core/ports"
)

// TaskHandler handles HTTP requests for the caller's tasks.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "pending | in-progress | completed"
// @Param        priority  query     string  false  "low | medium | high"
// @Param        category  query     string  false  "Case-insensitive substring"
// @Param        search    query     string  false  "Substring of title or description"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Page size (default 10, max 100)"
// @Param        sort      query     string  false  "Sort field, prefix with - for descending (default -createdAt)"
// @Success      200       {object}  taskListResponse
// @Failure      401       {object}  ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListTasks(c.Request().Context(), identity.UserID(), ports.ListTasksInput{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Page:     c.QueryParam("page"),
		Limit:    c.QueryParam("limit"),
		Sort:     c.QueryParam("sort"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, taskListResponse{
		Success: true,
		Count:   result.Count,
		Total:   result.Total,
		Page:    result.Page,
		Pages:   result.Pages,
		Data:    result.Items,
	})
}

// Stats handles GET /tasks/stats.
//
// @Summary      Task counters
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  taskStatsResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /tasks/stats [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	stats, err := h.service.TaskStats(c.Request().Context(), identity.UserID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskStatsResponse{Success: true, Data: stats})
}

// Get handles GET /tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	task, err := h.service.GetTask(c.Request().Context(), identity.UserID(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskResponse{Success: true, Data: task})
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	task, err := h.service.CreateTask(c.Request().Context(), identity.UserID(), req.toInput())
	if err != nil {
		return err
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()
	return c.JSON(http.StatusCreated, taskResponse{Success: true, Data: task})
}

// Update handles PUT /tasks/:id. Without a status in the body the task's
// status is toggled.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}
	input := req.toInput()

	task, err := h.service.UpdateTask(c.Request().Context(), identity.UserID(), c.Param("id"), input)
	if err != nil {
		return err
	}

	mode := "set"
	if input.Status == nil {
		mode = "toggle"
	}
	metrics.TaskStatusChangesTotal.WithLabelValues(mode, string(task.Status)).Inc()
	return c.JSON(http.StatusOK, taskResponse{Success: true, Data: task})
}

// Delete handles DELETE /tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteTask(c.Request().Context(), identity.UserID(), c.Param("id")); err != nil {
		return err
	}

	metrics.TasksDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Task deleted successfully"})
}
