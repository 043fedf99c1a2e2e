package routes

import (
	"net/http"

	"taskdesk/taskdesk/middleware"
	"taskdesk/taskdesk/models"
	"taskdesk/taskdesk/services"

	"github.com/gin-gonic/gin"
)

type taskForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Priority    string `form:"priority" json:"priority"`
}

// editForm leaves fields the client did not send as nil.
type editForm struct {
	Title       *string `form:"title" json:"title"`
	Description *string `form:"description" json:"description"`
	Priority    *string `form:"priority" json:"priority"`
}

func RegisterTaskRoutes(router gin.IRouter, taskService services.TaskServiceInterface, userService services.CredentialServiceInterface) {
	router.GET("/", func(c *gin.Context) { ShowHome(c, taskService, userService) })

	group := router.Group("")
	group.Use(middleware.RequireAuth())
	{
		// Mutations are POST only: Lax cookies still ride along on cross-site GET navigations.
		group.POST("/", func(c *gin.Context) { CreateTask(c, taskService) })
		group.GET("/task/:id", func(c *gin.Context) { ShowTask(c, taskService) })
		group.GET("/resolved", func(c *gin.Context) { ShowResolved(c, taskService) })
		group.POST("/delete/:id", func(c *gin.Context) { DeleteTask(c, taskService) })
		group.POST("/done/:id", func(c *gin.Context) { ResolveTask(c, taskService) })
		group.GET("/edit/:id", func(c *gin.Context) { ShowEditForm(c, taskService) })
		group.POST("/edit/:id", func(c *gin.Context) { UpdateTask(c, taskService) })
	}
}

// ShowHome lists the open tasks of the signed-in user, or asks an anonymous visitor to sign in.
func ShowHome(c *gin.Context, taskService services.TaskServiceInterface, userService services.CredentialServiceInterface) {
	actor := middleware.CurrentUserID(c)
	if actor == models.Anonymous {
		c.JSON(http.StatusOK, gin.H{"view": "signin"})
		return
	}
	ctx := c.Request.Context()

	user, err := userService.GetUser(ctx, actor)
	if err != nil {
		renderError(c, err)
		return
	}
	tasks, err := taskService.ListOpen(ctx, actor)
	if err != nil {
		renderError(c, err)
		return
	}
	open, err := taskService.CountOpen(ctx, actor)
	if err != nil {
		renderError(c, err)
		return
	}
	resolved, err := taskService.CountResolved(ctx, actor)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view":     "home",
		"user":     gin.H{"id": user.ID, "name": user.Name},
		"tasks":    tasks,
		"count":    open,
		"resolved": resolved,
	})
}

func CreateTask(c *gin.Context, taskService services.TaskServiceInterface) {
	var form taskForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := gin.H{"title": form.Title, "description": form.Description, "priority": form.Priority}
	fields, err := services.NormalizeTaskForm(form.Title, form.Description, form.Priority)
	if err != nil {
		renderInvalid(c, "home", err, input)
		return
	}

	if _, err := taskService.CreateTask(c.Request.Context(), middleware.CurrentUserID(c), fields); err != nil {
		renderInvalid(c, "home", err, input)
		return
	}
	redirectHome(c)
}

func ShowTask(c *gin.Context, taskService services.TaskServiceInterface) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := taskService.GetTask(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": "task", "task": task})
}

func ShowResolved(c *gin.Context, taskService services.TaskServiceInterface) {
	actor := middleware.CurrentUserID(c)
	ctx := c.Request.Context()

	tasks, err := taskService.ListResolved(ctx, actor)
	if err != nil {
		renderError(c, err)
		return
	}
	open, err := taskService.CountOpen(ctx, actor)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view":     "resolved",
		"tasks":    tasks,
		"count":    open,
		"resolved": len(tasks),
	})
}

func DeleteTask(c *gin.Context, taskService services.TaskServiceInterface) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := taskService.DeleteTask(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		renderError(c, err)
		return
	}
	redirectHome(c)
}

func ResolveTask(c *gin.Context, taskService services.TaskServiceInterface) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := taskService.ResolveTask(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		renderError(c, err)
		return
	}
	redirectHome(c)
}

// ShowEditForm returns the edit view pre-filled with the task's current values.
func ShowEditForm(c *gin.Context, taskService services.TaskServiceInterface) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := taskService.GetTask(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view": "edit",
		"task": task,
		"input": gin.H{
			"title":       task.Title,
			"description": task.Description,
			"priority":    task.Priority,
		},
		"priorities": models.Priorities(),
	})
}

func UpdateTask(c *gin.Context, taskService services.TaskServiceInterface) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	var form editForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := gin.H{"title": form.Title, "description": form.Description, "priority": form.Priority}
	update, err := services.NormalizeTaskUpdate(form.Title, form.Description, form.Priority)
	if err != nil {
		renderInvalid(c, "edit", err, input)
		return
	}

	if _, err := taskService.UpdateTask(c.Request.Context(), middleware.CurrentUserID(c), id, update); err != nil {
		renderError(c, err)
		return
	}
	redirectHome(c)
}
