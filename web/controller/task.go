package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/web/entity"
	"github.com/mhsanaei/taskpanel/web/middleware"
	"github.com/mhsanaei/taskpanel/web/service"

	"github.com/gin-gonic/gin"
)

// TaskController serves the signed-in user's task pages.
type TaskController struct {
	BaseController
}

func NewTaskController(g *gin.RouterGroup, deps *Deps) *TaskController {
	a := &TaskController{BaseController{deps: deps}}
	a.initRouter(g)
	return a
}

func (a *TaskController) initRouter(g *gin.RouterGroup) {
	g = g.Group("")
	g.Use(middleware.NoStoreMiddleware(), a.checkLogin)

	g.GET("/dashboard", a.dashboard)
	g.POST("/task", a.create)
	g.GET("/edit/:id", a.editPage)
	g.POST("/edit/:id", a.update)
	g.GET("/delete/:id", a.delete)
}

// taskID parses the :id path parameter. Anything but a positive integer is reported as absent.
func taskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (a *TaskController) dashboard(c *gin.Context) {
	user := getLoginUser(c)
	tasks, err := a.deps.Tasks.ListForUser(c.Request.Context(), user.Id)
	if err != nil {
		logger.Warning("list tasks failed:", err)
		textMsg(c, "messages.fetchTasksFailed")
		return
	}
	html(c, "dashboard.html", "pages.dashboard.title", gin.H{
		"user":  user,
		"tasks": tasks,
	})
}

func (a *TaskController) create(c *gin.Context) {
	user := getLoginUser(c)
	var form entity.TaskForm
	if err := c.ShouldBind(&form); err != nil {
		textMsg(c, "messages.emptyTask")
		return
	}

	task, err := a.deps.Tasks.Create(c.Request.Context(), user.Id, form.Task)
	if err != nil {
		if errors.Is(err, service.ErrEmptyTask) {
			textMsg(c, "messages.emptyTask")
			return
		}
		logger.Warning("add task failed:", err)
		textMsg(c, "messages.addTaskFailed")
		return
	}

	a.audit(c, service.AuditEntry{
		UserID:     user.Id,
		Email:      user.Email,
		Action:     service.ActionCreate,
		Resource:   service.ResourceTask,
		ResourceID: task.Id,
	})
	c.Redirect(http.StatusFound, "/dashboard")
}

func (a *TaskController) editPage(c *gin.Context) {
	user := getLoginUser(c)
	id, ok := taskID(c)
	if !ok {
		textMsg(c, "messages.taskNotFound")
		return
	}
	task, err := a.deps.Tasks.GetByID(c.Request.Context(), user.Id, id)
	if err != nil {
		if !errors.Is(err, service.ErrTaskNotFound) {
			logger.Warning("load task failed:", err)
		}
		textMsg(c, "messages.taskNotFound")
		return
	}
	html(c, "edit_task.html", "pages.edit.title", gin.H{"task": task})
}

func (a *TaskController) update(c *gin.Context) {
	user := getLoginUser(c)
	id, ok := taskID(c)
	if !ok {
		textMsg(c, "messages.taskNotFound")
		return
	}
	var form entity.TaskForm
	if err := c.ShouldBind(&form); err != nil {
		textMsg(c, "messages.emptyTask")
		return
	}

	err := a.deps.Tasks.Update(c.Request.Context(), user.Id, id, form.Task)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrEmptyTask):
		textMsg(c, "messages.emptyTask")
		return
	case errors.Is(err, service.ErrTaskNotFound):
		textMsg(c, "messages.taskNotFound")
		return
	default:
		logger.Warning("update task failed:", err)
		textMsg(c, "messages.updateTaskFailed")
		return
	}

	a.audit(c, service.AuditEntry{
		UserID:     user.Id,
		Email:      user.Email,
		Action:     service.ActionUpdate,
		Resource:   service.ResourceTask,
		ResourceID: id,
	})
	c.Redirect(http.StatusFound, "/dashboard")
}

func (a *TaskController) delete(c *gin.Context) {
	user := getLoginUser(c)
	id, ok := taskID(c)
	if !ok {
		textMsg(c, "messages.taskNotFound")
		return
	}

	err := a.deps.Tasks.Delete(c.Request.Context(), user.Id, id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			textMsg(c, "messages.taskNotFound")
			return
		}
		logger.Warning("delete task failed:", err)
		textMsg(c, "messages.deleteTaskFailed")
		return
	}

	a.audit(c, service.AuditEntry{
		UserID:     user.Id,
		Email:      user.Email,
		Action:     service.ActionDelete,
		Resource:   service.ResourceTask,
		ResourceID: id,
	})
	c.Redirect(http.StatusFound, "/dashboard")
}
