// Package web provides the HTTP server of the task panel: routing, templates,
// sessions and background jobs.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strconv"

	"github.com/mhsanaei/taskpanel/config"
	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/util/common"
	"github.com/mhsanaei/taskpanel/web/cache"
	"github.com/mhsanaei/taskpanel/web/controller"
	"github.com/mhsanaei/taskpanel/web/job"
	"github.com/mhsanaei/taskpanel/web/locale"
	"github.com/mhsanaei/taskpanel/web/middleware"
	"github.com/mhsanaei/taskpanel/web/service"
	"github.com/mhsanaei/taskpanel/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

// Options configures a Server.
type Options struct {
	Listen        string
	Port          int
	SessionSecret []byte
	// SessionMaxAge is in minutes; 0 keeps a browser-session cookie.
	SessionMaxAge      int
	LoginRateLimit     int
	AuditRetentionDays int
	Google             config.GoogleOAuthConfig
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []string
}

// OptionsFromEnv collects Options from the environment.
func OptionsFromEnv() (Options, error) {
	port, err := config.GetPort()
	if err != nil {
		return Options{}, err
	}
	maxAge, err := config.GetSessionMaxAge()
	if err != nil {
		return Options{}, err
	}
	rateLimit, err := config.GetLoginRateLimit()
	if err != nil {
		return Options{}, err
	}
	retention, err := config.GetAuditRetentionDays()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Listen:             config.GetListen(),
		Port:               port,
		SessionSecret:      []byte(config.GetSessionSecret()),
		SessionMaxAge:      maxAge,
		LoginRateLimit:     rateLimit,
		AuditRetentionDays: retention,
		Google:             config.GetGoogleOAuth(),
		TrustedProxies:     config.GetTrustedProxies(),
	}, nil
}

// Server is the task panel web server.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	opts  Options
	db    *gorm.DB
	cache *cache.Cache

	userService  *service.UserService
	taskService  *service.TaskService
	auditService *service.AuditLogService
	oauth        service.OAuthProvider

	index *controller.IndexController
	login *controller.OAuthController
	tasks *controller.TaskController

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server over db and c.
func NewServer(db *gorm.DB, c *cache.Cache, opts Options) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		ctx:          ctx,
		cancel:       cancel,
		opts:         opts,
		db:           db,
		cache:        c,
		userService:  service.NewUserService(db, c),
		taskService:  service.NewTaskService(db),
		auditService: service.NewAuditLogService(db),
		oauth:        service.NewGoogleService(opts.Google),
	}
}

// SetOAuthProvider replaces the Google provider. It must be called before Start or Handler.
func (s *Server) SetOAuthProvider(p service.OAuthProvider) {
	s.oauth = p
}

// getHtmlTemplate parses embedded HTML templates from the bundled `htmlFS`.
func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Handler builds the gin engine with middleware, templates and controllers.
func (s *Server) Handler() (http.Handler, error) {
	return s.initRouter()
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	if err := locale.InitLocalizer(i18nFS); err != nil {
		return nil, err
	}

	engine := gin.Default()
	if err := engine.SetTrustedProxies(s.opts.TrustedProxies); err != nil {
		return nil, err
	}
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cache.NewRedisStore(s.cache.Client(), s.opts.SessionSecret)
	engine.Use(sessions.Sessions(session.CookieName, store))
	engine.Use(locale.LocalizerMiddleware())

	funcMap := template.FuncMap{"i18n": locale.I18n}
	engine.SetFuncMap(funcMap)
	tpl, err := s.getHtmlTemplate(funcMap)
	if err != nil {
		return nil, err
	}
	engine.SetHTMLTemplate(tpl)

	limitCfg := middleware.DefaultRateLimitConfig(s.opts.LoginRateLimit)
	limitCfg.Message = func(c *gin.Context) string {
		return locale.FromContext(c, "messages.rateLimited")
	}

	deps := &controller.Deps{
		Users:         s.userService,
		Tasks:         s.taskService,
		Audit:         s.auditService,
		OAuth:         s.oauth,
		SessionMaxAge: s.opts.SessionMaxAge,
		LoginLimiter:  middleware.RateLimitMiddleware(s.cache, limitCfg),
	}

	g := engine.Group("/")
	s.index = controller.NewIndexController(g, deps)
	s.login = controller.NewOAuthController(g, deps)
	s.tasks = controller.NewTaskController(g, deps)

	// 404 handler
	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules background jobs.
func (s *Server) startTask() {
	if _, err := s.cron.AddJob("@daily", job.NewAuditCleanupJob(s.ctx, s.auditService, s.opts.AuditRetentionDays)); err != nil {
		logger.Warning("Add AuditCleanupJob error:", err)
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(s.opts.Listen, strconv.Itoa(s.opts.Port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("Web server running HTTP on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	s.startTask()
	return nil
}

// Stop gracefully shuts down the web server and its cron jobs.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(context.Background())
	}
	if s.listener != nil {
		err2 = s.listener.Close()
		if isClosedErr(err2) {
			err2 = nil
		}
	}
	return common.Combine(err1, err2)
}

func isClosedErr(err error) bool {
	return err != nil && errors.Is(err, net.ErrClosed)
}
