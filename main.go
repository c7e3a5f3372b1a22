package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhsanaei/taskpanel/config"
	"github.com/mhsanaei/taskpanel/database"
	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/util/random"
	"github.com/mhsanaei/taskpanel/web"
	"github.com/mhsanaei/taskpanel/web/cache"
	"github.com/mhsanaei/taskpanel/web/service"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func initLogger() {
	level, err := logger.LevelFor(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

// loadOptions reads the server options and makes sure sessions can be signed.
func loadOptions() (web.Options, error) {
	opts, err := web.OptionsFromEnv()
	if err != nil {
		return opts, err
	}
	if len(opts.SessionSecret) == 0 {
		if !config.IsDebug() {
			return opts, errors.New("SESSION_SECRET must be set")
		}
		logger.Warning("SESSION_SECRET is empty, using a random secret; sessions will not survive a restart")
		opts.SessionSecret = []byte(random.Seq(32))
	}
	return opts, nil
}

func newServer(db *gorm.DB, c *cache.Cache) (*web.Server, error) {
	opts, err := loadOptions()
	if err != nil {
		return nil, err
	}
	return web.NewServer(db, c, opts), nil
}

func openDB() (*gorm.DB, error) {
	dbCfg, err := config.GetDatabaseConfig()
	if err != nil {
		return nil, err
	}
	return database.InitDB(dbCfg)
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	db, err := openDB()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB(db)

	c, err := cache.New(context.Background(), config.GetRedisAddr(), config.GetRedisPassword())
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()
	if c.IsEmbedded() {
		logger.Warning("REDIS_ADDR is not set, using an in-process store; sessions are lost on exit")
	}

	server, err := newServer(db, c)
	if err != nil {
		log.Println(err)
		return
	}
	if err = server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP, restarting web server")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			if err := config.LoadEnv(); err != nil {
				logger.Warning("reload .env failed:", err)
			}
			server, err = newServer(db, c)
			if err != nil {
				log.Println(err)
				return
			}
			if err = server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	initLogger()
	fmt.Println("Start migrating database...")
	db, err := openDB()
	if err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB(db)
	fmt.Println("Migration done!")
}

func showAuditLogs(userID, limit int) {
	initLogger()
	db, err := openDB()
	if err != nil {
		fmt.Println("open database failed:", err)
		return
	}
	defer database.CloseDB(db)

	logs, err := service.NewAuditLogService(db).GetAuditLogs(context.Background(), userID, limit)
	if err != nil {
		fmt.Println("read audit logs failed:", err)
		return
	}
	for _, l := range logs {
		fmt.Printf("%s  %-8s %-24s %-8s %-6d %s\n",
			l.Timestamp.Format(time.DateTime), l.Action, l.Email, l.Resource, l.ResourceID, l.IP)
	}
}

func showSetting() {
	opts, err := web.OptionsFromEnv()
	if err != nil {
		fmt.Println("read settings failed:", err)
		return
	}
	dbCfg, err := config.GetDatabaseConfig()
	if err != nil {
		fmt.Println("read database settings failed:", err)
		return
	}
	redisAddr := config.GetRedisAddr()
	if redisAddr == "" {
		redisAddr = "embedded"
	}

	fmt.Println("current settings as follows:")
	fmt.Println("listen:", opts.Listen)
	fmt.Println("port:", opts.Port)
	fmt.Println("session secret set:", len(opts.SessionSecret) > 0)
	fmt.Println("session max age (minutes):", opts.SessionMaxAge)
	fmt.Println("database type:", dbCfg.Type)
	if dbCfg.IsSQLite() {
		fmt.Println("database path:", dbCfg.SQLite.Path)
	}
	fmt.Println("redis:", redisAddr)
	fmt.Println("google sign-in enabled:", opts.Google.Enabled())
	if opts.Google.Enabled() {
		fmt.Println("google callback url:", opts.Google.CallbackURL)
	}
	fmt.Println("login rate limit (per minute):", opts.LoginRateLimit)
	fmt.Println("trusted proxies:", opts.TrustedProxies)
	fmt.Println("audit retention (days):", opts.AuditRetentionDays)
	fmt.Println("log level:", config.GetLogLevel())
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Println("load .env failed:", err)
		os.Exit(1)
	}

	var rootCmd = &cobra.Command{
		Use:     config.GetName(),
		Version: config.GetVersion(),
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Inspect settings",
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var auditUser, auditLimit int
	var auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Print recent audit log entries",
		Run: func(cmd *cobra.Command, args []string) {
			showAuditLogs(auditUser, auditLimit)
		},
	}
	auditCmd.Flags().IntVar(&auditUser, "user", 0, "only entries of this user id (0 for all)")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "maximum number of entries")

	settingCmd.AddCommand(showCmd)
	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd, auditCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
