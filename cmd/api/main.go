package main

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajwill85/hri-3.0/internal/api"
	"github.com/ajwill85/hri-3.0/internal/config"
	"github.com/ajwill85/hri-3.0/internal/scheduler"
	"github.com/ajwill85/hri-3.0/internal/storage"
	"github.com/ajwill85/hri-3.0/internal/topic"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}
	defer store.Close()

	sinks := []scheduler.Sink{store}
	exporter, err := storage.NewS3ExporterFromConfig(context.Background(), cfg.S3)
	if err != nil {
		log.Printf("warn: s3 export disabled: %v", err)
	} else if exporter != nil {
		sinks = append(sinks, exporter)
	}

	s := scheduler.NewFromConfig(cfg, &http.Client{}, sinks...)
	if err := s.Schedule(cfg.CronSpec); err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop()

	// 延迟执行首轮采集，避免与首次打开页面的请求争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		if _, err := s.Run(context.Background()); err != nil {
			log.Printf("startup run error: %v", err)
		}
	})

	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	apiServer := api.NewServer(store, s, topic.New(cfg.Taxonomy))
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}

// basicAuthMiddleware 为整个站点增加一个简单的 Basic Auth 访问密码。
// 仅当配置了 APP_BASIC_USER / APP_BASIC_PASS 时启用。
// /health 不做认证，便于健康检查。
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
