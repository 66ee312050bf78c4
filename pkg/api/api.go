package api

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/k8s-podsec-admission/pkg/cli"
	"github.com/telekom/k8s-podsec-admission/pkg/config"
	"github.com/telekom/k8s-podsec-admission/pkg/metrics"
	"github.com/telekom/k8s-podsec-admission/pkg/version"
)

// APIController is a routable component of the server.
type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

// Server hosts the admission review endpoint and operational endpoints.
type Server struct {
	gin    *gin.Engine
	config config.Config
	log    *zap.SugaredLogger
}

// NewServer builds the gin engine with logging and recovery middleware.
func NewServer(log *zap.Logger, cfg config.Config, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
	)

	if len(cfg.Server.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.Server.TrustedProxies)
	}

	if debug {
		engine.Use(
			cors.New(cors.Config{
				AllowOrigins: []string{"http://localhost:5173", "127.0.0.1:8080"},
				AllowMethods: []string{"GET", "POST", "OPTIONS"},
				AllowHeaders: []string{"Origin", "Authorization", "Content-Type"},
				MaxAge:       12 * time.Hour,
			}),
		)
	}

	s := &Server{
		gin:    engine,
		config: cfg,
		log:    log.Sugar(),
	}

	engine.GET("/healthz", s.healthz)
	engine.GET("/version", s.getVersion)
	engine.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	return s
}

// RegisterAll mounts the given controllers under /api.
func (s *Server) RegisterAll(controllers []APIController) error {
	r := s.gin.Group("api")
	for _, c := range controllers {
		if err := c.Register(r.Group(c.BasePath(), c.Handlers()...)); err != nil {
			return err
		}
	}
	return nil
}

// Listen serves until the listener fails. TLS is used when both cert and key
// are configured; the admission framework requires TLS in production.
func (s *Server) Listen() error {
	addr := s.config.Server.ListenAddress
	if s.config.Server.TLSCertFile != "" && s.config.Server.TLSKeyFile != "" {
		tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
		cli.DisableHTTP2(tlsConfig)
		srv := &http.Server{
			Addr:              addr,
			Handler:           s.gin,
			TLSConfig:         tlsConfig,
			ReadHeaderTimeout: 10 * time.Second,
		}
		return srv.ListenAndServeTLS(s.config.Server.TLSCertFile, s.config.Server.TLSKeyFile)
	}
	s.log.Warnw("Serving without TLS", "address", addr)
	return s.gin.Run(addr)
}

// Engine exposes the underlying gin engine for tests.
func (s *Server) Engine() *gin.Engine {
	return s.gin
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, version.GetBuildInfo())
}
