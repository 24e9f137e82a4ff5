// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package api provides the HTTP surface of the buildstamp server: the
// provenance document at /version and a liveness probe at /healthz.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/traylinx/buildstamp/internal/buildinfo"
	"github.com/traylinx/buildstamp/internal/config"
	"github.com/traylinx/buildstamp/internal/logging"
	"github.com/traylinx/buildstamp/internal/provenance"
)

// Server wires the gin engine, the HTTP listener and the provenance
// resolver together.
type Server struct {
	cfg        *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	resolver   *provenance.Resolver
}

// NewServer assembles the API around an already-constructed resolver.
func NewServer(cfg *config.Config, resolver *provenance.Resolver) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.RequestID())
	engine.Use(logging.AccessLogger("/healthz"))

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		resolver: resolver,
	}
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/version", s.handleVersion)
	s.engine.GET("/healthz", s.handleHealthz)
}

// handleVersion serves the provenance record. It answers 200 unconditionally:
// every degradation is already folded into the record as a sentinel value or
// an omitted key, so there is nothing left to fail.
func (s *Server) handleVersion(c *gin.Context) {
	rec := s.resolver.Record(c.Request.Context())

	body, err := rec.PrettyJSON()
	if err != nil {
		// A record of plain strings cannot fail to marshal; keep the
		// always-200 contract regardless.
		c.JSON(http.StatusOK, rec)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// handleHealthz reports liveness of the buildstamp process itself. The
// version here is the server binary's, not the deployment's.
func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// Start begins listening and blocks until the listener stops. A shutdown
// through Stop returns nil.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("API server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting for in-flight requests
// until the context expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Debug("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
