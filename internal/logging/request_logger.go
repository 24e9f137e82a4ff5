// Copyright 2026 The buildstamp Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RequestIDKey is the gin context key carrying the per-request identifier.
// LogFormatter picks the same key out of logrus fields, so handler log lines
// and access log lines for one request share an id column.
const RequestIDKey = "request_id"

// RequestID returns middleware that tags every request with a short unique
// identifier. An X-Request-ID header supplied by the client is honored;
// otherwise a fresh id is generated. The id is echoed back in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			// First hex group of a UUID is enough to correlate log lines.
			id = uuid.New().String()[:8]
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// GetRequestID returns the identifier assigned by RequestID, or an empty
// string when the middleware did not run.
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(RequestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// AccessLogger returns middleware that writes one log line per completed
// request. Paths listed in skip are not logged; probes hitting the health
// endpoint would otherwise drown out everything else.
func AccessLogger(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if _, ok := skipped[path]; ok {
			return
		}

		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		fields := log.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Round(time.Microsecond).String(),
			"client":  c.ClientIP(),
		}
		if id := GetRequestID(c); id != "" {
			fields[RequestIDKey] = id
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		log.WithFields(fields).Infof("%s %s", c.Request.Method, path)
	}
}
