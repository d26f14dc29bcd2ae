package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader = "X-Request-ID"
	ctxRequestIDKey = "request_id"
)

// RequestID propagates the caller's X-Request-ID or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxRequestIDKey)
}

// Logger writes one structured line per request.
func Logger(log *logrus.Logger) gin.HandlerFunc {
	log = loggerOrDefault(log)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + redactToken(c)
		}
		fields := logrus.Fields{
			"status_code": c.Writer.Status(),
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
			"request_id":  GetRequestID(c),
		}
		if id, ok := c.Get(ctxUserIDKey); ok {
			fields["user_id"] = id
		}
		entry := log.WithFields(fields)

		status := c.Writer.Status()
		switch msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); {
		case msg != "":
			entry.Error(msg)
		case status >= http.StatusInternalServerError:
			entry.Error("server error")
		case status >= http.StatusBadRequest:
			entry.Warn("client error")
		default:
			entry.Info("request handled")
		}
	}
}

// redactToken hides the websocket token query parameter from logs.
func redactToken(c *gin.Context) string {
	q := c.Request.URL.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
	}
	return q.Encode()
}
