package logger

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const serviceName = "claridoc"

var log zerolog.Logger

func init() {
	Init("info")
}

// Init configures the global logger. Accepted levels are "debug",
// "info", "warn", "error" and "fatal"; anything else falls back to
// info. Debug level switches to the human-readable console writer.
func Init(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stdout
	if lvl == zerolog.DebugLevel {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	log = zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger()
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }
func Fatal() *zerolog.Event { return log.Fatal() }

// Printf-style shorthands for call sites that have nothing structured
// to attach.

func Infof(format string, v ...interface{})  { log.Info().Msgf(format, v...) }
func Warnf(format string, v ...interface{})  { log.Warn().Msgf(format, v...) }
func Errorf(format string, v ...interface{}) { log.Error().Msgf(format, v...) }
func Fatalf(format string, v ...interface{}) { log.Fatal().Msgf(format, v...) }

// Get exposes the underlying zerolog.Logger.
func Get() zerolog.Logger { return log }

// GinLogger emits one structured line per request. The level follows
// the response status so 5xx lines surface in error-level searches.
// Health probes are logged at debug to keep them out of normal output.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		case path == "/health":
			event = log.Debug()
		default:
			event = log.Info()
		}

		if reqID := c.GetString("request_id"); reqID != "" {
			event = event.Str("request_id", reqID)
		}
		if uid := c.GetUint("user_id"); uid != 0 {
			event = event.Uint("user_id", uid)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("size", c.Writer.Size()).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}

// GinRecovery converts panics into logged 500 responses.
func GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Interface("panic", recovered).
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Msg("panic recovered")
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
