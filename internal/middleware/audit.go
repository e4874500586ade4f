package middleware

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/claridoc/backend/internal/services"
)

const auditBodyLimit = 2000

// secretFields matches JSON string values whose key carries credential
// material. Applied to the captured body before it reaches audit_logs.
var secretFields = regexp.MustCompile(`(?i)("(?:password|old_password|new_password|secret|token)"\s*:\s*")[^"]*(")`)

// AuditLog records every mutating request (POST, PATCH, PUT, DELETE)
// to the audit trail after the handler runs, including the outcome
// status and a redacted body snippet.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case "POST", "PATCH", "PUT", "DELETE":
		default:
			c.Next()
			return
		}

		var body string
		if c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
			body = truncateBody(secretFields.ReplaceAllString(string(raw), `$1***$2`))
		}

		c.Next()

		status := c.Writer.Status()
		outcome := "failed"
		if status >= 200 && status < 300 {
			outcome = "ok"
		}

		var uid *uint
		if id := GetUserID(c); id > 0 {
			uid = &id
		}

		module, action := classifyRoute(c.FullPath(), c.Request.Method)
		message := fmt.Sprintf("%s %s %s: %s",
			GetUserEmail(c), c.Request.Method, c.Request.URL.Path, outcome)

		services.LogInfo(module, action, message, uid, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
			"request_id": c.GetString(ContextRequestID),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"body":       body,
			"audit":      true,
		})
	}
}

// truncateBody caps the captured body, cutting on a rune boundary so
// the stored snippet stays valid UTF-8.
func truncateBody(body string) string {
	if len(body) <= auditBodyLimit {
		return body
	}
	cut := auditBodyLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "...[truncated]"
}

// classifyRoute derives module and action from the route pattern, so
// "/api/workspaces/:id" with PATCH files under module "workspaces",
// action "update".
func classifyRoute(fullPath, method string) (string, string) {
	path := strings.TrimPrefix(fullPath, "/api/")
	module := strings.SplitN(path, "/", 2)[0]
	if module == "" {
		module = "unknown"
	}

	action := strings.ToLower(method)
	switch method {
	case "POST":
		action = "create"
	case "PATCH", "PUT":
		action = "update"
	case "DELETE":
		action = "delete"
	}
	return module, action
}
