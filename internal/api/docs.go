package api

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "taskmanager-api"
	serviceVersion = "0.1.0"
)

// Pinger はDBの疎通確認に使います。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler は GET /health のハンドラーを返します。db が nil の場合は疎通確認を省略します。
func HealthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, state := http.StatusOK, "ok"
		database := "skipped"
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			database = "ok"
			if err := db.PingContext(ctx); err != nil {
				_ = c.Error(err)
				status, state = http.StatusServiceUnavailable, "degraded"
				database = "unavailable"
			}
		}
		c.JSON(status, gin.H{
			"status":   state,
			"service":  serviceName,
			"version":  serviceVersion,
			"database": database,
		})
	}
}

// DocsHandler は GET /docs/openapi.json のハンドラーを返します。
// 登録済みのルートから最小限の OpenAPI ドキュメントを組み立てます。
func DocsHandler(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, openAPIDocument(engine.Routes()))
	}
}

func openAPIDocument(routes gin.RoutesInfo) gin.H {
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	paths := gin.H{}
	for _, r := range routes {
		path := openAPIPath(r.Path)
		ops, ok := paths[path].(gin.H)
		if !ok {
			ops = gin.H{}
			paths[path] = ops
		}
		ops[strings.ToLower(r.Method)] = gin.H{
			"operationId": operationID(r.Handler),
			"security":    securityFor(r.Path),
		}
	}
	return gin.H{
		"openapi": "3.0.3",
		"info": gin.H{
			"title":   serviceName,
			"version": serviceVersion,
		},
		"components": gin.H{
			"securitySchemes": gin.H{
				"bearerAuth": gin.H{"type": "http", "scheme": "bearer", "bearerFormat": "JWT"},
			},
		},
		"paths": paths,
	}
}

// openAPIPath は /tasks/:id を /tasks/{id} に変換します。
func openAPIPath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, ":") || strings.HasPrefix(p, "*") {
			parts[i] = "{" + p[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}

func operationID(handler string) string {
	name := handler[strings.LastIndex(handler, "/")+1:]
	name = strings.TrimPrefix(name, "api.")
	return strings.TrimSuffix(name, ".func1")
}

func securityFor(path string) []gin.H {
	for _, public := range publicPaths {
		if path == public {
			return []gin.H{}
		}
	}
	return []gin.H{{"bearerAuth": []string{}}}
}
