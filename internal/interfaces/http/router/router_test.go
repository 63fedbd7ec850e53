package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("chained methods", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test").
			GET("/a", func(c *gin.Context) { c.String(http.StatusOK, "a") }).
			POST("/b", func(c *gin.Context) { c.String(http.StatusCreated, "b") }).
			PATCH("/c", func(c *gin.Context) { c.String(http.StatusOK, "c") })
		NewRouter(engine).Register(g).Setup()

		tests := []struct {
			method string
			path   string
			status int
		}{
			{http.MethodGet, "/api/v1/test/a", http.StatusOK},
			{http.MethodPost, "/api/v1/test/b", http.StatusCreated},
			{http.MethodPatch, "/api/v1/test/c", http.StatusOK},
			{http.MethodGet, "/api/v1/test/c", http.StatusNotFound},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("group middleware applies to subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("outer", "/outer").Use(func(c *gin.Context) {
			c.Header("X-Group", "outer")
			c.Next()
		})
		g.Group("inner", "/inner").GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
		NewRouter(engine).Register(g).Setup()

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/outer/inner/x", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "outer", w.Header().Get("X-Group"))
	})

	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("sales", "/sales")
		assert.Equal(t, "sales", g.Name())
		assert.Equal(t, "/sales", g.Prefix())
	})
}
