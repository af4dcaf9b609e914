package gorouter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-techboard/components/techdash"
	"github.com/goliatone/go-techboard/pkg/erpclient"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{})
	assert.Equal(t, "/technicians", routes.HTML)
	assert.Equal(t, "/technicians/view", routes.View)
	assert.Equal(t, "/technicians/regions/:region", routes.Region)
	assert.Equal(t, "/technicians/leaderboard", routes.Leaderboard)
	assert.Equal(t, "/technicians/refresh", routes.Refresh)
	assert.Equal(t, "/technicians/mount", routes.Mount)
	assert.Equal(t, "/technicians/unmount", routes.Unmount)
	assert.Equal(t, "/technicians/ws", routes.WebSocket)
}

func TestRouteConfigDerivesFromHTML(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{HTML: "/field", WebSocket: "/live"})
	assert.Equal(t, "/field/view", routes.View)
	assert.Equal(t, "/field/leaderboard", routes.Leaderboard)
	assert.Equal(t, "/field/mount", routes.Mount)
	assert.Equal(t, "/live", routes.WebSocket)
}

func TestRegisterLifecycleRoutes(t *testing.T) {
	controller, err := techdash.NewController(techdash.Options{
		Stats:       erpclient.NewMockClient(erpclient.MockData{}),
		Locations:   erpclient.NewMockClient(erpclient.MockData{}),
		Leaderboard: erpclient.NewMockClient(erpclient.MockData{}),
	})
	require.NoError(t, err)
	t.Cleanup(controller.Stop)

	server := router.NewFiberAdapter()
	require.NoError(t, Register(Config[*fiber.App]{Router: server.Router(), Controller: controller}))
	app := server.WrappedRouter()

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/admin/technicians/mount", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, controller.View().Mounted, "loop must survive the mounting request")

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/admin/technicians/mount", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	for i := 0; i < 2; i++ {
		resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/admin/technicians/unmount", nil))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.False(t, controller.View().Mounted)
}
