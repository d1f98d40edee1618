package middlewares

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"doulaops-backend/database"
	"doulaops-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func idempotencyTestApp(t *testing.T) (*fiber.App, *int) {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.IdempotencyKey{}))
	database.DB = db

	calls := 0
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", "user-1")
		return c.Next()
	})
	app.Use(Idempotency())
	app.Post("/thing", func(c *fiber.Ctx) error {
		calls++
		return c.JSON(fiber.Map{"call": calls})
	})
	return app, &calls
}

func postThing(body, key string) *http.Request {
	req := httptest.NewRequest(fiber.MethodPost, "/thing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	app, calls := idempotencyTestApp(t)

	resp1, err := app.Test(postThing(`{"a":1}`, "key-1"))
	require.NoError(t, err)
	body1, _ := io.ReadAll(resp1.Body)
	assert.Equal(t, 200, resp1.StatusCode)
	assert.JSONEq(t, `{"call":1}`, string(body1))

	resp2, err := app.Test(postThing(`{"a":1}`, "key-1"))
	require.NoError(t, err)
	body2, _ := io.ReadAll(resp2.Body)
	assert.Equal(t, 200, resp2.StatusCode)
	assert.JSONEq(t, `{"call":1}`, string(body2), "duplicate send replays the stored body")
	assert.Equal(t, 1, *calls, "handler must run once per key")
}

func TestIdempotencyKeyReuseConflicts(t *testing.T) {
	app, _ := idempotencyTestApp(t)

	resp, err := app.Test(postThing(`{"a":1}`, "key-1"))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(postThing(`{"a":2}`, "key-1"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestIdempotencyKeylessRequestsRunEveryTime(t *testing.T) {
	app, calls := idempotencyTestApp(t)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(postThing(`{}`, ""))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
	assert.Equal(t, 2, *calls)
}
