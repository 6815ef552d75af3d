package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"productapi/internal/handlers"
	"productapi/internal/middleware"
	"productapi/internal/repositories"
	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupApp builds a Fiber app over a private in-memory SQLite database. With
// withAuth, product write routes require a JWT.
func setupApp(t *testing.T, withAuth bool) (*fiber.App, *services.AuthService) {
	t.Helper()
	return setupTracedApp(t, withAuth, tracenoop.NewTracerProvider().Tracer("test"))
}

func setupTracedApp(t *testing.T, withAuth bool, tracer trace.Tracer) (*fiber.App, *services.AuthService) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repositories.AutoMigrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	productService := services.NewProductService(
		repositories.NewGORMProductRepository(db),
		nil,
		tracer,
		metricnoop.NewMeterProvider().Meter("test"),
		log,
	)
	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), "test_jwt_secret", time.Hour, log)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, log).RegisterRoutes(apiV1)

	var guards []fiber.Handler
	if withAuth {
		guards = append(guards, middleware.AuthRequired(authService, log))
	}
	handlers.NewProductHandler(productService, log).RegisterRoutes(apiV1, guards...)

	return app, authService
}

type response struct {
	status int
	body   map[string]any
	raw    []byte
}

func call(t *testing.T, app *fiber.App, method, path string, payload any, token string) response {
	t.Helper()

	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(p)
	default:
		data, err := json.Marshal(p)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := response{status: resp.StatusCode, raw: raw}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.body))
	}
	return out
}

func TestProductLifecycle(t *testing.T) {
	app, _ := setupApp(t, false)

	created := call(t, app, http.MethodPost, "/api/v1/products", map[string]any{
		"name":        "Laptop",
		"description": "Gaming laptop",
		"price":       1299.99,
		"stock":       5,
	}, "")
	require.Equal(t, http.StatusCreated, created.status, string(created.raw))
	id, ok := created.body["id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, id)
	assert.Equal(t, "Laptop", created.body["name"])
	assert.Equal(t, 1299.99, created.body["price"])
	assert.Equal(t, float64(5), created.body["stock"])
	assert.Equal(t, created.body["created_at"], created.body["updated_at"])

	fetched := call(t, app, http.MethodGet, "/api/v1/products/"+id, nil, "")
	assert.Equal(t, http.StatusOK, fetched.status)
	assert.Equal(t, id, fetched.body["id"])

	patched := call(t, app, http.MethodPatch, "/api/v1/products/"+id, map[string]any{"price": 999.99}, "")
	require.Equal(t, http.StatusOK, patched.status, string(patched.raw))
	assert.Equal(t, 999.99, patched.body["price"])
	assert.Equal(t, float64(5), patched.body["stock"])
	assert.Equal(t, "Laptop", patched.body["name"])
	assert.Equal(t, created.body["created_at"], patched.body["created_at"])

	put := call(t, app, http.MethodPut, "/api/v1/products/"+id, map[string]any{"stock": 0}, "")
	require.Equal(t, http.StatusOK, put.status, string(put.raw))
	assert.Equal(t, float64(0), put.body["stock"])
	assert.Equal(t, 999.99, put.body["price"])

	deleted := call(t, app, http.MethodDelete, "/api/v1/products/"+id, nil, "")
	assert.Equal(t, http.StatusOK, deleted.status)
	assert.Equal(t, fmt.Sprintf("Product %s deleted successfully", id), deleted.body["message"])

	missing := call(t, app, http.MethodGet, "/api/v1/products/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, missing.status)
	assert.Equal(t, fmt.Sprintf("product with ID %s not found", id), missing.body["message"])

	again := call(t, app, http.MethodDelete, "/api/v1/products/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, again.status)
}

func TestProductPriceIsExact(t *testing.T) {
	app, _ := setupApp(t, false)

	created := call(t, app, http.MethodPost, "/api/v1/products",
		`{"name":"Ledger","description":"","price":"12345678901234.5678","stock":1}`, "")
	require.Equal(t, http.StatusCreated, created.status, string(created.raw))
	assert.Contains(t, string(created.raw), `"price":12345678901234.5678`)

	fetched := call(t, app, http.MethodGet, "/api/v1/products/"+created.body["id"].(string), nil, "")
	require.Equal(t, http.StatusOK, fetched.status)
	assert.Contains(t, string(fetched.raw), `"price":12345678901234.5678`)
}

func TestProductSpansKeepTheirOwnID(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")
	app, _ := setupTracedApp(t, false, tracer)

	ids := []string{
		"aaaaaaaa-aaaa-7aaa-8aaa-aaaaaaaaaaaa",
		"bbbbbbbb-bbbb-7bbb-8bbb-bbbbbbbbbbbb",
		"cccccccc-cccc-7ccc-8ccc-cccccccccccc",
	}
	for _, id := range ids {
		resp := call(t, app, http.MethodGet, "/api/v1/products/"+id, nil, "")
		require.Equal(t, http.StatusNotFound, resp.status)
	}

	spans := recorder.Ended()
	require.Len(t, spans, len(ids))
	for i, span := range spans {
		assert.Contains(t, span.Attributes(), attribute.String("product.id", ids[i]))
	}
}

func TestListProductsNewestFirst(t *testing.T) {
	app, _ := setupApp(t, false)

	empty := call(t, app, http.MethodGet, "/api/v1/products", nil, "")
	assert.Equal(t, http.StatusOK, empty.status)
	assert.JSONEq(t, `[]`, string(empty.raw))

	for _, name := range []string{"A", "B", "C"} {
		resp := call(t, app, http.MethodPost, "/api/v1/products", map[string]any{
			"name": name, "description": "", "price": 1, "stock": 1,
		}, "")
		require.Equal(t, http.StatusCreated, resp.status, string(resp.raw))
	}

	list := call(t, app, http.MethodGet, "/api/v1/products", nil, "")
	require.Equal(t, http.StatusOK, list.status)

	var products []handlers.ProductResponse
	require.NoError(t, json.Unmarshal(list.raw, &products))
	require.Len(t, products, 3)
	assert.Equal(t, "C", products[0].Name)
	assert.Equal(t, "B", products[1].Name)
	assert.Equal(t, "A", products[2].Name)
}

func TestCreateProductValidation(t *testing.T) {
	app, _ := setupApp(t, false)

	tests := []struct {
		name     string
		payload  any
		expected map[string]string
	}{
		{
			name:    "collects every violation",
			payload: map[string]any{"name": "   ", "description": "x", "price": -1, "stock": -5},
			expected: map[string]string{
				"name":  "name required",
				"price": "price must be non-negative",
				"stock": "stock must be non-negative integer",
			},
		},
		{
			name:     "fractional stock",
			payload:  map[string]any{"name": "Pen", "description": "", "price": 1, "stock": 2.5},
			expected: map[string]string{"stock": "stock must be non-negative integer"},
		},
		{
			name:     "stock beyond int32",
			payload:  `{"name":"Pen","description":"","price":1,"stock":9007199254740993}`,
			expected: map[string]string{"stock": "stock must be at most 2147483647"},
		},
		{
			name: "name too long",
			payload: map[string]any{
				"name": string(bytes.Repeat([]byte("x"), 256)), "description": "", "price": 1, "stock": 1,
			},
			expected: map[string]string{"name": "name too long"},
		},
		{
			name:    "missing keys",
			payload: map[string]any{"name": "Pen"},
			expected: map[string]string{
				"description": "description required",
				"price":       "price required",
				"stock":       "stock required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/v1/products", tt.payload, "")
			require.Equal(t, http.StatusBadRequest, resp.status, string(resp.raw))
			assert.Equal(t, "Validation failed", resp.body["message"])

			errs, ok := resp.body["errors"].(map[string]any)
			require.True(t, ok)
			assert.Len(t, errs, len(tt.expected))
			for field, msg := range tt.expected {
				assert.Equal(t, msg, errs[field], field)
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		resp := call(t, app, http.MethodPost, "/api/v1/products", `{"name":`, "")
		assert.Equal(t, http.StatusBadRequest, resp.status)
		assert.Equal(t, "Invalid request body", resp.body["message"])
	})
}

func TestUpdateProductErrors(t *testing.T) {
	app, _ := setupApp(t, false)

	missing := call(t, app, http.MethodPatch, "/api/v1/products/"+uuid.NewString(), map[string]any{"name": "X"}, "")
	assert.Equal(t, http.StatusNotFound, missing.status)

	created := call(t, app, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Desk", "description": "Oak", "price": 300, "stock": 2,
	}, "")
	require.Equal(t, http.StatusCreated, created.status)
	id := created.body["id"].(string)

	invalid := call(t, app, http.MethodPatch, "/api/v1/products/"+id, map[string]any{"price": -3}, "")
	assert.Equal(t, http.StatusBadRequest, invalid.status)

	blank := call(t, app, http.MethodPut, "/api/v1/products/"+id, map[string]any{"name": ""}, "")
	assert.Equal(t, http.StatusBadRequest, blank.status)

	unchanged := call(t, app, http.MethodGet, "/api/v1/products/"+id, nil, "")
	assert.Equal(t, "Desk", unchanged.body["name"])
	assert.Equal(t, float64(300), unchanged.body["price"])
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app, authService := setupApp(t, true)

	user := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	registered := call(t, app, http.MethodPost, "/api/v1/auth/register", user, "")
	require.Equal(t, http.StatusCreated, registered.status, string(registered.raw))
	assert.Equal(t, "User registered successfully", registered.body["message"])
	assert.NotContains(t, string(registered.raw), "password")

	duplicate := call(t, app, http.MethodPost, "/api/v1/auth/register", user, "")
	assert.Equal(t, http.StatusConflict, duplicate.status)

	wrong := call(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "testuser", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, wrong.status)

	login := call(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "testuser", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, login.status)
	token, ok := login.body["token"].(string)
	require.True(t, ok)

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])
	assert.Contains(t, claims, "user_id")
}

func TestProductWritesRequireToken(t *testing.T) {
	app, _ := setupApp(t, true)

	product := map[string]any{"name": "Smartphone", "description": "Latest", "price": 799.99, "stock": 50}

	anonymous := call(t, app, http.MethodPost, "/api/v1/products", product, "")
	assert.Equal(t, http.StatusUnauthorized, anonymous.status)
	assert.Equal(t, "Authorization header is required", anonymous.body["message"])

	forged := call(t, app, http.MethodPost, "/api/v1/products", product, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, forged.status)

	list := call(t, app, http.MethodGet, "/api/v1/products", nil, "")
	assert.Equal(t, http.StatusOK, list.status)

	call(t, app, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"username": "authuser", "email": "auth@example.com", "password": "securepassword"}, "")
	login := call(t, app, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": "authuser", "password": "securepassword"}, "")
	require.Equal(t, http.StatusOK, login.status)
	token := login.body["token"].(string)

	created := call(t, app, http.MethodPost, "/api/v1/products", product, token)
	require.Equal(t, http.StatusCreated, created.status, string(created.raw))

	id := created.body["id"].(string)
	deleted := call(t, app, http.MethodDelete, "/api/v1/products/"+id, nil, token)
	assert.Equal(t, http.StatusOK, deleted.status)
}
