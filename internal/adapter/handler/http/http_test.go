package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	handlers "github.com/sm8ta/mongo_user_service/internal/adapter/handler/http"
	"github.com/sm8ta/mongo_user_service/internal/adapter/logger"
	"github.com/sm8ta/mongo_user_service/internal/adapter/prometheus"
	"github.com/sm8ta/mongo_user_service/internal/config"
	"github.com/sm8ta/mongo_user_service/internal/core/domain"
	"github.com/sm8ta/mongo_user_service/internal/core/ports"
	"github.com/sm8ta/mongo_user_service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeUserService lets each test stub only the calls it expects.
type fakeUserService struct {
	createFn     func(ctx context.Context, input domain.UserInput) (*domain.User, error)
	getFn        func(ctx context.Context, id string) (*domain.User, error)
	listFn       func(ctx context.Context) ([]domain.User, error)
	listAdminsFn func(ctx context.Context) ([]domain.User, error)
	updateFn     func(ctx context.Context, id string, input domain.UserInput) (*domain.User, error)
	deleteFn     func(ctx context.Context, id string) error
	averageFn    func(ctx context.Context) (float64, error)
}

var _ ports.UserService = (*fakeUserService)(nil)

func (f *fakeUserService) CreateUser(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, input)
	}
	return nil, errors.New("CreateUser not stubbed")
}

func (f *fakeUserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, errors.New("GetUser not stubbed")
}

func (f *fakeUserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, errors.New("ListUsers not stubbed")
}

func (f *fakeUserService) ListAdmins(ctx context.Context) ([]domain.User, error) {
	if f.listAdminsFn != nil {
		return f.listAdminsFn(ctx)
	}
	return nil, errors.New("ListAdmins not stubbed")
}

func (f *fakeUserService) UpdateUser(ctx context.Context, id string, input domain.UserInput) (*domain.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, input)
	}
	return nil, errors.New("UpdateUser not stubbed")
}

func (f *fakeUserService) DeleteUser(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return errors.New("DeleteUser not stubbed")
}

func (f *fakeUserService) AverageAge(ctx context.Context) (float64, error) {
	if f.averageFn != nil {
		return f.averageFn(ctx)
	}
	return 0, errors.New("AverageAge not stubbed")
}

func setupRouter(t *testing.T, svc ports.UserService, ping func(ctx context.Context) error) *handlers.Router {
	t.Helper()

	log := logger.New("local", io.Discard)
	metrics := prometheus.NewPrometheusAdapter("user-service-test", prometheus.NewRegistry())

	router, err := handlers.NewRouter(
		&config.HTTP{Env: "test", AllowedOrigins: "*"},
		log,
		metrics,
		handlers.NewUserHandler(svc, log, metrics),
		handlers.NewHealthHandler(ping),
	)
	require.NoError(t, err)
	return router
}

func doRequest(router http.Handler, method, url, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleUser(role domain.UserRole) *domain.User {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:        primitive.NewObjectID(),
		Name:      "Ann",
		Email:     "ann@example.com",
		Age:       30,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// validatingCreate runs the real validator so binding and validation are exercised together.
func validatingCreate(t *testing.T) func(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	t.Helper()
	v, err := services.NewUserValidator(validator.New())
	require.NoError(t, err)

	return func(ctx context.Context, input domain.UserInput) (*domain.User, error) {
		user, err := v.ValidateCreate(input)
		if err != nil {
			return nil, err
		}
		user.ID = primitive.NewObjectID()
		return user, nil
	}
}

type errorBody struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body=%s", w.Body.String())
	return body
}

func TestRoutingPrecedence(t *testing.T) {
	svc := &fakeUserService{
		listAdminsFn: func(ctx context.Context) ([]domain.User, error) {
			return []domain.User{*sampleUser(domain.Admin)}, nil
		},
		averageFn: func(ctx context.Context) (float64, error) {
			return 20, nil
		},
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			t.Fatalf("GetUser must not be reached, got id %q", id)
			return nil, nil
		},
	}
	router := setupRouter(t, svc, nil)

	w := doRequest(router, http.MethodGet, "/users/admin", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var admins []domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &admins))
	require.Len(t, admins, 1)
	assert.Equal(t, domain.Admin, admins[0].Role)

	w = doRequest(router, http.MethodGet, "/users/average-age", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"averageAge":20}`, w.Body.String())
}

func TestGetUserHandler(t *testing.T) {
	user := sampleUser(domain.RegularUser)

	tests := []struct {
		name       string
		url        string
		getFn      func(ctx context.Context, id string) (*domain.User, error)
		wantStatus int
		wantError  string
	}{
		{
			name: "success",
			url:  "/users/" + user.ID.Hex(),
			getFn: func(ctx context.Context, id string) (*domain.User, error) {
				return user, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "invalid_id",
			url:  "/users/123",
			getFn: func(ctx context.Context, id string) (*domain.User, error) {
				return nil, domain.NewInvalidIDError(errors.New("the provided hex string is not a valid ObjectID"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid user ID",
		},
		{
			name: "not_found",
			url:  "/users/" + primitive.NewObjectID().Hex(),
			getFn: func(ctx context.Context, id string) (*domain.User, error) {
				return nil, domain.NewNotFoundError(errors.New("mongo: no documents in result"))
			},
			wantStatus: http.StatusNotFound,
			wantError:  "User not found",
		},
		{
			name: "storage_fault",
			url:  "/users/" + user.ID.Hex(),
			getFn: func(ctx context.Context, id string) (*domain.User, error) {
				return nil, domain.NewInternalError(errors.New("server selection timeout"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, &fakeUserService{getFn: tt.getFn}, nil)

			w := doRequest(router, http.MethodGet, tt.url, "")
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, w).Error)
				return
			}

			var got map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, user.ID.Hex(), got["id"])
			for _, key := range []string{"name", "email", "age", "role", "createdAt", "updatedAt"} {
				assert.Contains(t, got, key)
			}
		})
	}
}

func TestCreateUserHandler(t *testing.T) {
	validCreate := validatingCreate(t)

	tests := []struct {
		name       string
		body       string
		createFn   func(ctx context.Context, input domain.UserInput) (*domain.User, error)
		wantStatus int
		wantError  string
		wantErrors []string
	}{
		{
			name: "success",
			body: `{"name":"Ann","email":"ann@example.com","age":30}`,
			createFn: func(ctx context.Context, input domain.UserInput) (*domain.User, error) {
				if input.Name == nil || *input.Name != "Ann" || input.Age == nil || *input.Age != 30 {
					return nil, errors.New("input not decoded")
				}
				if input.Role != nil {
					return nil, errors.New("role must stay unset")
				}
				return sampleUser(domain.RegularUser), nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "validation_error",
			body: `{"name":"A"}`,
			createFn: func(ctx context.Context, input domain.UserInput) (*domain.User, error) {
				return nil, domain.NewValidationError([]string{
					"Name must be at least 2 characters long",
					"Email is required",
					"Age is required",
				})
			},
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{
				"Name must be at least 2 characters long",
				"Email is required",
				"Age is required",
			},
		},
		{
			name: "duplicate_email",
			body: `{"name":"Ann","email":"ann@example.com","age":30}`,
			createFn: func(ctx context.Context, input domain.UserInput) (*domain.User, error) {
				return nil, domain.NewDuplicateEmailError(errors.New("E11000"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Email already exists",
		},
		{
			name:       "type_mismatch",
			body:       `{"name":"Ann","email":"ann@example.com","age":"thirty"}`,
			createFn:   validCreate,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"Age must be a number"},
		},
		{
			name:       "type_mismatch_listed_with_other_violations",
			body:       `{"name":"A","age":"ten"}`,
			createFn:   validCreate,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{
				"Name must be at least 2 characters long",
				"Email is required",
				"Age must be a number",
			},
		},
		{
			name:       "every_field_mistyped",
			body:       `{"name":1,"email":true,"age":[30],"role":{}}`,
			createFn:   validCreate,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{
				"Name must be a string",
				"Email must be a string",
				"Age must be a number",
				"Role must be a string",
			},
		},
		{
			name:       "null_counts_as_missing",
			body:       `{"name":"Ann","email":null,"age":30}`,
			createFn:   validCreate,
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"Email is required"},
		},
		{
			name:       "non_object_body",
			body:       `[1,2]`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
		{
			name:       "malformed_json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
		{
			name: "empty_body_reaches_validation",
			body: "",
			createFn: func(ctx context.Context, input domain.UserInput) (*domain.User, error) {
				if input.Name != nil || input.Email != nil || input.Age != nil || input.Role != nil || len(input.Mistyped) > 0 {
					return nil, errors.New("expected empty input")
				}
				return nil, domain.NewValidationError([]string{"Name is required", "Email is required", "Age is required"})
			},
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"Name is required", "Email is required", "Age is required"},
		},
		{
			name: "storage_fault",
			body: `{"name":"Ann","email":"ann@example.com","age":30}`,
			createFn: func(ctx context.Context, input domain.UserInput) (*domain.User, error) {
				return nil, domain.NewInternalError(errors.New("connection reset"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, &fakeUserService{createFn: tt.createFn}, nil)

			w := doRequest(router, http.MethodPost, "/users", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusCreated {
				var got domain.User
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.False(t, got.ID.IsZero())
				assert.Equal(t, domain.RegularUser, got.Role)
				return
			}

			body := decodeError(t, w)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantErrors, body.Errors)
		})
	}
}

func TestUpdateUserHandler(t *testing.T) {
	user := sampleUser(domain.RegularUser)

	tests := []struct {
		name       string
		url        string
		body       string
		updateFn   func(ctx context.Context, id string, input domain.UserInput) (*domain.User, error)
		wantStatus int
		wantError  string
		wantErrors []string
	}{
		{
			name: "success",
			url:  "/users/" + user.ID.Hex(),
			body: `{"age":31}`,
			updateFn: func(ctx context.Context, id string, input domain.UserInput) (*domain.User, error) {
				if input.Name != nil || input.Age == nil {
					return nil, errors.New("only age should be supplied")
				}
				updated := *user
				updated.Age = *input.Age
				updated.UpdatedAt = user.UpdatedAt.Add(time.Second)
				return &updated, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "invalid_id",
			url:  "/users/nope",
			body: `{"age":31}`,
			updateFn: func(ctx context.Context, id string, input domain.UserInput) (*domain.User, error) {
				return nil, domain.NewInvalidIDError(errors.New("bad hex"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid user ID",
		},
		{
			name: "not_found",
			url:  "/users/" + primitive.NewObjectID().Hex(),
			body: `{"age":31}`,
			updateFn: func(ctx context.Context, id string, input domain.UserInput) (*domain.User, error) {
				return nil, domain.NewNotFoundError(errors.New("no documents"))
			},
			wantStatus: http.StatusNotFound,
			wantError:  "User not found",
		},
		{
			name: "validation_error",
			url:  "/users/" + user.ID.Hex(),
			body: `{"age":0,"role":"root"}`,
			updateFn: func(ctx context.Context, id string, input domain.UserInput) (*domain.User, error) {
				return nil, domain.NewValidationError([]string{
					"Age must be at least 1",
					"`root` is not a valid enum value for path `role`.",
				})
			},
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{
				"Age must be at least 1",
				"`root` is not a valid enum value for path `role`.",
			},
		},
		{
			name: "type_mismatch_on_partial_update",
			url:  "/users/" + user.ID.Hex(),
			body: `{"name":"Annie","age":"old"}`,
			updateFn: func(ctx context.Context, id string, input domain.UserInput) (*domain.User, error) {
				if input.Name == nil || input.Age != nil || !input.IsMistyped("age") {
					return nil, errors.New("age should be recorded as mistyped")
				}
				return nil, domain.NewValidationError([]string{"Age must be a number"})
			},
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"Age must be a number"},
		},
		{
			name: "duplicate_email",
			url:  "/users/" + user.ID.Hex(),
			body: `{"email":"taken@example.com"}`,
			updateFn: func(ctx context.Context, id string, input domain.UserInput) (*domain.User, error) {
				return nil, domain.NewDuplicateEmailError(errors.New("E11000"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, &fakeUserService{updateFn: tt.updateFn}, nil)

			w := doRequest(router, http.MethodPut, tt.url, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusOK {
				var got domain.User
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, 31.0, got.Age)
				assert.True(t, got.UpdatedAt.After(user.UpdatedAt))
				return
			}

			body := decodeError(t, w)
			assert.Equal(t, tt.wantError, body.Error)
			assert.Equal(t, tt.wantErrors, body.Errors)
		})
	}
}

func TestDeleteUserHandler(t *testing.T) {
	tests := []struct {
		name       string
		deleteFn   func(ctx context.Context, id string) error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			deleteFn:   func(ctx context.Context, id string) error { return nil },
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"User deleted successfully"}`,
		},
		{
			name: "not_found",
			deleteFn: func(ctx context.Context, id string) error {
				return domain.NewNotFoundError(errors.New("deleted 0"))
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"User not found"}`,
		},
		{
			name: "invalid_id",
			deleteFn: func(ctx context.Context, id string) error {
				return domain.NewInvalidIDError(errors.New("bad hex"))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Invalid user ID"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, &fakeUserService{deleteFn: tt.deleteFn}, nil)

			w := doRequest(router, http.MethodDelete, "/users/"+primitive.NewObjectID().Hex(), "")
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestListHandlers(t *testing.T) {
	t.Run("empty list is an array", func(t *testing.T) {
		svc := &fakeUserService{
			listFn: func(ctx context.Context) ([]domain.User, error) {
				return []domain.User{}, nil
			},
		}
		w := doRequest(setupRouter(t, svc, nil), http.MethodGet, "/users", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("list storage fault", func(t *testing.T) {
		svc := &fakeUserService{
			listFn: func(ctx context.Context) ([]domain.User, error) {
				return nil, domain.NewInternalError(errors.New("no reachable servers"))
			},
		}
		w := doRequest(setupRouter(t, svc, nil), http.MethodGet, "/users", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Server error"}`, w.Body.String())
	})

	t.Run("admins storage fault", func(t *testing.T) {
		svc := &fakeUserService{
			listAdminsFn: func(ctx context.Context) ([]domain.User, error) {
				return nil, errors.New("unclassified")
			},
		}
		w := doRequest(setupRouter(t, svc, nil), http.MethodGet, "/users/admin", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("average of nothing is zero", func(t *testing.T) {
		svc := &fakeUserService{
			averageFn: func(ctx context.Context) (float64, error) { return 0, nil },
		}
		w := doRequest(setupRouter(t, svc, nil), http.MethodGet, "/users/average-age", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"averageAge":0}`, w.Body.String())
	})
}

func TestAmbientRoutes(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		w := doRequest(setupRouter(t, &fakeUserService{}, nil), http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("readiness follows the storage ping", func(t *testing.T) {
		down := func(ctx context.Context) error { return errors.New("no reachable servers") }
		w := doRequest(setupRouter(t, &fakeUserService{}, down), http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		up := func(ctx context.Context) error { return nil }
		w = doRequest(setupRouter(t, &fakeUserService{}, up), http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics use route templates", func(t *testing.T) {
		svc := &fakeUserService{
			getFn: func(ctx context.Context, id string) (*domain.User, error) {
				return sampleUser(domain.RegularUser), nil
			},
		}
		router := setupRouter(t, svc, nil)
		doRequest(router, http.MethodGet, "/users/"+primitive.NewObjectID().Hex(), "")

		w := doRequest(router, http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `http_requests_total{app_name="user-service-test",method="GET",path="/users/:id",status="200"} 1`)
	})

	t.Run("request id is echoed", func(t *testing.T) {
		router := setupRouter(t, &fakeUserService{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))

		w = doRequest(router, http.MethodGet, "/healthz", "")
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	})
}
