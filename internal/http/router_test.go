package httpapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	httpapi "convoy/internal/http"
	"convoy/internal/platform/logger"
	"convoy/internal/workorder"
	workorderhandler "convoy/internal/workorder/handler"
	orderstore "convoy/internal/workorder/store/order"
	"convoy/pkg/testutil"
)

const testSigningKey = "router-test-signing-key"

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	store := orderstore.NewMemory()
	svc, err := workorder.NewService(store)
	require.NoError(t, err)

	log := logger.New()
	return httpapi.New(httpapi.Handlers{
		WorkOrder: workorderhandler.New(svc, log),
	}, testSigningKey, log)
}

func mintToken(t *testing.T, orgID, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"org_id": orgID,
		"role":   role,
		"sub":    "actor-1",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSigningKey))
	require.NoError(t, err)
	return token
}

func TestRouter(t *testing.T) {
	router := newRouter(t)
	orgID := uuid.NewString()

	testutil.Given(t, "the assembled service router", func(t *testing.T) {
		testutil.When(t, "probing health", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

			testutil.Then(t, "it reports ok without auth", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONContains(t, rr, "status", "ok")
			})
		})

		testutil.When(t, "scraping metrics", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

			testutil.Then(t, "the exposition endpoint is public", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
			})
		})

		testutil.When(t, "calling the API without a token", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/v1/work-orders"))

			testutil.Then(t, "the request is rejected", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusUnauthorized)
			})
		})

		testutil.When(t, "creating a work order with a valid token", func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/work-orders", map[string]any{
				"equipment": "truck 114",
				"priority":  "high",
			})
			req.Header.Set("Authorization", "Bearer "+mintToken(t, orgID, "manager"))
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "the order is created in draft", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusCreated)
				testutil.AssertJSONContains(t, rr, "status", "draft")
			})
		})

		testutil.When(t, "presenting a token signed with another key", func(t *testing.T) {
			claims := jwt.MapClaims{"org_id": orgID, "role": "manager", "exp": time.Now().Add(time.Hour).Unix()}
			forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-key"))
			require.NoError(t, err)

			req := testutil.NewRequest(t, http.MethodGet, "/api/v1/work-orders")
			req.Header.Set("Authorization", "Bearer "+forged)
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "the request is rejected", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusUnauthorized)
			})
		})
	})
}
