package auth

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/model/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator(config.APIConfig{
		Applications: []config.ApplicationConfig{
			{ID: "mobile-app", Title: "모바일 앱", AppKey: "secret-key-1"},
			{ID: "web-app", Title: "웹 앱", AppKey: "secret-key-2"},
		},
	})
}

func TestAuthenticator_Authenticate(t *testing.T) {
	t.Parallel()

	authenticator := newTestAuthenticator()

	tests := []struct {
		name          string
		applicationID string
		appKey        string
		expectedCode  int
	}{
		{name: "인증 성공", applicationID: "mobile-app", appKey: "secret-key-1"},
		{name: "다른 애플리케이션의 키", applicationID: "mobile-app", appKey: "secret-key-2", expectedCode: http.StatusUnauthorized},
		{name: "미등록 애플리케이션", applicationID: "unknown", appKey: "secret-key-1", expectedCode: http.StatusUnauthorized},
		{name: "빈 키", applicationID: "web-app", appKey: "", expectedCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, err := authenticator.Authenticate(tt.applicationID, tt.appKey)
			if tt.expectedCode == 0 {
				require.NoError(t, err)
				assert.Equal(t, tt.applicationID, app.ID)
				return
			}

			require.Error(t, err)
			assert.Nil(t, app)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, he.Code)
		})
	}
}

func TestAuthenticator_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	authenticator := newTestAuthenticator()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := authenticator.Authenticate("web-app", "secret-key-2")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestApplicationContext(t *testing.T) {
	t.Parallel()

	newContext := func() echo.Context {
		return echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	}

	t.Run("저장 후 조회", func(t *testing.T) {
		c := newContext()
		app := &domain.Application{ID: "mobile-app"}
		WithApplication(c, app)

		got, err := ApplicationFrom(c)
		require.NoError(t, err)
		assert.Same(t, app, got)
		assert.Same(t, app, MustApplication(c))
	})

	t.Run("정보 없음", func(t *testing.T) {
		_, err := ApplicationFrom(newContext())
		assert.ErrorIs(t, err, ErrApplicationMissingInContext)
		assert.Panics(t, func() { MustApplication(newContext()) })
	})

	t.Run("타입 불일치", func(t *testing.T) {
		c := newContext()
		c.Set(constants.ContextKeyApplication, "not-an-application")

		_, err := ApplicationFrom(c)
		assert.ErrorIs(t, err, ErrApplicationTypeMismatch)
	})
}
