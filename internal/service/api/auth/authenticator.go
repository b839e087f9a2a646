// Package auth REST API 호출 애플리케이션의 인증을 담당합니다.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"sync"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/model/domain"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/darkkaiser/notification-reconciler/pkg/strutil"
)

type credential struct {
	application *domain.Application
	appKeyHash  [sha256.Size]byte
}

// Authenticator 설정에 등록된 애플리케이션의 ID와 App Key로 요청을 인증합니다.
//
// App Key는 평문으로 보관하지 않고 SHA-256 해시만 유지하며, 비교는 상수 시간으로 수행합니다.
// 여러 고루틴에서 동시에 Authenticate를 호출해도 안전합니다.
type Authenticator struct {
	mu          sync.RWMutex
	credentials map[string]credential
}

// NewAuthenticator 설정에서 애플리케이션을 로드하여 Authenticator를 생성합니다.
func NewAuthenticator(apiConfig config.APIConfig) *Authenticator {
	credentials := make(map[string]credential, len(apiConfig.Applications))
	for _, application := range apiConfig.Applications {
		credentials[application.ID] = credential{
			application: &domain.Application{
				ID:          application.ID,
				Title:       application.Title,
				Description: application.Description,
			},
			appKeyHash: sha256.Sum256([]byte(application.AppKey)),
		}
	}

	return &Authenticator{
		credentials: credentials,
	}
}

// Authenticate 애플리케이션을 찾고 인증을 수행합니다.
// 성공 시 Application 객체를 반환하고, 실패 시 401 HTTP 에러를 반환합니다.
func (a *Authenticator) Authenticate(applicationID, appKey string) (*domain.Application, error) {
	a.mu.RLock()
	cred, ok := a.credentials[applicationID]
	a.mu.RUnlock()

	if !ok {
		return nil, NewErrInvalidApplicationID(applicationID)
	}

	hash := sha256.Sum256([]byte(appKey))
	if subtle.ConstantTimeCompare(hash[:], cred.appKeyHash[:]) != 1 {
		applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
			"application_id":   applicationID,
			"received_app_key": strutil.Mask(appKey),
		}).Warn("APP_KEY 불일치")

		return nil, NewErrInvalidAppKey(applicationID)
	}

	return cred.application, nil
}
