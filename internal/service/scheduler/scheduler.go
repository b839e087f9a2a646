// Package scheduler 취소된 알림 레코드를 주기적으로 정리하는 스케줄러를 제공합니다.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/darkkaiser/notification-reconciler/pkg/cronx"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/robfig/cron/v3"
)

// component Scheduler 서비스의 로깅용 컴포넌트 이름
const component = "scheduler.service"

// purgeTimeout 한 번의 정리 작업에 허용되는 최대 시간
const purgeTimeout = time.Minute

// Purger cutoff 이전에 취소된 레코드를 삭제합니다.
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}

// Scheduler 설정된 Cron 표현식에 따라 취소된 알림 레코드를 정리하는 서비스입니다.
type Scheduler struct {
	purgeConfig config.PurgeConfig

	cron *cron.Cron

	purger  Purger
	alerter contract.Alerter

	now func() time.Time

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 Scheduler 서비스 인스턴스를 생성합니다.
func NewService(purgeConfig config.PurgeConfig, purger Purger, alerter contract.Alerter) *Scheduler {
	if purger == nil {
		panic("Purger는 필수입니다")
	}
	if alerter == nil {
		panic("Alerter는 필수입니다")
	}

	return &Scheduler{
		purgeConfig: purgeConfig,

		purger:  purger,
		alerter: alerter,

		now: time.Now,
	}
}

// Start 스케줄러를 시작하고 정리 작업을 Cron 엔진에 등록합니다.
// 정리 작업이 비활성화되어 있으면 Cron 엔진 없이 종료 신호만 기다립니다.
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("Scheduler 서비스 시작중...")

	if s.purger == nil {
		defer serviceStopWG.Done()
		return ErrPurgerNotInitialized
	}

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("Scheduler 서비스가 이미 시작됨!!!")
		return nil
	}

	// 초 단위(6필드) 표현식을 사용하며, panic은 복구하고 이전 실행이 끝나지 않았으면 건너뜁니다.
	s.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
		cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
		),
	)

	if s.purgeConfig.Enabled {
		if _, err := s.cron.AddFunc(s.purgeConfig.TimeSpec, s.runPurge); err != nil {
			s.cron = nil
			defer serviceStopWG.Done()

			err = newErrInvalidCronSpec(s.purgeConfig.TimeSpec, err)
			applog.WithComponentAndFields(component, applog.Fields{
				"time_spec": s.purgeConfig.TimeSpec,
				"error":     err,
			}).Error("Scheduler 서비스 시작 실패")

			return err
		}
	}

	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"purge_enabled":   s.purgeConfig.Enabled,
		"purge_time_spec": s.purgeConfig.TimeSpec,
		"purge_retention": s.purgeConfig.Retention.String(),
		"schedules":       len(s.cron.Entries()),
	}).Info("Scheduler 서비스 시작됨")

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.stop()
	}()

	return nil
}

// stop 실행 중인 스케줄러를 중지하고 진행 중인 정리 작업이 끝날 때까지 기다립니다.
func (s *Scheduler) stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("Scheduler 서비스 중지중...")

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Scheduler 서비스 중지됨")
}

// runPurge 보존 기간이 지난 취소 레코드를 삭제합니다.
//
// Graceful Shutdown 시 cron.Stop()이 실행 중인 작업의 완료를 기다리므로
// 서비스 종료 컨텍스트 대신 독립된 타임아웃 컨텍스트를 사용합니다.
func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	cutoff := s.now().Add(-s.purgeConfig.Retention)

	purged, err := s.purger.Purge(ctx, cutoff)
	if err != nil {
		message := fmt.Sprintf("취소된 알림 정리 실패: %v", err)

		applog.WithComponentAndFields(component, applog.Fields{
			"cutoff": cutoff.Format(time.RFC3339),
			"error":  err,
		}).Error(message)

		s.alerter.Alert(ctx, message)

		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"cutoff": cutoff.Format(time.RFC3339),
		"purged": purged,
	}).Debug("정리 작업 실행 완료")
}
