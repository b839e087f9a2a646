package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	"github.com/darkkaiser/notification-reconciler/internal/pkg/version"
	"github.com/darkkaiser/notification-reconciler/internal/service"
	"github.com/darkkaiser/notification-reconciler/internal/service/alert"
	"github.com/darkkaiser/notification-reconciler/internal/service/api"
	"github.com/darkkaiser/notification-reconciler/internal/service/api/constants"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/darkkaiser/notification-reconciler/internal/service/dismissal"
	"github.com/darkkaiser/notification-reconciler/internal/service/executor"
	"github.com/darkkaiser/notification-reconciler/internal/service/registry"
	"github.com/darkkaiser/notification-reconciler/internal/service/scheduler"
	"github.com/darkkaiser/notification-reconciler/internal/service/subscriber"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/spf13/cobra"
)

const banner = `
  _   _       _   _  __ _           _   _               ____                           _ _
 | \ | | ___ | |_(_)/ _(_) ___ __ _| |_(_) ___  _ __   |  _ \ ___  ___ ___  _ __   ___(_) | ___ _ __
 |  \| |/ _ \| __| | |_| |/ __/ _' | __| |/ _ \| '_ \  | |_) / _ \/ __/ _ \| '_ \ / __| | |/ _ \ '__|
 | |\  | (_) | |_| |  _| | (_| (_| | |_| | (_) | | | | |  _ <  __/ (_| (_) | | | | (__| | |  __/ |
 |_| \_|\___/ \__|_|_| |_|\___\__,_|\__|_|\___/|_| |_| |_| \_\___|\___\___/|_| |_|\___|_|_|\___|_|
                                                                                  %s
--------------------------------------------------------------------------------
`

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "해제 신호 수신 서버를 실행합니다.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runServe(root.configFile)
		},
	}
}

// components 서버를 구성하는 서비스 묶음입니다.
//
// 수신 계층(ingress)을 먼저 종료하여 새 해제 신호 유입을 막은 뒤 작업 실행기와 나머지 서비스를 종료합니다.
type components struct {
	registry *registry.Registry

	ingress []service.Service
	core    []service.Service
}

func runServe(configFile string) error {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.LoadWithFile(configFile)
	if err != nil {
		return fmt.Errorf("환경설정 로드 실패: %w", err)
	}

	// 2. 로그 시스템 초기화
	logOpts := applog.NewProductionOptions(config.AppName)
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	}
	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		return fmt.Errorf("로그 시스템 초기화 실패: %w", err)
	}
	defer appLogCloser.Close()

	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()
	fmt.Printf(banner, buildInfo.Version)

	applog.WithComponentAndFields("main", applog.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	setupCtx, setupCancel := context.WithCancel(context.Background())
	defer setupCancel()

	c, err := buildComponents(setupCtx, appConfig, buildInfo)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.registry.Close(); err != nil {
			applog.WithComponentAndFields("main", applog.Fields{"error": err}).Error("알림 레지스트리 종료 실패")
		}
	}()

	coreCtx, coreCancel := context.WithCancel(context.Background())
	defer coreCancel()
	coreWG := &sync.WaitGroup{}

	ingressCtx, ingressCancel := context.WithCancel(context.Background())
	defer ingressCancel()
	ingressWG := &sync.WaitGroup{}

	shutdown := func() {
		ingressCancel()
		ingressWG.Wait()

		coreCancel()
		coreWG.Wait()
	}

	if err := startServices(coreCtx, coreWG, c.core); err != nil {
		shutdown()
		return err
	}
	if err := startServices(ingressCtx, ingressWG, c.ingress); err != nil {
		shutdown()
		return err
	}

	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(termC)

	applog.WithComponent("main").Info("서버 가동 완료")

	sig := <-termC

	applog.WithComponentAndFields("main", applog.Fields{"signal": sig.String()}).Info("종료 신호 수신")
	shutdown()

	return nil
}

// buildComponents 설정에 따라 서비스를 생성하고 서로 연결합니다.
func buildComponents(ctx context.Context, appConfig *config.AppConfig, buildInfo version.Info) (*components, error) {
	store, err := registry.NewStore(ctx, appConfig.Registry)
	if err != nil {
		return nil, err
	}
	reg := registry.New(store)

	c := &components{registry: reg}

	var alerter contract.Alerter = alert.Noop{}
	if appConfig.Alert.Telegram.Enabled {
		telegram, err := alert.NewTelegram(config.AppName, appConfig.Alert.Telegram, appConfig.Debug)
		if err != nil {
			_ = reg.Close()
			return nil, err
		}
		alerter = telegram
		c.core = append(c.core, telegram)
	}

	pool := executor.New(executor.Options{
		Workers:         appConfig.Executor.Workers,
		QueueSize:       appConfig.Executor.QueueSize,
		ShutdownTimeout: appConfig.Executor.ShutdownTimeout,
	})
	listener := dismissal.New(pool, reg, alerter, appConfig.Dismissal.AlertInterval)

	c.core = append(c.core, pool, scheduler.NewService(appConfig.Registry.Purge, reg, alerter))

	var sub *subscriber.Subscriber
	if appConfig.NATS.Enabled {
		sub = subscriber.New(appConfig.NATS, listener, alerter)
		c.ingress = append(c.ingress, sub)
	}

	if appConfig.API.Enabled {
		apiService := api.NewService(appConfig, listener, reg, alerter, buildInfo)

		apiService.RegisterHealthCheck(constants.DependencyRegistry, reg.Health)
		apiService.RegisterHealthCheck(constants.DependencyExecutor, func(context.Context) error { return pool.Health() })
		if sub != nil {
			apiService.RegisterHealthCheck(constants.DependencyNATS, sub.Health)
			apiService.RegisterStats(constants.DependencyNATS, func() any { return sub.Stats() })
		} else {
			apiService.RegisterHealthCheck(constants.DependencyNATS, nil)
		}
		apiService.RegisterStats("listener", func() any { return listener.Stats() })
		apiService.RegisterStats(constants.DependencyExecutor, func() any { return pool.Stats() })

		c.ingress = append(c.ingress, apiService)
	}

	return c, nil
}

// startServices 서비스를 순서대로 시작합니다. 하나라도 실패하면 즉시 에러를 반환합니다.
func startServices(ctx context.Context, wg *sync.WaitGroup, services []service.Service) error {
	for _, s := range services {
		wg.Add(1)
		if err := s.Start(ctx, wg); err != nil {
			applog.WithComponentAndFields("main", applog.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			return err
		}
	}
	return nil
}
