package main

import (
	"context"
	"fmt"
	"time"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	"github.com/darkkaiser/notification-reconciler/internal/service/dismissal"
	"github.com/darkkaiser/notification-reconciler/internal/service/subscriber"
	"github.com/spf13/cobra"
)

type dismissOptions struct {
	*rootOptions

	timeout time.Duration
}

// newDismissCommand 실행 중인 인스턴스들에 NATS로 해제 신호를 발행하는 운영용 명령을 생성합니다.
func newDismissCommand(root *rootOptions) *cobra.Command {
	opts := &dismissOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "dismiss NOTIFICATION_ID",
		Short: "NATS 주제로 알림 해제 신호를 발행합니다.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := dismissal.ParseID(args[0])
			if !id.IsValid() {
				return contract.ErrInvalidNotificationID
			}

			appConfig, err := config.LoadWithFile(opts.configFile)
			if err != nil {
				return err
			}
			if !appConfig.NATS.Enabled {
				return apperrors.New(apperrors.InvalidInput, "NATS가 비활성화되어 있어 해제 신호를 발행할 수 없습니다 (nats.enabled)")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			if err := subscriber.PublishDismissal(ctx, appConfig.NATS, id); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "해제 신호 발행 완료 (notification_id: %s, subject: %s)\n", id, appConfig.NATS.Subject)
			return err
		},
	}
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "NATS 서버 수신 확인 대기 시간")

	return cmd
}
