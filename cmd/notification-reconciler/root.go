package main

import (
	"github.com/darkkaiser/notification-reconciler/internal/config"
	"github.com/spf13/cobra"
)

// rootOptions 모든 하위 명령이 공유하는 전역 플래그입니다.
type rootOptions struct {
	configFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "알림 해제 신호를 수신하여 알림 레지스트리의 취소 상태를 조정합니다.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", config.DefaultFilename, "설정 파일 경로 (JSON)")

	cmd.AddCommand(
		newServeCommand(opts),
		newDismissCommand(opts),
		newVersionCommand(),
	)

	return cmd
}
