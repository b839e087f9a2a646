// Package alert 운영자에게 서비스 상태를 알리는 Alerter 구현체를 제공합니다.
package alert

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/darkkaiser/notification-reconciler/internal/config"
	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	applog "github.com/darkkaiser/notification-reconciler/pkg/log"
	"github.com/darkkaiser/notification-reconciler/pkg/strutil"
)

const component = "alert.telegram"

const (
	// messageMaxLength 텔레그램 메시지의 최대 길이(4096)에서 HTML 태그 여유분을 뺀 값입니다.
	messageMaxLength = 3900

	queueSize = 64

	httpClientTimeout = 30 * time.Second
	shutdownTimeout   = 5 * time.Second

	maxRetries = 3
	retryDelay = time.Second

	// 텔레그램 정책상 한 채팅방에는 초당 1건 정도만 보낼 수 있습니다.
	sendRateLimit = 1
	sendRateBurst = 3
)

// botClient 텔레그램 봇 API 중 메시지 전송 기능만 추상화한 인터페이스입니다.
type botClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram 운영 알림을 텔레그램 채팅방으로 전송하는 Alerter입니다.
//
// Alert는 메시지를 내부 큐에 넣고 즉시 반환합니다. 큐가 가득 찼거나 종료된 뒤의 메시지는 버려집니다.
type Telegram struct {
	title  string
	chatID int64

	client  botClient
	limiter *rate.Limiter

	retryDelay time.Duration

	messageC chan string

	mu      sync.Mutex
	running bool
	closed  bool
	done    chan struct{}
}

// NewTelegram 텔레그램 봇 API 클라이언트를 초기화하여 Telegram Alerter를 생성합니다.
func NewTelegram(title string, cfg config.TelegramConfig, debug bool) (*Telegram, error) {
	applog.WithComponentAndFields(component, applog.Fields{
		"bot_token": strutil.Mask(cfg.BotToken),
		"chat_id":   cfg.ChatID,
	}).Debug("텔레그램 봇 API 클라이언트 초기화")

	// 기본 http.DefaultClient에는 타임아웃이 없어 네트워크 장애 시 전송 고루틴이 멈출 수 있습니다.
	client := &http.Client{
		Timeout: httpClientTimeout,
	}

	botAPI, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "텔레그램 봇 API 클라이언트 초기화에 실패했습니다. BotToken이 올바른지 확인해주세요")
	}
	botAPI.Debug = debug

	return newTelegramWithClient(title, cfg.ChatID, botAPI), nil
}

func newTelegramWithClient(title string, chatID int64, client botClient) *Telegram {
	return &Telegram{
		title:  title,
		chatID: chatID,

		client:  client,
		limiter: rate.NewLimiter(rate.Limit(sendRateLimit), sendRateBurst),

		retryDelay: retryDelay,

		messageC: make(chan string, queueSize),
		done:     make(chan struct{}),
	}
}

// Start 메시지 전송 고루틴을 실행합니다.
func (t *Telegram) Start(ctx context.Context, wg *sync.WaitGroup) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	applog.WithComponent(component).Info("텔레그램 알림 서비스 시작중...")

	if t.running {
		defer wg.Done()
		applog.WithComponent(component).Warn("텔레그램 알림 서비스가 이미 시작됨!!!")
		return nil
	}

	t.running = true

	go t.run(ctx, wg)

	applog.WithComponent(component).Info("텔레그램 알림 서비스 시작됨")

	return nil
}

// Alert 메시지를 전송 큐에 넣습니다. 블로킹하지 않습니다.
func (t *Telegram) Alert(_ context.Context, message string) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()

	if closed {
		applog.WithComponentAndFields(component, applog.Fields{
			"message": message,
		}).Warn("운영 알림 버림: 알림 서비스가 종료됨")
		return
	}

	select {
	case t.messageC <- message:
	default:
		applog.WithComponentAndFields(component, applog.Fields{
			"queue_size": cap(t.messageC),
			"message":    message,
		}).Warn("운영 알림 버림: 전송 큐 용량 초과 (Queue Full)")
	}
}

func (t *Telegram) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(t.done)

	for {
		select {
		case message := <-t.messageC:
			// 종료가 시작된 뒤 꺼낸 메시지는 종료 유예 시간 안에서 보냅니다.
			if ctx.Err() != nil {
				t.shutdown(message)
				return
			}
			t.safeSend(ctx, message)

		case <-ctx.Done():
			t.shutdown()
			return
		}
	}
}

// shutdown 새 메시지 접수를 막고 pending과 큐에 남은 메시지를 shutdownTimeout 동안 전송합니다.
func (t *Telegram) shutdown(pending ...string) {
	applog.WithComponent(component).Info("텔레그램 알림 서비스 중지중...")

	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.drain(pending)

	t.mu.Lock()
	t.running = false
	t.mu.Unlock()

	applog.WithComponent(component).Info("텔레그램 알림 서비스 중지됨")
}

func (t *Telegram) drain(pending []string) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	next := func() (string, bool) {
		if len(pending) > 0 {
			message := pending[0]
			pending = pending[1:]
			return message, true
		}
		select {
		case message := <-t.messageC:
			return message, true
		default:
			return "", false
		}
	}

	for {
		message, ok := next()
		if !ok {
			return
		}

		t.safeSend(ctx, message)
		if ctx.Err() != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"remaining": len(pending) + len(t.messageC),
			}).Warn("종료 유예 시간 초과: 남은 운영 알림을 전송하지 않고 종료합니다")
			return
		}
	}
}

// safeSend 전송 중 발생한 panic이 전송 고루틴을 중단시키지 않도록 복구합니다.
func (t *Telegram) safeSend(ctx context.Context, message string) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"panic": r,
			}).Error("운영 알림 전송 중 패닉 복구됨")
		}
	}()

	if err := t.send(ctx, t.format(message)); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"chat_id": t.chatID,
			"error":   err,
		}).Error("운영 알림 전송 실패")
	}
}

func (t *Telegram) format(message string) string {
	var sb strings.Builder
	if t.title != "" {
		sb.WriteString("<b>[")
		sb.WriteString(html.EscapeString(t.title))
		sb.WriteString("]</b>\n")
	}
	// 이스케이프 이후에 자르면 HTML 엔티티가 잘릴 수 있으므로 원문을 먼저 자릅니다.
	sb.WriteString(html.EscapeString(truncate(message, messageMaxLength)))

	return sb.String()
}

func (t *Telegram) send(ctx context.Context, message string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	messageConfig := tgbotapi.NewMessage(t.chatID, message)
	messageConfig.ParseMode = tgbotapi.ModeHTML

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := t.client.Send(messageConfig)
		if err == nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id": t.chatID,
				"attempt": attempt,
			}).Debug("운영 알림 전송 성공")
			return nil
		}
		lastErr = err

		code, retryAfter := parseTelegramError(err)
		if !shouldRetry(code) {
			break
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"attempt": attempt,
			"code":    code,
			"error":   err,
		}).Warn("운영 알림 전송 실패: 재시도합니다")

		wait := t.retryDelay
		if retryAfter > 0 {
			wait = time.Duration(retryAfter) * time.Second
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return apperrors.Wrap(lastErr, apperrors.ExecutionFailed, "텔레그램 메시지 전송 실패")
}

// parseTelegramError 텔레그램 API 에러에서 에러 코드와 Retry-After 값을 추출합니다.
func parseTelegramError(err error) (code int, retryAfter int) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}

	var apiErrValue tgbotapi.Error
	if errors.As(err, &apiErrValue) {
		return apiErrValue.Code, apiErrValue.ResponseParameters.RetryAfter
	}

	return 0, 0
}

// shouldRetry 429를 제외한 4xx는 재시도해도 결과가 같으므로 재시도하지 않습니다.
func shouldRetry(code int) bool {
	if code >= 400 && code < 500 {
		return code == http.StatusTooManyRequests
	}
	return true
}

// truncate UTF-8 문자가 깨지지 않도록 limit 바이트 이내로 자릅니다.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	const ellipsis = "..."

	cut := limit - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

var _ contract.Alerter = (*Telegram)(nil)
