package alert

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeBotClient 전송된 메시지를 기록하고, 지정된 에러를 순서대로 반환합니다.
type fakeBotClient struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	attempts int
	errs     []error
	block    chan struct{}
}

func (c *fakeBotClient) Send(chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	if c.block != nil {
		<-c.block
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.attempts++
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}

	c.sent = append(c.sent, chattable.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (c *fakeBotClient) snapshot() ([]tgbotapi.MessageConfig, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]tgbotapi.MessageConfig(nil), c.sent...), c.attempts
}

func newTestTelegram(client botClient) *Telegram {
	t := newTelegramWithClient("notification-reconciler", 1234, client)
	t.limiter = rate.NewLimiter(rate.Inf, 1)
	t.retryDelay = time.Millisecond
	return t
}

func startTelegram(t *testing.T, tg *Telegram) (context.CancelFunc, *sync.WaitGroup) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, tg.Start(ctx, wg))

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	return cancel, wg
}

func TestTelegram_Alert_SendsHTMLMessage(t *testing.T) {
	client := &fakeBotClient{}
	tg := newTestTelegram(client)
	startTelegram(t, tg)

	tg.Alert(context.Background(), "작업 큐 <포화> & 거부")

	require.Eventually(t, func() bool {
		sent, _ := client.snapshot()
		return len(sent) == 1
	}, time.Second, 5*time.Millisecond)

	sent, _ := client.snapshot()
	assert.Equal(t, int64(1234), sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, sent[0].ParseMode)
	assert.Equal(t, "<b>[notification-reconciler]</b>\n작업 큐 &lt;포화&gt; &amp; 거부", sent[0].Text)
}

func TestTelegram_Send_Retry(t *testing.T) {
	tests := []struct {
		name         string
		errs         []error
		wantAttempts int
		wantSent     int
	}{
		{
			name:         "성공: 429 이후 재시도",
			errs:         []error{&tgbotapi.Error{Code: 429, Message: "Too Many Requests"}, nil},
			wantAttempts: 2,
			wantSent:     1,
		},
		{
			name:         "성공: 네트워크 오류 이후 재시도",
			errs:         []error{errors.New("connection reset"), nil},
			wantAttempts: 2,
			wantSent:     1,
		},
		{
			name:         "실패: 400은 재시도하지 않음",
			errs:         []error{&tgbotapi.Error{Code: 400, Message: "Bad Request"}},
			wantAttempts: 1,
			wantSent:     0,
		},
		{
			name:         "실패: 최대 재시도 횟수 초과",
			errs:         []error{errors.New("e1"), errors.New("e2"), errors.New("e3")},
			wantAttempts: maxRetries,
			wantSent:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeBotClient{errs: tt.errs}
			tg := newTestTelegram(client)

			err := tg.send(context.Background(), "message")

			sent, attempts := client.snapshot()
			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Len(t, sent, tt.wantSent)
			if tt.wantSent == 0 {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTelegram_Alert_QueueFullDoesNotBlock(t *testing.T) {
	client := &fakeBotClient{block: make(chan struct{})}
	tg := newTestTelegram(client)
	startTelegram(t, tg)
	defer close(client.block)

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*2; i++ {
			tg.Alert(context.Background(), "message")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Alert이 전송 큐가 가득 찬 상태에서 블로킹되었습니다")
	}
}

func TestTelegram_Shutdown_DrainsQueue(t *testing.T) {
	client := &fakeBotClient{}
	tg := newTestTelegram(client)

	// 전송 고루틴이 시작되기 전에 메시지를 쌓아 둡니다.
	for i := 0; i < 3; i++ {
		tg.Alert(context.Background(), "message")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, tg.Start(ctx, wg))
	wg.Wait()

	sent, _ := client.snapshot()
	assert.Len(t, sent, 3)

	// 종료된 뒤의 메시지는 버려집니다.
	tg.Alert(context.Background(), "late")
	assert.Zero(t, len(tg.messageC))
}

// 종료 신호와 큐의 메시지가 동시에 준비되어 있어도 어느 쪽이 선택되든 모두 전송되어야 합니다.
func TestTelegram_Shutdown_DrainsQueue_Repeated(t *testing.T) {
	for i := 0; i < 50; i++ {
		client := &fakeBotClient{}
		tg := newTestTelegram(client)

		for j := 0; j < 3; j++ {
			tg.Alert(context.Background(), "message")
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		wg := &sync.WaitGroup{}
		wg.Add(1)
		require.NoError(t, tg.Start(ctx, wg))
		wg.Wait()

		sent, _ := client.snapshot()
		require.Len(t, sent, 3, "반복 %d회차", i)
	}
}

func TestTelegram_Shutdown_SendsPendingFirst(t *testing.T) {
	client := &fakeBotClient{}
	tg := newTestTelegram(client)
	tg.Alert(context.Background(), "queued")

	tg.shutdown("pending")

	sent, _ := client.snapshot()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Text, "pending")
	assert.Contains(t, sent[1].Text, "queued")
	assert.True(t, tg.closed)
}

func TestTelegram_StartTwice(t *testing.T) {
	tg := newTestTelegram(&fakeBotClient{})
	startTelegram(t, tg)

	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, tg.Start(context.Background(), wg))
	wg.Wait()
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"유지: 제한 이내", "hello", 10, "hello"},
		{"자름: ASCII", "hello world", 8, "hello..."},
		{"자름: 멀티바이트 경계 보존", "가나다라", 10, "가나..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), tt.limit)
		})
	}
}

func TestTelegram_Format_LongMessage(t *testing.T) {
	tg := newTestTelegram(&fakeBotClient{})

	got := tg.format(strings.Repeat("a", messageMaxLength*2))

	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), messageMaxLength+len("<b>[notification-reconciler]</b>\n"))
}

func TestNoop_Alert(t *testing.T) {
	assert.NotPanics(t, func() { Noop{}.Alert(context.Background(), "message") })
}
