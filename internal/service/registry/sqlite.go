package registry

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/notification-reconciler/internal/pkg/errors"
	"github.com/darkkaiser/notification-reconciler/internal/service/contract"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS notifications (
	id           INTEGER PRIMARY KEY,
	state        TEXT    NOT NULL CHECK (state IN ('active', 'cancelled')),
	created_at   INTEGER NOT NULL,
	cancelled_at INTEGER
)`, `
CREATE INDEX IF NOT EXISTS idx_notifications_state_cancelled_at
	ON notifications (state, cancelled_at)`,
}

// sqliteStore modernc.org/sqlite 기반 Store 구현체입니다. 시각은 UTC 기준 밀리초로 저장합니다.
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLiteStore path의 SQLite 데이터베이스를 열고 스키마를 생성합니다.
func OpenSQLiteStore(ctx context.Context, path string) (Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "SQLite 데이터베이스 경로가 비어 있습니다")
	}

	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.InvalidInput, "SQLite 데이터베이스 경로를 해석할 수 없습니다 (path: %s)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.System, "SQLite 데이터베이스를 열 수 없습니다 (path: %s)", path)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.Wrapf(err, apperrors.System, "SQLite 데이터베이스 연결 확인 실패 (path: %s)", path)
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, apperrors.Wrap(err, apperrors.System, "SQLite 스키마 생성 실패")
		}
	}

	return &sqliteStore{db: db}, nil
}

var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// sqliteDSN path를 file: URI로 바꿉니다. 경로의 '?', '#', '%'는 퍼센트 인코딩됩니다.
func sqliteDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		// C:/data/registry.db
		abs = "/" + abs
	}

	u := url.URL{
		Scheme:   "file",
		Path:     abs,
		RawQuery: url.Values{"_pragma": sqlitePragmas}.Encode(),
	}
	return u.String(), nil
}

func (s *sqliteStore) Track(ctx context.Context, id contract.NotificationID, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO notifications (id, state, created_at, cancelled_at)
VALUES (?, 'active', ?, NULL)
ON CONFLICT (id) DO UPDATE SET
	state        = 'active',
	created_at   = excluded.created_at,
	cancelled_at = NULL
`, int64(id), toMillis(now))
	if err != nil {
		return apperrors.Wrapf(err, apperrors.System, "알림 등록 실패 (id: %d)", id)
	}
	return nil
}

// Cancel 활성 상태인 레코드만 갱신하는 조건부 UPDATE로 취소합니다.
// 같은 ID에 대한 동시 요청이 있어도 상태 전이는 한 번만 일어납니다.
func (s *sqliteStore) Cancel(ctx context.Context, id contract.NotificationID, now time.Time) (CancelResult, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE notifications
SET state = 'cancelled', cancelled_at = ?
WHERE id = ? AND state = 'active'
`, toMillis(now), int64(id))
	if err != nil {
		return CancelResultUnknown, apperrors.Wrapf(err, apperrors.System, "알림 취소 실패 (id: %d)", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return CancelResultUnknown, apperrors.Wrapf(err, apperrors.System, "알림 취소 결과 확인 실패 (id: %d)", id)
	}
	if affected > 0 {
		return CancelResultCancelled, nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM notifications WHERE id = ?)`, int64(id)).Scan(&exists); err != nil {
		return CancelResultUnknown, apperrors.Wrapf(err, apperrors.System, "알림 존재 여부 확인 실패 (id: %d)", id)
	}
	if exists {
		return CancelResultAlreadyCancelled, nil
	}
	return CancelResultUnknown, nil
}

func (s *sqliteStore) Get(ctx context.Context, id contract.NotificationID) (contract.Notification, error) {
	var (
		state       string
		createdAt   int64
		cancelledAt sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx, `
SELECT state, created_at, cancelled_at
FROM notifications
WHERE id = ?
`, int64(id)).Scan(&state, &createdAt, &cancelledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contract.Notification{}, contract.ErrNotificationNotFound
		}
		return contract.Notification{}, apperrors.Wrapf(err, apperrors.System, "알림 조회 실패 (id: %d)", id)
	}

	n := contract.Notification{
		ID:        id,
		State:     contract.NotificationState(state),
		CreatedAt: fromMillis(createdAt),
	}
	if cancelledAt.Valid {
		t := fromMillis(cancelledAt.Int64)
		n.CancelledAt = &t
	}
	return n, nil
}

func (s *sqliteStore) ActiveCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE state = 'active'`).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, apperrors.System, "활성 알림 개수 조회 실패")
	}
	return count, nil
}

func (s *sqliteStore) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM notifications
WHERE state = 'cancelled' AND cancelled_at < ?
`, toMillis(cutoff))
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.System, "취소된 알림 정리 실패")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.System, "취소된 알림 정리 결과 확인 실패")
	}
	return int(affected), nil
}

func (s *sqliteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.System, "SQLite 데이터베이스 연결 확인 실패")
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
