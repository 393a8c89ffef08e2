package audit

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/itemsim/model"
	"github.com/kasuganosora/itemsim/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func countLogs(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.AuditLog{}).Count(&n).Error)
	return n
}

func TestLog_FlushedOnStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())

	accountID, charID := int64(1), int64(2)
	svc.Log(Entry{
		TraceID:    "trace-1",
		AccountID:  &accountID,
		CharID:     &charID,
		Action:     "purchase",
		Request:    map[string]int{"item_code": 1},
		Response:   map[string]int64{"money": 7000},
		IP:         "127.0.0.1",
		DurationMs: 3,
	})
	svc.Log(Entry{TraceID: "trace-2", Action: "sell", Error: "not enough money"})

	svc.Stop(context.Background())
	require.Equal(t, int64(2), countLogs(t, db))

	var rec model.AuditLog
	require.NoError(t, db.Where("trace_id = ?", "trace-1").First(&rec).Error)
	assert.Equal(t, "purchase", rec.Action)
	require.NotNil(t, rec.CharID)
	assert.Equal(t, charID, *rec.CharID)
	assert.JSONEq(t, `{"money":7000}`, string(rec.Response))
}

func TestLog_BatchOfHundredFlushesImmediately(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	defer svc.Stop(context.Background())

	for i := 0; i < 100; i++ {
		svc.Log(Entry{TraceID: "t", Action: "earn_money"})
	}

	// The worker flushes as soon as the batch fills, well before the
	// 2s ticker. Poll briefly rather than sleeping the full interval.
	assert.Eventually(t, func() bool {
		var n int64
		db.Model(&model.AuditLog{}).Count(&n)
		return n == 100
	}, time.Second, 10*time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, zap.NewNop())
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}
