package mysql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookcatalog/internal/domain/audit"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookcatalog/internal/infrastructure/persistence/mysql/mysqltest"
)

func TestAuditRecordAndList(t *testing.T) {
	ctx := context.Background()
	repo := mysql.NewAuditRepository(mysqltest.NewDB(t))
	clock := audit.NewClock()
	actor := audit.Actor{UserID: "u-1", Email: "a@example.com", Roles: []string{"admin"}}

	target := "6f1c1a4e-8a57-4c6b-9d55-1f1e0b0f9a11"
	for _, op := range []audit.Operation{audit.OpCreate, audit.OpUpdate, audit.OpDelete} {
		require.NoError(t, repo.Record(ctx, clock.NewEvent(op, audit.CollectionBook, target, actor)))
	}
	require.NoError(t, repo.Record(ctx, clock.NewEvent(audit.OpCreate, audit.CollectionBook, "other", actor)))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	events, err := repo.ListByTarget(ctx, target)
	require.NoError(t, err)
	require.Len(t, events, 3)

	ops := []audit.Operation{events[0].Op, events[1].Op, events[2].Op}
	assert.Equal(t, []audit.Operation{audit.OpCreate, audit.OpUpdate, audit.OpDelete}, ops)
	for i, e := range events {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, audit.CollectionBook, e.Collection)
		assert.Equal(t, actor, e.Actor)
		if i > 0 {
			assert.False(t, e.Timestamp.Before(events[i-1].Timestamp))
		}
	}
}

func TestAuditRecordKeepsGivenID(t *testing.T) {
	ctx := context.Background()
	repo := mysql.NewAuditRepository(mysqltest.NewDB(t))

	e := &audit.Event{
		ID:         "e1c1a4e0-8a57-4c6b-9d55-1f1e0b0f9a11",
		Timestamp:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Op:         audit.OpCreate,
		Collection: audit.CollectionBook,
		TargetID:   "t",
		Actor:      audit.Actor{UserID: "u"},
	}
	require.NoError(t, repo.Record(ctx, e))

	// 重复ID违反主键，事件不可覆盖
	assert.Error(t, repo.Record(ctx, e))

	events, err := repo.ListByTarget(ctx, "t")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, e.ID, events[0].ID)
	assert.True(t, e.Timestamp.Equal(events[0].Timestamp))
}
