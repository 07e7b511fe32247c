package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type widget struct {
	BaseModel
	Name string
}

// dryRunDB builds statements without ever opening a connection.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{
		NamingStrategy:       NewNamingStrategy(),
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestNamingStrategy(t *testing.T) {
	ns := NewNamingStrategy()

	assert.Equal(t, "students", ns.TableName("Student"))
	assert.Equal(t, "student_projects", ns.TableName("StudentProject"))
	assert.Equal(t, "project_id", ns.ColumnName("student_projects", "ProjectId"))
	assert.Equal(t, "created_at", ns.ColumnName("students", "CreatedAt"))
}

func TestOrderByName(t *testing.T) {
	db := dryRunDB(t)

	tx, err := OrderByName(db.Model(&widget{}), &[]*widget{})
	require.NoError(t, err)

	stmt := tx.Find(&[]*widget{}).Statement
	assert.Contains(t, stmt.SQL.String(), `ORDER BY "widgets"."name","widgets"."id"`)
}

func TestOrderByFields_Errors(t *testing.T) {
	db := dryRunDB(t)

	_, err := OrderByFields(db, &widget{}, "Missing")
	assert.Error(t, err)

	_, err = OrderByFields(db, 42, "Name")
	assert.Error(t, err)

	_, err = OrderByFields(nil, &widget{}, "Name")
	assert.Error(t, err)
}

func TestRowLock(t *testing.T) {
	db := dryRunDB(t)

	stmt := db.Clauses(RowLock(db.Dialector.Name(), LockUpdate, false)).First(&widget{}, 7).Statement
	assert.Contains(t, stmt.SQL.String(), `FOR UPDATE OF "widgets"`)
	assert.NotContains(t, stmt.SQL.String(), "NO KEY")

	stmt = db.Clauses(RowLock(db.Dialector.Name(), LockNoKeyUpdate, true)).First(&widget{}, 7).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR NO KEY UPDATE")
	assert.Contains(t, stmt.SQL.String(), "SKIP LOCKED")

	_, isLocking := RowLock("postgres", LockUpdate, false).(clause.Locking)
	assert.True(t, isLocking)
}

func TestRowLock_SQLServerHints(t *testing.T) {
	tests := []struct {
		name       string
		strength   string
		skipLocked bool
		want       []string
	}{
		{name: "update", strength: LockUpdate, want: []string{"ROWLOCK", "UPDLOCK"}},
		{name: "update skip locked", strength: LockUpdate, skipLocked: true, want: []string{"ROWLOCK", "UPDLOCK", "READPAST"}},
		{name: "share", strength: LockShare, want: []string{"ROWLOCK", "HOLDLOCK"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint, ok := RowLock("sqlserver", tt.strength, tt.skipLocked).(TableHint)
			require.True(t, ok)
			assert.Equal(t, tt.want, hint.Keys)
		})
	}
}

func TestSQLState(t *testing.T) {
	fk := fmt.Errorf("save: %w", &pgconn.PgError{Code: SQLStateForeignKeyViolation})

	assert.Equal(t, SQLStateForeignKeyViolation, SQLState(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsForeignKeyViolation(gorm.ErrForeignKeyViolated))

	assert.Equal(t, "", SQLState(errors.New("boom")))
	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: SQLStateUniqueViolation}))
}

func TestConn(t *testing.T) {
	db := dryRunDB(t)
	ctx := context.Background()

	_, ok := TxFromContext(ctx)
	assert.False(t, ok)
	assert.Equal(t, ctx, Conn(ctx, db).Statement.Context)

	tx := db.Session(&gorm.Session{NewDB: true})
	txCtx := WithTx(ctx, tx)

	got, ok := TxFromContext(txCtx)
	require.True(t, ok)
	assert.Same(t, tx, got)
	assert.Equal(t, txCtx, Conn(txCtx, db).Statement.Context)
}

// unreachableDB points at a port nothing listens on, so every ping is
// refused immediately.
func unreachableDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=1 user=test dbname=test sslmode=disable connect_timeout=1",
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestPingPlugin_GivesUpAfterMaxWait(t *testing.T) {
	db := unreachableDB(t)
	p := newPingPlugin(5*time.Millisecond, 100*time.Millisecond)

	tx := db.WithContext(context.Background())
	start := time.Now()
	p.callback(tx)

	require.Error(t, tx.Error)
	assert.Contains(t, tx.Error.Error(), "database unreachable after 100ms")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPingPlugin_StopsOnCancelledContext(t *testing.T) {
	db := unreachableDB(t)
	p := newPingPlugin(5*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tx := db.WithContext(ctx)
	p.callback(tx)

	assert.ErrorIs(t, tx.Error, context.Canceled)
}

func TestPingPlugin_ZeroMaxWaitPingsOnce(t *testing.T) {
	db := unreachableDB(t)
	p := newPingPlugin(time.Hour, 0)

	tx := db.WithContext(context.Background())
	done := make(chan struct{})
	go func() {
		p.callback(tx)
		close(done)
	}()

	select {
	case <-done:
		assert.Error(t, tx.Error)
	case <-time.After(5 * time.Second):
		t.Fatal("callback retried with zero max wait")
	}
}
