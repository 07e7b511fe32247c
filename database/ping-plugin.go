package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const pingRetryInterval = 20 * time.Millisecond

// pingPlugin blocks each statement until the pool answers a ping, so a
// database restart shows up as latency instead of a failed request. It
// gives up when the statement's context ends or after maxWait, whichever
// comes first. A zero maxWait pings once without retrying.
type pingPlugin struct {
	retryInterval time.Duration
	maxWait       time.Duration
}

func newPingPlugin(retryInterval, maxWait time.Duration) *pingPlugin {
	return &pingPlugin{retryInterval: retryInterval, maxWait: maxWait}
}

func (p *pingPlugin) Name() string {
	return "manytomany:ping"
}

func (p *pingPlugin) Initialize(db *gorm.DB) error {
	transactionEnabled := func(db *gorm.DB) bool {
		return !db.SkipDefaultTransaction
	}
	transactionDisabled := func(db *gorm.DB) bool {
		return db.SkipDefaultTransaction
	}

	callback := p.callback

	create := db.Callback().Create()
	if err := create.Match(transactionEnabled).Before("gorm:begin_transaction").Register("manytomany:ping", callback); err != nil {
		return err
	}
	if err := create.Match(transactionDisabled).Before("gorm:before_create").Register("manytomany:ping", callback); err != nil {
		return err
	}

	if err := db.Callback().Query().Before("gorm:query").Register("manytomany:ping", callback); err != nil {
		return err
	}

	del := db.Callback().Delete()
	if err := del.Match(transactionEnabled).Before("gorm:begin_transaction").Register("manytomany:ping", callback); err != nil {
		return err
	}
	if err := del.Match(transactionDisabled).Before("gorm:before_delete").Register("manytomany:ping", callback); err != nil {
		return err
	}

	update := db.Callback().Update()
	if err := update.Match(transactionEnabled).Before("gorm:begin_transaction").Register("manytomany:ping", callback); err != nil {
		return err
	}
	if err := update.Match(transactionDisabled).Before("gorm:setup_reflect_value").Register("manytomany:ping", callback); err != nil {
		return err
	}

	if err := db.Callback().Row().Before("gorm:row").Register("manytomany:ping", callback); err != nil {
		return err
	}
	return db.Callback().Raw().Before("gorm:raw").Register("manytomany:ping", callback)
}

func (p *pingPlugin) callback(db *gorm.DB) {
	deadline := time.Now().Add(p.maxWait)

	err := ping(db)
	for err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = db.AddError(err)
			return
		}
		if !time.Now().Add(p.retryInterval).Before(deadline) {
			_ = db.AddError(fmt.Errorf("database unreachable after %s: %w", p.maxWait, err))
			return
		}

		time.Sleep(p.retryInterval)
		err = ping(db)
	}
}

func ping(db *gorm.DB) error {
	internalDb, err := db.DB()
	if err != nil {
		return err
	}

	if db.Statement != nil && db.Statement.Context != nil {
		return internalDb.PingContext(db.Statement.Context)
	}
	return internalDb.Ping()
}
