package database

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

// Row lock strengths accepted by RowLock.
const (
	// LockUpdate conflicts with the KEY SHARE lock a foreign key check takes,
	// so no new student_projects row can reference a row locked with it.
	LockUpdate = "UPDATE"
	// LockNoKeyUpdate still lets foreign key checks through.
	LockNoKeyUpdate = "NO KEY UPDATE"
	LockShare       = "SHARE"
)

// RowLock locks the rows of the current table selected by the statement
// until the transaction ends. sqlserver has no locking clause, so the
// strength is mapped onto table hints there.
func RowLock(dialectorName, strength string, skipLocked bool) clause.Expression {
	if dialectorName == "sqlserver" {
		hint := TableHint{Keys: []string{"ROWLOCK", "UPDLOCK"}}
		if strength == LockShare {
			hint.Keys = []string{"ROWLOCK", "HOLDLOCK"}
		}
		if skipLocked {
			hint.Keys = append(hint.Keys, "READPAST")
		}
		return hint
	}

	lock := clause.Locking{
		Strength: strength,
		Table:    clause.Table{Name: clause.CurrentTable},
	}
	if skipLocked {
		lock.Options = "SKIP LOCKED"
	}
	return lock
}

// TableHint renders WITH(...) after the FROM clause, chaining with hints
// already attached there.
type TableHint struct {
	Keys []string
}

func (h TableHint) ModifyStatement(stmt *gorm.Statement) {
	from := stmt.Clauses["FROM"]
	if from.AfterExpression == nil {
		from.AfterExpression = h
	} else {
		from.AfterExpression = hints.Exprs{from.AfterExpression, h}
	}
	stmt.Clauses["FROM"] = from
}

func (h TableHint) Build(builder clause.Builder) {
	if len(h.Keys) == 0 {
		return
	}
	builder.WriteString("WITH(" + strings.Join(h.Keys, ",") + ")")
}
