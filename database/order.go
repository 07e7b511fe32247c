package database

import (
	"errors"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderByFields adds an ascending ORDER BY on the given struct fields of
// dest, in order. Columns are qualified with dest's table so the clause
// stays unambiguous when the query joins student_projects.
func OrderByFields(tx *gorm.DB, dest any, fields ...string) (*gorm.DB, error) {
	if tx == nil || dest == nil {
		return nil, errors.New("nil argument")
	}

	destType := reflect.TypeOf(dest)
	for destType.Kind() == reflect.Ptr || destType.Kind() == reflect.Slice {
		destType = destType.Elem()
	}

	if destType.Kind() != reflect.Struct {
		return nil, errors.New("dest is not a struct")
	}

	tableName := tx.NamingStrategy.TableName(destType.Name())

	columns := make([]clause.OrderByColumn, 0, len(fields))
	for _, field := range fields {
		if _, ok := destType.FieldByName(field); !ok {
			return nil, fmt.Errorf("%s has no field %s", destType.Name(), field)
		}

		columns = append(columns, clause.OrderByColumn{
			Column: clause.Column{Table: tableName, Name: tx.NamingStrategy.ColumnName(tableName, field)},
		})
	}

	return tx.Order(clause.OrderBy{Columns: columns}), nil
}

// OrderByName is the ordering used by every list endpoint: name, then id
// so equal names come back in a stable order.
func OrderByName(tx *gorm.DB, dest any) (*gorm.DB, error) {
	return OrderByFields(tx, dest, "Name", "Id")
}
