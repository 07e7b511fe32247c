package database

import "gorm.io/gorm/schema"

// postgres truncates identifiers longer than this
const postgresIdentifierMaxLength = 63

// NamingStrategy maps Go names to snake_case plural tables and snake_case
// columns, keeping generated constraint and index names inside the
// postgres identifier limit.
type NamingStrategy struct {
	schema.NamingStrategy
}

func NewNamingStrategy() NamingStrategy {
	return NamingStrategy{
		NamingStrategy: schema.NamingStrategy{
			IdentifierMaxLength: postgresIdentifierMaxLength,
		},
	}
}
