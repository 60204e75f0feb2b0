// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

// TableRegistry is the capability set of tenant-scoped tables. Scoping is
// declared once at wiring time, never inferred from table names at call time.
type TableRegistry struct {
	tables map[string]struct{}
}

func NewTableRegistry(tables ...string) *TableRegistry {
	r := &TableRegistry{tables: make(map[string]struct{}, len(tables))}
	for _, t := range tables {
		r.tables[t] = struct{}{}
	}
	return r
}

func (r *TableRegistry) IsTenantScoped(table string) bool {
	_, ok := r.tables[table]
	return ok
}
