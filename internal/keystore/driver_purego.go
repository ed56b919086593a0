//go:build !cgo_sqlite

package keystore

import (
	_ "modernc.org/sqlite"
)

const (
	sqliteDriver = "sqlite"
	driverType   = "purego"
)
