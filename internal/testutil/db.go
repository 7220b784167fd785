// Package testutil opens throwaway sqlite databases with the production models migrated.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"aguaya/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Modelos lists every table the service layer touches.
var Modelos = []interface{}{
	&model.Cliente{},
	&model.Distrito{},
	&model.Vale{},
	&model.Voucher{},
	&model.PreferenciaCliente{},
	&model.PlanSuscripcion{},
	&model.Suscripcion{},
	&model.Usuario{},
}

// NewDB returns an in-memory database private to t. A single connection keeps
// every statement on the same memory database and serializes writers.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Modelos...))
	return db
}
