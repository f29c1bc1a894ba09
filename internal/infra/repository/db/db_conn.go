package db

import (
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMysql    = "mysql"
	DriverSqlite   = "sqlite"
)

func GetDbConn(cf *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cf.DbDriver {
	case DriverPostgres, "":
		// 資料來源名稱 (DSN)
		dsn := fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=disable", cf.DbUser, cf.DbPas, cf.DbHost, cf.DbPort, cf.DbName)
		dialector = postgres.Open(dsn)
	case DriverMysql:
		dialector = mysql.Open(cf.MysqlDsn)
	case DriverSqlite:
		return OpenSqlite(cf.SqlitePath)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cf.DbDriver)
	}

	return Open(dialector)
}

func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSqlite sqlite 只允許單一連線, 避免 database is locked
func OpenSqlite(dsn string) (*gorm.DB, error) {
	db, err := Open(sqlite.Open(dsn))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// NewMemoryDB 測試用, 每個 name 一個獨立的記憶體資料庫
func NewMemoryDB(name string) (*UnifiedDBImpl, error) {
	conn, err := OpenSqlite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		return nil, err
	}
	store := NewUnifiedDB(conn)
	if err := store.InitMigrate(); err != nil {
		return nil, err
	}
	return store, nil
}
