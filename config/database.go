package config

import (
	"fmt"
	"log"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the MySQL data source name for the database section.
func (d DatabaseConfig) DSN() string {
	cfg := gomysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// OpenDB connects gorm to MySQL. SQL statements are logged to LogWriter;
// in production only warnings are logged unless DEBUG_SQL is set.
func (c *Config) OpenDB() (*gorm.DB, error) {
	logLevel := logger.Info
	if c.IsProduction() && !c.Database.DebugSQL {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(c.Database.DSN()), &gorm.Config{
		Logger: logger.New(
			log.New(LogWriter, "\r\n", log.LstdFlags),
			logger.Config{LogLevel: logLevel},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
