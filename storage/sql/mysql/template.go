package mysql

import (
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/lsst-sims/catalogs/storage/sql"
)

type Template struct{}

func (t *Template) DriverName() string {
	return "mysql"
}

func (t *Template) DefaultPort() int {
	return 3306
}

func (t *Template) GetDSN(params sql.ConnectionParams) string {
	cfg := mysql.NewConfig()
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(params.Host, fmt.Sprint(params.Port))
	cfg.DBName = params.Database

	return cfg.FormatDSN()
}

func (t *Template) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
