// Package config resolves the global database launch configuration: which
// key-value-store binary a topology runs and which configuration file it
// starts from. Values are resolved from the environment on every call so an
// embedding driver can adjust them between compositions.
package config

import "os"

// Environment overrides for the database defaults.
const (
	EnvDBExe  = "EXPGRID_DB_EXE"
	EnvDBConf = "EXPGRID_DB_CONF"
)

const (
	defaultDBExe  = "redis-server"
	defaultDBConf = "redis.conf"
)

// DatabaseExe returns the database server executable to launch on each node.
func DatabaseExe() string {
	if exe := os.Getenv(EnvDBExe); exe != "" {
		return exe
	}
	return defaultDBExe
}

// DatabaseConf returns the default database configuration file passed as the
// server's first argument.
func DatabaseConf() string {
	if conf := os.Getenv(EnvDBConf); conf != "" {
		return conf
	}
	return defaultDBConf
}
