package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseDefaults(t *testing.T) {
	t.Setenv(EnvDBExe, "")
	t.Setenv(EnvDBConf, "")

	assert.Equal(t, "redis-server", DatabaseExe())
	assert.Equal(t, "redis.conf", DatabaseConf())
}

func TestDatabaseEnvOverrides(t *testing.T) {
	t.Setenv(EnvDBExe, "/opt/keydb/bin/keydb-server")
	t.Setenv(EnvDBConf, "/etc/keydb/keydb.conf")

	assert.Equal(t, "/opt/keydb/bin/keydb-server", DatabaseExe())
	assert.Equal(t, "/etc/keydb/keydb.conf", DatabaseConf())
}
