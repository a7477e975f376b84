package buffer

import (
	"os"

	"github.com/gavinenxu/db-intro/logger"
	"github.com/gavinenxu/db-intro/storage"
	"gopkg.in/ini.v1"
)

const (
	defaultPoolSize = 128
	defaultPageSize = 4096
	defaultK        = 2
)

// Config is the construction-time configuration for a BufferPoolManager.
// PageSize must match whatever the disk manager was opened with. PoolSize
// and K fall back to sane defaults when left zero.
type Config struct {
	PoolSize    int
	PageSize    int
	K           int
	DiskManager storage.DiskManager
}

func (c *Config) applyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.K <= 0 {
		c.K = defaultK
	}
}

// LoadConfig reads pool_size/page_size/k from the [buffer_pool] section of
// an ini file at path, in the same spirit as the rest of the engine's
// gopkg.in/ini.v1-backed configuration: a missing file is not an error, it
// just means every setting falls back to its default. DiskManager is never
// read from file and must be set by the caller afterwards.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	var file *ini.File
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debugf("buffer pool config file does not exist: %s, using defaults", path)
		file = ini.Empty()
	} else {
		f, err := ini.Load(path)
		if err != nil {
			return nil, err
		}
		file = f
	}

	section := file.Section("buffer_pool")
	cfg.PoolSize = section.Key("pool_size").MustInt(defaultPoolSize)
	cfg.PageSize = section.Key("page_size").MustInt(defaultPageSize)
	cfg.K = section.Key("k").MustInt(defaultK)

	return cfg, nil
}
