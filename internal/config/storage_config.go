package config

const (
	storageBackendVar = "STORAGE_BACKEND"
	redisAddrVar      = "REDIS_ADDR"
	redisPasswordVar  = "REDIS_PASSWORD"
	redisDBVar        = "REDIS_DB"
	redisPrefixVar    = "REDIS_PREFIX"
)

// Storage backends for the dashboard's durable client-side state.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type Storage struct {
	source
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() string {
	return s.get(storageBackendVar, StorageFile)
}

func (s Storage) GetRedisAddr() string {
	return s.get(redisAddrVar, "localhost:6379")
}

func (s Storage) GetRedisPassword() string {
	return s.get(redisPasswordVar, "")
}

func (s Storage) GetRedisDB() int {
	return s.getInt(redisDBVar, 0)
}

func (s Storage) GetRedisPrefix() string {
	return s.get(redisPrefixVar, "github-dashboard:")
}
