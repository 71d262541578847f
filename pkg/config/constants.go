package config

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv          = "SELLERPULSE_APP_ENV"
	EnvAppPort         = "SELLERPULSE_APP_PORT"
	EnvCacheDriver     = "SELLERPULSE_CACHE_DRIVER"
	EnvRedisURL        = "SELLERPULSE_REDIS_URL"
	EnvRedisAddr       = "SELLERPULSE_REDIS_ADDR"
	EnvLWAClientID     = "SELLERPULSE_LWA_CLIENT_ID"
	EnvLWAClientSecret = "SELLERPULSE_LWA_CLIENT_SECRET"
	EnvLWARefreshToken = "SELLERPULSE_LWA_REFRESH_TOKEN"

	CacheDriverSQLite = "sqlite"
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)
