package config

const EnvPrefix = "USERS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
	StoreBackendMongo    = "mongo"
)

const (
	EnvAppEnv       = "USERS_APP_ENV"
	EnvPort         = "USERS_APP_PORT"
	EnvStoreBackend = "USERS_STORE_BACKEND"

	EnvDBDSN  = "USERS_DB_DSN"
	EnvDBHost = "USERS_DB_HOST"
	EnvDBUser = "USERS_DB_USER"
	EnvDBName = "USERS_DB_NAME"

	EnvMongoURI        = "USERS_MONGO_URI"
	EnvRedisURL        = "USERS_REDIS_URL"
	EnvAcceptedCountry = "USERS_ACCEPTED_COUNTRY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
