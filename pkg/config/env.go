package config

// EnvPrefix is passed to envconfig; every field also carries its full variable name.
const EnvPrefix = "EVERGREEN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv  = "EVERGREEN_APP_ENV"
	EnvPort    = "EVERGREEN_APP_PORT"
	EnvSiteURL = "EVERGREEN_SITE_URL"

	EnvDBDSN    = "EVERGREEN_DB_DSN"
	EnvDBDriver = "EVERGREEN_DB_DRIVER"
	EnvDBHost   = "EVERGREEN_DB_HOST"
	EnvDBPort   = "EVERGREEN_DB_PORT"
	EnvDBUser   = "EVERGREEN_DB_USER"
	EnvDBPass   = "EVERGREEN_DB_PASSWORD"
	EnvDBName   = "EVERGREEN_DB_NAME"

	EnvRedisURL = "EVERGREEN_REDIS_URL"

	EnvSessionHashKey  = "EVERGREEN_SESSION_HASH_KEY"
	EnvSessionBlockKey = "EVERGREEN_SESSION_BLOCK_KEY"

	EnvCatalogPageSize = "EVERGREEN_CATALOG_PAGE_SIZE"

	EnvWhatsAppNumber = "EVERGREEN_WHATSAPP_NUMBER"

	EnvCheckoutShippingFee = "EVERGREEN_CHECKOUT_SHIPPING_FEE"

	EnvAutoMigrate = "EVERGREEN_AUTO_MIGRATE"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
