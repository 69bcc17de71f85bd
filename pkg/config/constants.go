package config

// EnvPrefix is passed to envconfig; explicit tags carry the full names.
const EnvPrefix = "phantomos"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PHANTOMOS_DB_DSN"
	EnvDBHost = "PHANTOMOS_DB_HOST"
	EnvDBUser = "PHANTOMOS_DB_USER"
	EnvDBName = "PHANTOMOS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
