package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for unannotated fields.
const EnvPrefix = "PASTURELINK"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "PASTURELINK_DB_DSN"
	EnvDBHost = "PASTURELINK_DB_HOST"
	EnvDBUser = "PASTURELINK_DB_USER"
	EnvDBName = "PASTURELINK_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
