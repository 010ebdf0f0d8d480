package config

// EnvPrefix is applied by envconfig on top of the explicit names below.
const EnvPrefix = "idolbase"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "IDOLBASE_APP_ENV"
	EnvPort                   = "IDOLBASE_APP_PORT"
	EnvDBDSN                  = "IDOLBASE_DB_DSN"
	EnvDBHost                 = "IDOLBASE_DB_HOST"
	EnvDBUser                 = "IDOLBASE_DB_USER"
	EnvDBName                 = "IDOLBASE_DB_NAME"
	EnvRedisURL               = "IDOLBASE_REDIS_URL"
	EnvJWTSecret              = "IDOLBASE_JWT_SECRET"
	EnvJWTIssuer              = "IDOLBASE_JWT_ISSUER"
	EnvJWTExpMins             = "IDOLBASE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "IDOLBASE_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "IDOLBASE_GCP_PROJECT_ID"
	EnvPubSubModerationTopic  = "IDOLBASE_PUBSUB_MODERATION_TOPIC"
	EnvPubSubModerationSub    = "IDOLBASE_PUBSUB_MODERATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
