package config

// EnvPrefix namespaces every storefront environment variable.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, docs).
const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvPort            = "STOREFRONT_APP_PORT"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvCommerceAPIURL  = "STOREFRONT_COMMERCE_API_URL"
	EnvCommerceChannel = "STOREFRONT_COMMERCE_CHANNEL"
	EnvPlanTTL         = "STOREFRONT_CHECKOUT_PLAN_TTL"
)
