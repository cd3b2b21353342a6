// Package config loads service settings from the environment with cleanenv.
//
// An optional .env file is read first with godotenv, so values already set
// in the environment win. Durations are ISO 8601 strings ("PT1H", "P7D")
// parsed with sosodev/duration.
//
// Example .env:
//
//	STORE_BACKEND=postgres
//	INSPECTION_PG_HOST=localhost
//	KV_BACKEND=redis
//	REDIS_ADDR=localhost:6379
//	EMAIL_DELIVERY=smtp
//	EMAIL_HOST=localhost
//	EMAIL_PORT=1025
//	FRONTEND_URL=https://app.example.com
//	SESSION_TTL=P7D
//	TRUST_PROXY_HEADERS=false
package config
