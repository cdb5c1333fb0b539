// Package config provides application configuration management from environment variables.
//
// A .env file in the working directory is loaded first when present. An
// optional YAML file named by STOREDASH_CONFIG_FILE may carry the payment
// instructions and the reviewer digest settings:
//
//	payment:
//	  ccp: "41545126 Clé 06"
//	  rip: "00799999004154512631"
//	  account_name: "Kerbadj Abdelbari"
//	  phone: "213698320894"
//	reviewer:
//	  schedule: "0 */2 * * *"
//	  recipients: ["billing@next-commerce.shop"]
//
// # Environment
//
// Server settings:
//
//	STOREDASH_PORT="8080"
//	STOREDASH_HEALTH_PORT="9090"
//	STOREDASH_CORS_ORIGINS="https://dashboard.next-commerce.shop"
//
// Storage settings:
//
//	STOREDASH_DATABASE_DRIVER="postgres"  # postgres, sqlite3
//	STOREDASH_DATABASE_URL="postgres://localhost/storedash?sslmode=disable"
//	STOREDASH_REDIS_URL="redis://localhost:6379/0"  # empty keeps checkout state in memory
//	STOREDASH_S3_BUCKET="storedash-proofs"
//	STOREDASH_S3_PUBLIC_BASE_URL="https://cdn.next-commerce.shop/proofs"
//
// Workflow settings:
//
//	STOREDASH_AUTH_MODE="oidc"  # oidc, header
//	STOREDASH_SUBMISSION_MODE="sql"  # sql, remote
//	STOREDASH_FREE_ORDER_LIMIT="150"
//	STOREDASH_MAX_PROOF_BYTES="10485760"
//
// Observability settings:
//
//	STOREDASH_LOG_LEVEL="info"  # debug, info, warn, error
//	STOREDASH_OTEL_ENABLED="true"
//	STOREDASH_OTEL_ENDPOINT="otel-collector:4317"
package config
