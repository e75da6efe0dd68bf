package config

import (
	"os"
	"strings"
)

// GatewayCredentials is the out-of-band auth configuration for one gateway.
type GatewayCredentials struct {
	APIKey      string
	Environment string // "sandbox" or "live"
}

// Env holds the infrastructure settings read from the environment.
type Env struct {
	StorePath   string // BoltDB file; empty selects the in-memory store
	KafkaBroker string // empty disables the Kafka event sink
	KafkaTopic  string
	Gateways    map[string]GatewayCredentials
}

// LoadEnv reads infrastructure configuration from environment variables.
// Gateway credentials follow GATEWAY_<ID>_API_KEY / GATEWAY_<ID>_ENV.
func LoadEnv(gatewayIDs []string) *Env {
	env := &Env{
		StorePath:   os.Getenv("PAYMENT_STORE_PATH"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  os.Getenv("KAFKA_TOPIC"),
		Gateways:    make(map[string]GatewayCredentials),
	}
	if env.KafkaTopic == "" {
		env.KafkaTopic = "payment-events"
	}
	for _, id := range gatewayIDs {
		prefix := "GATEWAY_" + strings.ToUpper(id) + "_"
		creds := GatewayCredentials{
			APIKey:      os.Getenv(prefix + "API_KEY"),
			Environment: os.Getenv(prefix + "ENV"),
		}
		if creds.Environment == "" {
			creds.Environment = "sandbox"
		}
		env.Gateways[id] = creds
	}
	return env
}
