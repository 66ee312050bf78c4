package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/telekom/k8s-podsec-admission/pkg/audit"
)

// Server configures the HTTP listener serving the review endpoint.
type Server struct {
	ListenAddress string `yaml:"listenAddress"`
	TLSCertFile   string `yaml:"tlsCertFile"`
	TLSKeyFile    string `yaml:"tlsKeyFile"`
	// TrustedProxies are IPs/CIDRs trusted for X-Forwarded-For headers.
	TrustedProxies []string `yaml:"trustedProxies"`
}

// Policies configures where policy definitions come from.
type Policies struct {
	// Dir is an optional directory of YAML policy manifests loaded at
	// startup. When Watch is enabled the in-cluster PodSecurityPolicy
	// resources replace the file set on every change.
	Dir string `yaml:"dir"`
	// Watch enables the PodSecurityPolicy reconciler.
	Watch bool `yaml:"watch"`
}

// Audit configures the decision audit trail.
type Audit struct {
	// Log enables the structured-log sink. Default true.
	Log *bool `yaml:"log"`
	// Kafka, when set, enables the Kafka sink.
	Kafka *audit.KafkaSinkConfig `yaml:"kafka"`
}

// Config is the file-based configuration of the admission controller.
type Config struct {
	Server   Server   `yaml:"server"`
	Policies Policies `yaml:"policies"`
	Audit    Audit    `yaml:"audit"`
}

// Load reads the configuration from path. An empty path defaults to
// "./config.yaml".
func Load(path string) (Config, error) {
	if path == "" {
		path = "./config.yaml"
	}

	var config Config
	content, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("trying to open config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("error unmarshaling YAML %s: %w", path, err)
	}
	return config, nil
}

// Defaults fills unset fields with their defaults.
func (c *Config) Defaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = "0.0.0.0:9443"
	}
	if c.Audit.Log == nil {
		enabled := true
		c.Audit.Log = &enabled
	}
}

// AuditLogEnabled reports whether the log sink is on.
func (c *Config) AuditLogEnabled() bool {
	return c.Audit.Log == nil || *c.Audit.Log
}
