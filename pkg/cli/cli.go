package cli

import (
	"crypto/tls"
	"flag"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Config carries the parsed command-line configuration.
type Config struct {
	// Application flags
	Debug bool

	// Configuration flags
	ConfigPath string
	PolicyDir  string

	// Watcher flags
	EnableWatch          bool
	EnableLeaderElection bool
	LeaderElectID        string
	LeaderElectNamespace string
}

// Parse defines and parses the command-line flags. The pattern:
// flag.XxxVar(&variable, "flag-name", defaultValueOrEnvValue, "help text").
func Parse() *Config {
	config := &Config{}

	flag.BoolVar(&config.Debug, "debug", getEnvBool("PODSEC_DEBUG", false),
		"Enable debug level logging")

	flag.StringVar(&config.ConfigPath, "config-path", getEnvString("PODSEC_CONFIG_PATH", "./config.yaml"),
		"Path to the admission controller configuration file")
	flag.StringVar(&config.PolicyDir, "policy-dir", getEnvString("PODSEC_POLICY_DIR", ""),
		"Directory of PodSecurityPolicy YAML manifests loaded at startup; overrides the config file setting")

	flag.BoolVar(&config.EnableWatch, "enable-watch", getEnvBool("PODSEC_ENABLE_WATCH", true),
		"Watch in-cluster PodSecurityPolicy resources and reload the policy store on change")
	flag.BoolVar(&config.EnableLeaderElection, "enable-leader-election", getEnvBool("ENABLE_LEADER_ELECTION", false),
		"Enable leader election for the policy watcher when running multiple instances")
	flag.StringVar(&config.LeaderElectID, "leader-elect-id", getEnvString("LEADER_ELECT_ID", "podsec-admission.telekom.io"),
		"The ID used for leader election")
	flag.StringVar(&config.LeaderElectNamespace, "leader-elect-namespace", getEnvString("LEADER_ELECT_NAMESPACE", ""),
		"The namespace for the leader election lease; defaults to the pod's namespace")

	flag.Parse()

	return config
}

// Print logs the parsed configuration at startup.
func (c *Config) Print(log *zap.SugaredLogger) {
	log.Infow("CLI Configuration",
		"debug", c.Debug,
		"config_path", c.ConfigPath,
		"policy_dir", c.PolicyDir,
		"enable_watch", c.EnableWatch,
		"enable_leader_election", c.EnableLeaderElection,
		"leader_elect_id", c.LeaderElectID,
		"leader_elect_namespace", c.LeaderElectNamespace,
	)
}

// DisableHTTP2 configures TLS options to disable HTTP/2. HTTP/2 has known
// vulnerabilities (CVE-2023-44487, CVE-2024-3156).
func DisableHTTP2(c *tls.Config) {
	c.NextProtos = []string{"http/1.1"}
}

// getEnvString returns the value of an environment variable, or the provided default if not set.
func getEnvString(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvBool returns the value of an environment variable as a bool, or the
// provided default if not set. Valid true values are "true", "1", "yes"
// (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}
