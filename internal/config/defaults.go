package config

var defaults = map[string]any{
	"secret":      "",
	"log_level":   "info",
	"session_ttl": 12, // hours

	"allowed_networks": "",

	"passcodes": map[string]string{},

	"expiry_sweep_interval": 15, // minutes

	"support_url": DEFAULT_SUPPORT_URL,
	"base_url":    "/",

	"policy.policy_file": "",

	"email.host":     "host.docker.internal",
	"email.port":     25,
	"email.username": "",
	"email.password": "",
	"email.from":     "noreply@example.com",

	"storage.local.path": "./data/visitors.json",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
