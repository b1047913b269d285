package metrics

const defaultNamespace = "battdiag"

type Config struct {
	Enabled   bool
	Namespace string
}

func DefaultConfig() Config {
	return Config{
		Enabled:   false, // Disabled by default
		Namespace: defaultNamespace,
	}
}
