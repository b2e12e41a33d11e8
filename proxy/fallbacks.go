package proxy

// DefaultFallbacks returns the fixed per-country endpoints appended to every
// harvest. They are tested like any other candidate.
func DefaultFallbacks() map[string][]string {
	return map[string][]string{
		"US": {"54.39.102.233:3128", "198.59.191.234:8080", "23.94.136.205:80"},
		"GB": {"51.158.154.173:3128", "178.62.92.133:8080"},
		"DE": {"88.198.50.103:8080", "138.201.125.229:8118"},
		"FR": {"51.15.242.202:8888", "163.172.36.211:16379"},
		"CA": {"142.93.145.18:3128", "159.203.61.169:3128"},
		"AU": {"103.152.112.162:80", "139.99.237.62:80"},
	}
}

// Countries returns the codes that have fallback endpoints.
func Countries() []string {
	return []string{"US", "GB", "DE", "FR", "CA", "AU"}
}
