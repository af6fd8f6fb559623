package server

import "fmt"

// displayServerInfo prints the endpoints and protection settings at startup
func (s *Server) displayServerInfo(tlsEnabled bool) {
	scheme := "http"
	if tlsEnabled {
		scheme = "https"
	}
	fmt.Printf("SkillSync ranking service listening on %s://%s:%s (TLS mode: %s)\n", scheme, s.Host, s.Port, s.TLSConfig.Mode)

	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health       - Embedding model, classifier and certificate health")
	fmt.Println("  GET  /stats        - Rate limiting and ranking engine settings")
	fmt.Println("  POST /process_job  - Rank CVs against a job description")

	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: /process_job is publicly accessible!")
	}

	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
	}

	if s.RateLimiter != nil {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d, by IP: %t, by API key: %t)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity, s.RateLimit.ByIP, s.RateLimit.ByAPIKey)
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}

	if s.CertificateManager != nil && s.TLSConfig.AutoReload.Enabled {
		fmt.Println("TLS auto-reload: ENABLED")
	}
}
