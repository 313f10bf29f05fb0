package handler

import (
	"net"
	"strings"
)

// isAllowedOrigin reports whether a browser origin may open a playback
// socket. An empty allow list admits everyone, and requests without an Origin
// header come from non-browser clients and are admitted as well.
func isAllowedOrigin(origin string, allowed []string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}

	normalized := strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://")
	normalized = strings.TrimSuffix(normalized, "/")

	if isLoopbackHost(normalized) {
		return true
	}

	for _, entry := range allowed {
		candidate := strings.TrimSpace(entry)
		if candidate == "" {
			continue
		}
		if candidate == origin || candidate == normalized {
			return true
		}
		if strings.TrimPrefix(candidate, "http://") == normalized || strings.TrimPrefix(candidate, "https://") == normalized {
			return true
		}
	}

	return false
}

// isLoopbackHost matches localhost or 127.0.0.1 exactly, with an optional port.
func isLoopbackHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	return host == "localhost" || host == "127.0.0.1"
}
