package server

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/teranos/graphscope/am"
	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/logger"
)

// checkOrigin validates WebSocket origin against configured allowed origins
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Allow requests with no origin header (e.g., direct WebSocket clients, testing)
	if origin == "" {
		return true
	}

	// The page we served ourselves
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}

	allowed := s.cfg.AllowedOrigins
	if len(allowed) == 0 {
		allowed = am.DefaultConfig().Server.AllowedOrigins
	}
	// Prefix matching allows any port number
	for _, allowedOrigin := range allowed {
		if strings.HasPrefix(origin, allowedOrigin) {
			return true
		}
	}

	s.logger.Warnw("Rejected websocket origin", logger.FieldOrigin, origin)
	return false
}

// listenAvailable binds host:port, trying the next ten ports when it is taken.
// Port 0 lets the kernel pick.
func listenAvailable(host string, port int) (net.Listener, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err == nil || port == 0 {
		return l, err
	}
	first := err

	for i := 1; i <= 10; i++ {
		l, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port+i)))
		if err == nil {
			return l, nil
		}
	}

	return nil, errors.Wrapf(first, "no available ports found (tried %d-%d)", port, port+10)
}
