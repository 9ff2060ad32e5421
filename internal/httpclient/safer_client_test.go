package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teranos/graphscope/errors"
)

func TestValidateURL(t *testing.T) {
	client := NewSaferClient(30*time.Second, Options{})

	tests := []struct {
		name        string
		url         string
		shouldErr   bool
		errContains string
	}{
		{"https", "https://example.com/edges.csv", false, ""},
		{"http", "http://example.com", false, ""},
		{"file scheme", "file:///etc/passwd", true, "scheme"},
		{"ftp scheme", "ftp://example.com/edges.csv", true, "scheme"},
		{"localhost", "http://localhost:8080/", true, "localhost"},
		{"localhost subdomain", "http://admin.localhost/", true, "localhost"},
		{"loopback", "http://127.0.0.1/", true, "private IP"},
		{"private network", "http://192.168.1.10/", true, "private IP"},
		{"metadata service", "http://169.254.169.254/latest/", true, "private IP"},
		{"ipv6 loopback", "http://[::1]/", true, "private IP"},
		{"credentials", "http://evil.com@localhost/", true, "credentials"},
		{"no host", "http:///edges.csv", true, "hostname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ValidateURL(tt.url)
			if tt.shouldErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.url)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got: %v", tt.errContains, err)
				}
				if !errors.Is(err, ErrBlocked) {
					t.Errorf("expected ErrBlocked mark, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateURL_AllowPrivate(t *testing.T) {
	client := NewSaferClient(time.Second, Options{AllowPrivate: true})
	if _, err := client.ValidateURL("http://127.0.0.1:9000/edges.csv"); err != nil {
		t.Errorf("private address should be allowed: %v", err)
	}
	if _, err := client.ValidateURL("file:///etc/passwd"); err == nil {
		t.Error("scheme check applies even when private addresses are allowed")
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip        string
		isPrivate bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"192.168.255.255", true},
		{"127.0.0.1", true},
		{"169.254.169.254", true},
		{"0.0.0.0", true},
		{"224.0.0.1", true},
		{"240.0.0.1", true},
		{"8.8.8.8", false},
		{"93.184.216.34", false},
		{"::1", true},
		{"fe80::1", true},
		{"fc00::1", true},
		{"fec0::1", true},
		{"2001:db8::1", true},
		{"::ffff:10.0.0.1", true},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("failed to parse IP: %s", tt.ip)
			}
			if got := isPrivateIP(ip); got != tt.isPrivate {
				t.Errorf("isPrivateIP(%s) = %v, expected %v", tt.ip, got, tt.isPrivate)
			}
		})
	}
}

func TestIsLocalhost(t *testing.T) {
	tests := map[string]bool{
		"localhost":             true,
		"LOCALHOST":             true,
		"localhost.localdomain": true,
		"admin.localhost":       true,
		"example.com":           false,
		"local.host":            false,
	}
	for hostname, expected := range tests {
		if got := isLocalhost(hostname); got != expected {
			t.Errorf("isLocalhost(%q) = %v, expected %v", hostname, got, expected)
		}
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/edges.csv":
			w.Write([]byte("from,to\n1,2\n"))
		case "/big.csv":
			w.Write([]byte(strings.Repeat("x", 64)))
		case "/loop":
			http.Redirect(w, r, "/loop", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	client := NewSaferClient(5*time.Second, Options{AllowPrivate: true, MaxBytes: 32, MaxRedirects: 3})

	body, err := client.Fetch(ctx, srv.URL+"/edges.csv")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != "from,to\n1,2\n" {
		t.Errorf("unexpected body %q", body)
	}

	if _, err := client.Fetch(ctx, srv.URL+"/missing.csv"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got: %v", err)
	}
	if _, err := client.Fetch(ctx, srv.URL+"/big.csv"); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("expected size error, got: %v", err)
	}
	if _, err := client.Fetch(ctx, srv.URL+"/loop"); err == nil || !strings.Contains(err.Error(), "stopped after 3 redirects") {
		t.Errorf("expected redirect limit error, got: %v", err)
	}
}

func TestFetch_BlocksPrivateTargets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secret"))
	}))
	defer srv.Close()

	client := NewSaferClient(5*time.Second, Options{})
	_, err := client.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected loopback test server to be blocked")
	}
	if !errors.Is(err, ErrBlocked) {
		t.Errorf("expected ErrBlocked, got: %v", err)
	}
}
