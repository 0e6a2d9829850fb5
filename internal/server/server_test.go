package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danmuck/bitsctl/internal/config"
	"github.com/danmuck/bitsctl/internal/inspect"
	"github.com/danmuck/bitsctl/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) *Server {
	t.Helper()
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	cfg := config.DefaultServerConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s := New(cfg, zerolog.Nop())
	s.RegisterRoutes()
	return s
}

func post(s *Server, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/decode", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	return rr
}

func TestDecodeJSONBody(t *testing.T) {
	s := newTestServer(t, nil)
	rr := post(s, "application/json", `{"hex": "38006F45291200"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var body decodeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.VersionSum != 9 || body.Packets != 3 || body.Depth != 1 || body.Bits != 56 || body.TrailingBits != 7 {
		t.Fatalf("unexpected aggregates: %+v", body)
	}
	if body.Tree.Kind != "operator" || body.Tree.LengthMode != "total_bits" || len(body.Tree.Children) != 2 {
		t.Fatalf("unexpected tree: %+v", body.Tree)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
	testlog.Logf("server/http: POST /v1/decode status=%d sum=%d", rr.Code, body.VersionSum)
}

func TestDecodePlainTextBody(t *testing.T) {
	s := newTestServer(t, nil)
	rr := post(s, "text/plain", "A0016C880162017C3686B18A3D4780\n")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var body decodeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.VersionSum != 31 {
		t.Fatalf("version sum: got %d", body.VersionSum)
	}
}

func TestDecodeErrorStatuses(t *testing.T) {
	s := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.MaxBodyBytes = 64
		cfg.Decoder.MaxHexChars = 40
	})
	cases := []struct {
		name        string
		contentType string
		body        string
		status      int
		kind        string
	}{
		{"bad json", "application/json", `{"hex":`, http.StatusBadRequest, ""},
		{"missing hex", "application/json", `{}`, http.StatusBadRequest, ""},
		{"invalid hex", "text/plain", "ZZ", http.StatusBadRequest, inspect.KindInvalidHex},
		{"empty", "text/plain", "  ", http.StatusBadRequest, inspect.KindEmpty},
		{"unterminated", "application/json", `{"hex":"D2FE"}`, http.StatusUnprocessableEntity, inspect.KindUnterminated},
		{"malformed", "text/plain", "38006F45", http.StatusUnprocessableEntity, inspect.KindMalformed},
		{"too many chars", "text/plain", strings.Repeat("0", 41), http.StatusRequestEntityTooLarge, inspect.KindTooLarge},
		{"body too large", "text/plain", strings.Repeat("0", 65), http.StatusRequestEntityTooLarge, ""},
	}
	for _, tc := range cases {
		rr := post(s, tc.contentType, tc.body)
		if rr.Code != tc.status {
			t.Fatalf("%s: expected status %d, got %d body=%s", tc.name, tc.status, rr.Code, rr.Body.String())
		}
		var body map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode body: %v", tc.name, err)
		}
		if body["error"] == nil {
			t.Fatalf("%s: expected error message, got %v", tc.name, body)
		}
		if tc.kind != "" && body["kind"] != tc.kind {
			t.Fatalf("%s: expected kind %s, got %v", tc.name, tc.kind, body["kind"])
		}
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rr.Code)
	}
	var health map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" || health["service"] != "bitsd" {
		t.Fatalf("unexpected health body: %v", health)
	}

	post(s, "text/plain", "D2FE28")
	rr = httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "bits_decode_total") {
		t.Fatalf("expected decode counter in metrics output")
	}
	testlog.Logf("server/http: GET /metrics bytes=%d", rr.Body.Len())
}
