// Copyright (c) 2026 HS Architects
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRateLimit(t *testing.T) {
	next, _ := okHandler()
	handler := RateLimit(3, time.Minute)(next)

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	for i := range 3 {
		if rr := do("203.0.113.5:1234"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, rr.Code)
		}
	}

	rr := do("203.0.113.5:9999")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("4th request: got %d, want 429", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error"`) {
		t.Errorf("expected JSON error body, got %q", rr.Body.String())
	}

	// A different client keeps its own budget.
	if rr := do("198.51.100.7:1234"); rr.Code != http.StatusOK {
		t.Errorf("other client: got %d, want 200", rr.Code)
	}
}
