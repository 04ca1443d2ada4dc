package main

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/config"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/docs"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/http/handler"
	"github.com/sara-zarrad/dopaflow-frontend-sub000/internal/observability/logger"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

func TestOpenAPIDriftCheck(t *testing.T) {
	r := buildRouter(RouterDeps{
		Cfg:            &config.Config{OTELServiceName: "test", AppEnv: "test"},
		Log:            logger.Nop(),
		BoardHandler:   &handler.BoardHandler{},
		SessionHandler: &handler.SessionHandler{},
	})

	doc, err := openapi3.NewLoader().LoadFromData(docs.GetSpecBytes())
	if err != nil {
		t.Fatalf("failed to load OpenAPI spec: %v", err)
	}

	documented := make(map[string]bool)
	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			documented[fmt.Sprintf("%s %s", strings.ToUpper(method), path)] = true
		}
	}

	implemented := make(map[string]bool)
	walk := func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		m := strings.ToUpper(method)
		if m != "GET" && m != "POST" && m != "PUT" && m != "PATCH" && m != "DELETE" {
			return nil
		}
		implemented[fmt.Sprintf("%s %s", m, normalizeChiPath(route))] = true
		return nil
	}
	if err := chi.Walk(r, walk); err != nil {
		t.Fatalf("failed to walk chi router: %v", err)
	}

	var undocumented, unrouted []string
	for route := range implemented {
		if !documented[route] {
			undocumented = append(undocumented, route)
		}
	}
	for route := range documented {
		if !implemented[route] {
			unrouted = append(unrouted, route)
		}
	}

	if len(undocumented) > 0 {
		sort.Strings(undocumented)
		t.Errorf("Drift detected! The following routes are implemented but NOT documented in OpenAPI:\n%s",
			strings.Join(undocumented, "\n"))
	}
	if len(unrouted) > 0 {
		sort.Strings(unrouted)
		t.Errorf("Drift detected! The following routes are documented but NOT implemented:\n%s",
			strings.Join(unrouted, "\n"))
	}
}

var chiParamRegex = regexp.MustCompile(`\{([^:]+):[^}]+\}`)

// normalizeChiPath removes regex from chi parameters and trailing slashes
func normalizeChiPath(path string) string {
	normalized := chiParamRegex.ReplaceAllString(path, "{$1}")
	if len(normalized) > 1 && strings.HasSuffix(normalized, "/") {
		normalized = normalized[:len(normalized)-1]
	}
	return normalized
}
