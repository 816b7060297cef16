package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestHTTPStrategyFetch(t *testing.T) {
	t.Parallel()

	t.Run("direct request returns body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html>page</html>"))
		}))
		defer srv.Close()

		s := NewHTTPStrategy(srv.Client(), WithProxyPrefixes([]string{""}))
		got, err := s.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "<html>page</html>" {
			t.Errorf("unexpected body %q", got)
		}
	})

	t.Run("proxy prefix gets the escaped link", func(t *testing.T) {
		t.Parallel()

		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Write([]byte("relayed"))
		}))
		defer srv.Close()

		link := "https://target.example/page?a=1&b=2"
		s := NewHTTPStrategy(srv.Client(), WithProxyPrefixes([]string{srv.URL + "/raw?url="}))
		got, err := s.Fetch(context.Background(), link)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "relayed" {
			t.Errorf("unexpected body %q", got)
		}
		if want := "url=" + url.QueryEscape(link); gotQuery != want {
			t.Errorf("expected query %q, got %q", want, gotQuery)
		}
	})

	t.Run("falls through failing proxies to direct", func(t *testing.T) {
		t.Parallel()

		badProxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer badProxy.Close()

		target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("direct wins"))
		}))
		defer target.Close()

		s := NewHTTPStrategy(http.DefaultClient, WithProxyPrefixes([]string{badProxy.URL + "/?", ""}))
		got, err := s.Fetch(context.Background(), target.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "direct wins" {
			t.Errorf("unexpected body %q", got)
		}
	})

	t.Run("all attempts fail", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		s := NewHTTPStrategy(srv.Client(), WithProxyPrefixes([]string{""}))
		if _, err := s.Fetch(context.Background(), srv.URL); err == nil {
			t.Error("expected error when every attempt fails")
		}
	})

	t.Run("body is limited", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(strings.Repeat("x", 100)))
		}))
		defer srv.Close()

		s := NewHTTPStrategy(srv.Client(),
			WithProxyPrefixes([]string{""}), WithMaxBodySize(10))
		got, err := s.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 10 {
			t.Errorf("expected 10 bytes, got %d", len(got))
		}
	})

	t.Run("sends configured user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Write([]byte("ok"))
		}))
		defer srv.Close()

		s := NewHTTPStrategy(srv.Client(),
			WithProxyPrefixes([]string{""}), WithUserAgent("custom/9"))
		if _, err := s.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotUA != "custom/9" {
			t.Errorf("expected custom user agent, got %q", gotUA)
		}
	})
}

func TestHTTPStrategyName(t *testing.T) {
	t.Parallel()

	if got := NewHTTPStrategy(http.DefaultClient).Name(); got != "direct" {
		t.Errorf("unexpected name %q", got)
	}
}
