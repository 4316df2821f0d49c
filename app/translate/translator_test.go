package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("Expected POST /translate, got %s %s", r.Method, r.URL.Path)
		}

		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Format != "text" {
			t.Errorf("Expected format 'text', got %q", req.Format)
		}
		if req.Source != "en" || req.Target != "fr" {
			t.Errorf("Unexpected language pair %s -> %s", req.Source, req.Target)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(translateResponse{TranslatedText: "Bonjour le monde"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	translated, err := client.Translate(context.Background(), "Hello world", "en", "fr")
	if err != nil {
		t.Fatal(err)
	}
	if translated != "Bonjour le monde" {
		t.Errorf("Expected 'Bonjour le monde', got %q", translated)
	}
}

func TestClientTranslateMissingContentType(t *testing.T) {
	// A JSON body served without a Content-Type header must still parse.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		json.NewEncoder(w).Encode(translateResponse{TranslatedText: "Bonjour"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	translated, err := client.Translate(context.Background(), "Hello", "en", "fr")
	if err != nil {
		t.Fatal(err)
	}
	if translated != "Bonjour" {
		t.Errorf("Expected 'Bonjour', got %q", translated)
	}
}

func TestClientTranslateServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(translateResponse{Error: "unsupported language pair"})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Translate(context.Background(), "Hello", "en", "xx"); err == nil {
		t.Error("Expected error for service-reported failure")
	}
}

func TestClientTranslateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Translate(context.Background(), "Hello", "en", "fr"); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestClientTranslateEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(translateResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if _, err := client.Translate(context.Background(), "Hello", "en", "fr"); err == nil {
		t.Error("Expected error for empty translation")
	}
}
