// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

package shortlink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestShorten(t *testing.T) {
	var gotKey, gotLink string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/easy_api" {
			t.Errorf("path = %q, want /easy_api", r.URL.Path)
		}
		gotKey = r.URL.Query().Get("key")
		gotLink = r.URL.Query().Get("link")
		w.Write([]byte("https://sho.rt/abc123\n"))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{
		Host:   server.URL,
		APIKey: "test-key",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	short, err := client.Shorten(context.Background(), "https://files.example.com/abcdef42")
	if err != nil {
		t.Fatalf("Shorten: %v", err)
	}
	if short != "https://sho.rt/abc123" {
		t.Errorf("short = %q", short)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q, want test-key", gotKey)
	}
	if gotLink != "https://files.example.com/abcdef42" {
		t.Errorf("link = %q", gotLink)
	}
}

func TestShortenServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{Host: server.URL, APIKey: "wrong"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Shorten(context.Background(), "https://example.com/x")
	if err == nil {
		t.Fatal("expected error from non-200 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error %q does not mention the status", err)
	}
}

func TestShortenRejectsNonURLBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("error: quota exceeded"))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{Host: server.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Shorten(context.Background(), "https://example.com/x"); err == nil {
		t.Fatal("expected error for non-URL body")
	}
}

func TestShortenRejectsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  \n"))
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{Host: server.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Shorten(context.Background(), "https://example.com/x"); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(ClientConfig{APIKey: "k"}); err == nil {
		t.Error("missing Host should fail")
	}
	if _, err := NewClient(ClientConfig{Host: "sho.rt"}); err == nil {
		t.Error("missing APIKey should fail")
	}
}

func TestBareHostDefaultsToHTTPS(t *testing.T) {
	client, err := NewClient(ClientConfig{Host: "sho.rt", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if client.baseURL != "https://sho.rt" {
		t.Errorf("baseURL = %q, want https://sho.rt", client.baseURL)
	}
}
