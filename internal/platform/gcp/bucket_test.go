package gcp

import "testing"

func TestResolvePublicBaseURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  BucketConfig
		want string
	}{
		{"gcs default", BucketConfig{}, ""},
		{"emulator fallback", BucketConfig{EmulatorHost: "http://fake-gcs:4443/"}, "http://fake-gcs:4443"},
		{"override", BucketConfig{EmulatorHost: "http://fake-gcs:4443", PublicBaseURL: "http://localhost:4443/"}, "http://localhost:4443"},
	}
	for _, tc := range cases {
		got, err := resolvePublicBaseURL(tc.cfg)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got=%q want=%q", tc.name, got, tc.want)
		}
	}
}

func TestResolvePublicBaseURLRejectsRelative(t *testing.T) {
	if _, err := resolvePublicBaseURL(BucketConfig{PublicBaseURL: "localhost:4443"}); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}

func TestPublicObjectURL(t *testing.T) {
	cases := []struct {
		cdn, base, want string
	}{
		{"", "", "https://storage.googleapis.com/ehon/books/Ehon-00001/page-1.png"},
		{"cdn.example.com", "", "https://cdn.example.com/books/Ehon-00001/page-1.png"},
		{"", "http://localhost:4443", "http://localhost:4443/ehon/books/Ehon-00001/page-1.png"},
	}
	for _, tc := range cases {
		got := publicObjectURL("ehon", tc.cdn, tc.base, "/books/Ehon-00001/page-1.png")
		if got != tc.want {
			t.Fatalf("got=%q want=%q", got, tc.want)
		}
	}
}

func TestClientOptions(t *testing.T) {
	if got := ClientOptions(Credentials{}); len(got) != 0 {
		t.Fatalf("empty creds: got=%d options want=0", len(got))
	}
	if got := ClientOptions(Credentials{JSON: `{"type":"service_account"}`}); len(got) != 1 {
		t.Fatalf("json creds: got=%d options want=1", len(got))
	}
	if got := ClientOptions(Credentials{File: "/tmp/sa.json"}); len(got) != 1 {
		t.Fatalf("file creds: got=%d options want=1", len(got))
	}
}

func TestCellString(t *testing.T) {
	if got := cellString(nil); got != "" {
		t.Fatalf("nil: got=%q", got)
	}
	if got := cellString(float64(3)); got != "3" {
		t.Fatalf("number: got=%q want=3", got)
	}
}
