package parser

import (
	"testing"
)

func TestParseServerVersion(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"postgres", "PostgreSQL 16.2 on x86_64-pc-linux-gnu, compiled by gcc", "16.2.0", false},
		{"edb", "PostgreSQL 15.4 (EnterpriseDB Advanced Server 15.4.1)", "15.4.0", false},
		{"mysql", "8.0.36-0ubuntu0.22.04.1", "8.0.36", false},
		{"major only", "PostgreSQL 17", "17.0.0", false},
		{"no number", "unknown", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseServerVersion(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseServerVersion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if v.String() != tt.want {
				t.Errorf("ParseServerVersion() = %s, want %s", v.String(), tt.want)
			}
		})
	}
}

func TestMeetsMinimum(t *testing.T) {
	tests := []struct {
		server string
		min    string
		want   bool
	}{
		{"PostgreSQL 16.2 on x86_64", "", true},
		{"PostgreSQL 16.2 on x86_64", "12", true},
		{"PostgreSQL 11.9 on x86_64", "12", false},
		{"PostgreSQL 12.0 on x86_64", "12.0", true},
	}

	for _, tt := range tests {
		got, err := MeetsMinimum(tt.server, tt.min)
		if err != nil {
			t.Fatalf("MeetsMinimum(%q, %q) error: %v", tt.server, tt.min, err)
		}
		if got != tt.want {
			t.Errorf("MeetsMinimum(%q, %q) = %v, want %v", tt.server, tt.min, got, tt.want)
		}
	}

	if _, err := MeetsMinimum("no digits", "12"); err == nil {
		t.Error("expected error for unparseable server version")
	}
}
