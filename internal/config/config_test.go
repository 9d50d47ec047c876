package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "PORT", "ALLOWED_ORIGINS",
		"FIREBASE_STORAGE_BUCKET", "REDIS_ADDR", "REDIS_DB", "KAKAO_REST_API_KEY",
		"KAKAO_TOKEN_URL", "KAKAO_USERINFO_URL", "TIME_ZONE",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.StorageBucket != "" {
		t.Errorf("StorageBucket = %q, want empty without project", cfg.StorageBucket)
	}
	if cfg.TimeZone != "Asia/Seoul" {
		t.Errorf("TimeZone = %q, want Asia/Seoul", cfg.TimeZone)
	}
	if cfg.Kakao.Enabled() {
		t.Error("kakao should be disabled without a REST API key")
	}
	if cfg.Kakao.TokenURL != "https://kauth.kakao.com/oauth/token" {
		t.Errorf("TokenURL = %q", cfg.Kakao.TokenURL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "town-board")
	t.Setenv("FIREBASE_STORAGE_BUCKET", "")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("KAKAO_REST_API_KEY", "rest-key")

	cfg := Load()
	if cfg.ProjectID != "town-board" {
		t.Errorf("ProjectID = %q", cfg.ProjectID)
	}
	if cfg.StorageBucket != "town-board.appspot.com" {
		t.Errorf("StorageBucket = %q", cfg.StorageBucket)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want 0 on parse failure", cfg.RedisDB)
	}
	if !cfg.Kakao.Enabled() {
		t.Error("kakao should be enabled")
	}
}
