package config

import "testing"

func TestLoadIncludesSearchDefaults(t *testing.T) {
	t.Setenv("SEARCH_TEXT_THRESHOLD", "")
	t.Setenv("SEARCH_IMAGE_THRESHOLD", "")
	t.Setenv("SEARCH_VIDEO_THRESHOLD", "")
	t.Setenv("FIRESTORE_TEXT_COLLECTION", "")
	t.Setenv("FIRESTORE_IMAGE_COLLECTION", "")
	t.Setenv("FIRESTORE_VIDEO_COLLECTION", "")

	cfg := Load()
	if cfg.TextThreshold != 0.05 {
		t.Fatalf("expected default text threshold 0.05, got %v", cfg.TextThreshold)
	}
	if cfg.ImageThreshold != 0.01 {
		t.Fatalf("expected default image threshold 0.01, got %v", cfg.ImageThreshold)
	}
	if cfg.VideoThreshold != 0.001 {
		t.Fatalf("expected default video threshold 0.001, got %v", cfg.VideoThreshold)
	}
	if cfg.TextCollection != "pdf_text" {
		t.Fatalf("expected default text collection pdf_text, got %q", cfg.TextCollection)
	}
	if cfg.ImageCollection != "pdf_images_new" {
		t.Fatalf("expected default image collection pdf_images_new, got %q", cfg.ImageCollection)
	}
	if cfg.VideoCollection != "videos" {
		t.Fatalf("expected default video collection videos, got %q", cfg.VideoCollection)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SEARCH_TEXT_THRESHOLD", "0.1")
	t.Setenv("STORAGE_BACKEND", "minio")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("API_RATE_LIMIT_RPS", "25")

	cfg := Load()
	if cfg.TextThreshold != 0.1 {
		t.Fatalf("expected text threshold override 0.1, got %v", cfg.TextThreshold)
	}
	if cfg.StorageBackend != "minio" {
		t.Fatalf("expected storage backend minio, got %q", cfg.StorageBackend)
	}
	if !cfg.MinioUseSSL {
		t.Fatalf("expected minio ssl enabled")
	}
	if cfg.APIRateLimitRPS != 25 {
		t.Fatalf("expected rate limit rps 25, got %d", cfg.APIRateLimitRPS)
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("SEARCH_TEXT_THRESHOLD", "not-a-number")
	t.Setenv("API_MAX_CONCURRENT", "lots")

	cfg := Load()
	if cfg.TextThreshold != 0.05 {
		t.Fatalf("expected fallback threshold 0.05, got %v", cfg.TextThreshold)
	}
	if cfg.APIMaxConcurrent != 64 {
		t.Fatalf("expected fallback max concurrent 64, got %d", cfg.APIMaxConcurrent)
	}
}
