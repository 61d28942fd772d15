package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "ZOEY_LOCATOR_CAPTURE=screenshot\n" +
		"ZOEY_LOCATOR_OCR_ENGINE=tesseract\n" +
		"ZOEY_LOCATOR_TESS_LANG=eng,jpn\n" +
		"ZOEY_LOCATOR_SCALE=3\n" +
		"ZOEY_LOCATOR_TIMEOUT=750ms\n" +
		"UNRELATED=1\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	s := DefaultSettings()
	if err := LoadEnv(s, path); err != nil {
		t.Fatalf("LoadEnv 失败: %v", err)
	}

	if s.CaptureBackend != "screenshot" || s.OCREngine != EngineTesseract {
		t.Errorf("后端未覆盖: %+v", s)
	}
	if len(s.TesseractLanguages) != 2 || s.TesseractLanguages[1] != "jpn" {
		t.Errorf("TesseractLanguages = %v", s.TesseractLanguages)
	}
	if s.ScaleFactor != 3 || time.Duration(s.Timeout) != 750*time.Millisecond {
		t.Errorf("数值未覆盖: scale=%v timeout=%v", s.ScaleFactor, time.Duration(s.Timeout))
	}
}

func TestLoadEnvProcessOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ZOEY_LOCATOR_LOG_LEVEL=warn\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ZOEY_LOCATOR_LOG_LEVEL", "debug")

	s := DefaultSettings()
	if err := LoadEnv(s, path); err != nil {
		t.Fatalf("LoadEnv 失败: %v", err)
	}
	if s.LogLevel != "debug" {
		t.Errorf("进程环境变量应优先, LogLevel = %s", s.LogLevel)
	}
}

func TestLoadEnvMissingFileIgnored(t *testing.T) {
	s := DefaultSettings()
	if err := LoadEnv(s, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("文件不存在应忽略: %v", err)
	}
}

func TestLoadEnvInvalidValue(t *testing.T) {
	t.Setenv("ZOEY_LOCATOR_TIMEOUT", "soon")

	if err := LoadEnv(DefaultSettings()); err == nil {
		t.Error("无效时长应返回错误")
	}
}
