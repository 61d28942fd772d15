package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "ZOEY_LOCATOR_"

// LoadEnv 读取 .env 文件和进程环境变量覆盖配置，进程环境变量优先
// 文件不存在时忽略
func LoadEnv(s *Settings, files ...string) error {
	values := map[string]string{}

	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		m, err := godotenv.Read(f)
		if err != nil {
			return fmt.Errorf("读取 %s 失败: %w", f, err)
		}
		for k, v := range m {
			values[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, EnvPrefix) {
			values[k] = v
		}
	}

	return applyEnv(s, values)
}

func applyEnv(s *Settings, values map[string]string) error {
	get := func(key string) (string, bool) {
		v, ok := values[EnvPrefix+key]
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("CAPTURE"); ok {
		s.CaptureBackend = v
	}
	if v, ok := get("OCR_ENGINE"); ok {
		s.OCREngine = v
	}
	if v, ok := get("ONNXRUNTIME"); ok {
		s.OCR.OnnxRuntimeLibPath = v
	}
	if v, ok := get("DET_MODEL"); ok {
		s.OCR.DetModelPath = v
	}
	if v, ok := get("REC_MODEL"); ok {
		s.OCR.RecModelPath = v
	}
	if v, ok := get("DICT"); ok {
		s.OCR.DictPath = v
	}
	if v, ok := get("TESS_LANG"); ok {
		s.TesseractLanguages = strings.Split(v, ",")
	}
	if v, ok := get("LOG_LEVEL"); ok {
		s.LogLevel = v
	}
	if v, ok := get("LOG_FILE"); ok {
		s.LogFile = v
	}

	if v, ok := get("SCALE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sSCALE 无效: %w", EnvPrefix, err)
		}
		s.ScaleFactor = f
	}
	if v, ok := get("CV_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sCV_THRESHOLD 无效: %w", EnvPrefix, err)
		}
		s.RawThreshold = f
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT 无效: %w", EnvPrefix, err)
		}
		s.Timeout = Duration(d)
	}
	if v, ok := get("POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sPOLL_INTERVAL 无效: %w", EnvPrefix, err)
		}
		s.PollInterval = Duration(d)
	}
	return nil
}
