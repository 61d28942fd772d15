//go:build !darwin

// Package permissions 检查截屏所需的系统权限
package permissions

// CanCapture 非 macOS 系统不需要特殊权限
func CanCapture() bool {
	return true
}

// OpenScreenRecordingSettings 非 macOS 系统无操作
func OpenScreenRecordingSettings() {}
