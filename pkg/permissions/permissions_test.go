package permissions

import (
	"runtime"
	"testing"
)

func TestInstructions(t *testing.T) {
	if runtime.GOOS != "darwin" {
		if !CanCapture() {
			t.Error("非 macOS 系统应始终可以截屏")
		}
		if Instructions() != "" {
			t.Error("权限齐全时提示应为空")
		}
		return
	}

	if ok := CanCapture(); ok != (Instructions() == "") {
		t.Errorf("CanCapture=%v 与提示不一致: %q", ok, Instructions())
	}
}
