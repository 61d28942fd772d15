package main

import (
	"errors"
	"testing"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

func TestParseRegion(t *testing.T) {
	r, err := parseRegion(" 10, 20,300,200 ")
	if err != nil {
		t.Fatalf("parseRegion 失败: %v", err)
	}
	if *r != (target.Region{Left: 10, Top: 20, Width: 300, Height: 200}) {
		t.Errorf("parseRegion = %+v", *r)
	}

	if r, err := parseRegion(""); r != nil || err != nil {
		t.Errorf("空字符串应表示全屏, got %v, %v", r, err)
	}

	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,0,10"} {
		if _, err := parseRegion(bad); err == nil {
			t.Errorf("parseRegion(%q) 应返回错误", bad)
		}
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != exitOK {
		t.Error("成功应返回 0")
	}
	if exitCode(target.ErrAmbiguousMatch) != exitNotFound {
		t.Error("未找到应返回 2")
	}
	if exitCode(target.Collaborator("OCR", errors.New("x"))) != exitNotFound {
		t.Error("协作方错误也应返回 2")
	}
}

func TestGridRegion(t *testing.T) {
	base := &target.Region{Left: 100, Top: 0, Width: 400, Height: 300}
	r, err := gridRegion(base, "2.2.2.1")
	if err != nil {
		t.Fatalf("gridRegion 失败: %v", err)
	}
	if *r != (target.Region{Left: 100, Top: 150, Width: 200, Height: 150}) {
		t.Errorf("gridRegion = %+v", *r)
	}

	if _, err := gridRegion(base, "2.2.3.1"); err == nil {
		t.Error("超出范围的网格位置应返回错误")
	}
}
