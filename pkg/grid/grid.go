// Package grid 把搜索区域按网格划分，用于把定位范围缩小到某个格子
package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zoeyai/zoeylocator/pkg/target"
)

// Position 网格位置
type Position struct {
	Rows int `json:"rows"` // 总行数
	Cols int `json:"cols"` // 总列数
	Row  int `json:"row"`  // 目标行 (1-based)
	Col  int `json:"col"`  // 目标列 (1-based)
}

// Parse 解析网格位置字符串
// 格式: rows.cols.row.col (如 "2.2.1.1" 表示 2x2 网格的第1行第1列)
func Parse(s string) (*Position, error) {
	if s == "" {
		return nil, fmt.Errorf("网格位置字符串为空")
	}

	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return nil, fmt.Errorf("无效的网格位置格式: %s (期望格式: rows.cols.row.col)", s)
	}

	var v [4]int
	names := [4]string{"行数", "列数", "目标行", "目标列"}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("无效的%s: %s", names[i], p)
		}
		v[i] = n
	}

	pos := &Position{Rows: v[0], Cols: v[1], Row: v[2], Col: v[3]}
	if err := pos.Validate(); err != nil {
		return nil, err
	}
	return pos, nil
}

// Validate 检查行列范围
func (p *Position) Validate() error {
	if p.Rows < 1 || p.Cols < 1 {
		return fmt.Errorf("行数和列数必须大于 0: rows=%d, cols=%d", p.Rows, p.Cols)
	}
	if p.Row < 1 || p.Col < 1 {
		return fmt.Errorf("目标行和目标列必须大于 0: row=%d, col=%d", p.Row, p.Col)
	}
	if p.Row > p.Rows || p.Col > p.Cols {
		return fmt.Errorf("目标位置超出范围: row=%d > rows=%d 或 col=%d > cols=%d", p.Row, p.Rows, p.Col, p.Cols)
	}
	return nil
}

// String 格式化为 rows.cols.row.col
func (p *Position) String() string {
	return Format(p.Rows, p.Cols, p.Row, p.Col)
}

// Format 格式化网格位置为字符串
func Format(rows, cols, row, col int) string {
	return fmt.Sprintf("%d.%d.%d.%d", rows, cols, row, col)
}

// Cell 返回区域中该网格位置对应的格子
// 格子边界向下取整，最后一行/列延伸到区域边缘，保证格子铺满整个区域
func (p *Position) Cell(r target.Region) target.Region {
	cellWidth := float64(r.Width) / float64(p.Cols)
	cellHeight := float64(r.Height) / float64(p.Rows)

	left := int(float64(p.Col-1) * cellWidth)
	top := int(float64(p.Row-1) * cellHeight)
	right := int(float64(p.Col) * cellWidth)
	bottom := int(float64(p.Row) * cellHeight)
	if p.Col == p.Cols {
		right = r.Width
	}
	if p.Row == p.Rows {
		bottom = r.Height
	}

	return target.Region{
		Left:   r.Left + left,
		Top:    r.Top + top,
		Width:  right - left,
		Height: bottom - top,
	}
}

// Center 格子中心点的屏幕坐标，pos 为 nil 时返回区域中心
func Center(r target.Region, pos *Position) target.Point {
	if pos == nil {
		return target.Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
	}

	cellWidth := float64(r.Width) / float64(pos.Cols)
	cellHeight := float64(r.Height) / float64(pos.Rows)

	return target.Point{
		X: int(float64(r.Left) + (float64(pos.Col)-0.5)*cellWidth),
		Y: int(float64(r.Top) + (float64(pos.Row)-0.5)*cellHeight),
	}
}

// Cells 按行优先返回全部格子
func Cells(r target.Region, rows, cols int) []target.Region {
	if rows < 1 || cols < 1 {
		return nil
	}
	cells := make([]target.Region, 0, rows*cols)
	for row := 1; row <= rows; row++ {
		for col := 1; col <= cols; col++ {
			p := Position{Rows: rows, Cols: cols, Row: row, Col: col}
			cells = append(cells, p.Cell(r))
		}
	}
	return cells
}
