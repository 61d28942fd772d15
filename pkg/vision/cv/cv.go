// Package cv 提供基于 gocv 的模板定位
//
// 匹配流程:
//   - 模板与截图转灰度，Canny 提取边缘
//   - 归一化平方差、归一化互相关、归一化相关系数三种方法分别在灰度图和边缘图上匹配
//   - 灰度得分与边缘得分同时达标且位置一致才算有效匹配
//   - 低边缘模板（纯色图标）允许仅凭高灰度得分回退匹配
//   - 前两名得分过于接近时拒绝返回，避免误点
//
// 基本用法:
//
//	tmpl, err := cv.LoadTemplate("img/submit.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pos, err := cv.ResolveTemplate(tmpl, capture, 0, 0)
//	if err != nil {
//	    fmt.Println("未找到:", target.ReasonOf(err))
//	}
package cv
