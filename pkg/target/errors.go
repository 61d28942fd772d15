package target

import (
	"context"
	"errors"
	"fmt"
)

// Reason 未找到目标的原因
type Reason int

const (
	// ReasonNone 成功
	ReasonNone Reason = iota
	// ReasonTemplateTooLarge 模板尺寸大于截图
	ReasonTemplateTooLarge
	// ReasonInvalidMask 掩码尺寸不符或全零
	ReasonInvalidMask
	// ReasonNoConfidentMatch 没有足够置信的匹配
	ReasonNoConfidentMatch
	// ReasonAmbiguousMatch 多个匹配得分过于接近
	ReasonAmbiguousMatch
	// ReasonTimeout 超时仍未稳定
	ReasonTimeout
	// ReasonNoOcrMatch OCR 结果中没有目标文字
	ReasonNoOcrMatch
	// ReasonCollaboratorFailure 截图、OCR 或解码失败
	ReasonCollaboratorFailure
	// ReasonCanceled 调用方取消
	ReasonCanceled
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTemplateTooLarge:
		return "template-too-large"
	case ReasonInvalidMask:
		return "invalid-mask"
	case ReasonNoConfidentMatch:
		return "no-confident-match"
	case ReasonAmbiguousMatch:
		return "ambiguous"
	case ReasonTimeout:
		return "timeout"
	case ReasonNoOcrMatch:
		return "no-ocr-match"
	case ReasonCollaboratorFailure:
		return "collaborator-failure"
	case ReasonCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// NotFoundError 未找到目标
type NotFoundError struct {
	Reason Reason
	Detail string
}

func (e *NotFoundError) Error() string {
	if e.Detail == "" {
		return "未找到目标: " + e.Reason.String()
	}
	return fmt.Sprintf("未找到目标: %s: %s", e.Reason, e.Detail)
}

// Is 按原因比较，支持 errors.Is(err, ErrAmbiguousMatch)
func (e *NotFoundError) Is(target error) bool {
	var t *NotFoundError
	if errors.As(target, &t) {
		return t.Reason == e.Reason
	}
	return false
}

// 各原因的哨兵错误
var (
	ErrTemplateTooLarge = &NotFoundError{Reason: ReasonTemplateTooLarge}
	ErrInvalidMask      = &NotFoundError{Reason: ReasonInvalidMask}
	ErrNoConfidentMatch = &NotFoundError{Reason: ReasonNoConfidentMatch}
	ErrAmbiguousMatch   = &NotFoundError{Reason: ReasonAmbiguousMatch}
	ErrTimeout          = &NotFoundError{Reason: ReasonTimeout}
	ErrNoOcrMatch       = &NotFoundError{Reason: ReasonNoOcrMatch}
)

// NotFound 创建带详情的未找到错误
func NotFound(reason Reason, format string, args ...interface{}) error {
	return &NotFoundError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// CollaboratorError 截图、OCR、图像解码等外部协作者失败
// 该错误会中止本次定位，不在轮询中重试
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s失败: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Collaborator 包装协作者错误，err 为 nil 时返回 nil
func Collaborator(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return err
	}
	return &CollaboratorError{Op: op, Err: err}
}

// IsCollaboratorFailure 是否为协作者失败
func IsCollaboratorFailure(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}

// ReasonOf 返回错误对应的原因标签
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Reason
	}
	if IsCollaboratorFailure(err) {
		return ReasonCollaboratorFailure
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonCanceled
	}
	return ReasonCollaboratorFailure
}
