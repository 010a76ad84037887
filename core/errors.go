package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message），Code 会原样透传给调用方
//   - 支持错误检查函数（IsXXX）以及 errors.Is / errors.As
//
// 使用场景：
//   - Artifact 错误：ARTIFACT_NOT_FOUND
//   - 查询错误：PRODUCT_NOT_FOUND, INVALID_INPUT, NO_MATCH
//   - Store 错误：NOT_FOUND
type DomainError struct {
	Code    string // 错误代码（如 "PRODUCT_NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "artifact", "recall", "catalog"）
	Cause   error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is 让 errors.Is 按 Code 比较，Module 为空的 target 匹配任意模块。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Module != "" && t.Module != e.Module {
		return false
	}
	return t.Code == e.Code
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层错误的领域错误
func WrapDomainError(module, code, message string, cause error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// 错误代码常量
const (
	ErrorCodeArtifactNotFound = "ARTIFACT_NOT_FOUND" // 产物文件缺失
	ErrorCodeArtifactInvalid  = "ARTIFACT_INVALID"   // 产物文件存在但无法解析或不满足约束
	ErrorCodeProductNotFound  = "PRODUCT_NOT_FOUND"  // 商品既无预计算推荐也无元数据
	ErrorCodeInvalidInput     = "INVALID_INPUT"      // 输入无效
	ErrorCodeNoMatch          = "NO_MATCH"           // 输入合法但没有可计算的结果
	ErrorCodeNotFound         = "NOT_FOUND"          // 资源不存在
	ErrorCodeInternalError    = "INTERNAL_ERROR"     // 内部错误
)

// 模块名称常量
const (
	ModuleArtifact = "artifact"
	ModuleRecall   = "recall"
	ModuleCatalog  = "catalog"
	ModuleStore    = "store"
	ModuleService  = "service"
)

// 通用错误检查函数

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsArtifactNotFound 检查错误是否为 ARTIFACT_NOT_FOUND
func IsArtifactNotFound(err error) bool {
	return hasCode(err, ErrorCodeArtifactNotFound)
}

// IsProductNotFound 检查错误是否为 PRODUCT_NOT_FOUND
func IsProductNotFound(err error) bool {
	return hasCode(err, ErrorCodeProductNotFound)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsNoMatch 检查错误是否为 NO_MATCH
func IsNoMatch(err error) bool {
	return hasCode(err, ErrorCodeNoMatch)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// ErrorCode 返回错误链中 DomainError 的 Code，非领域错误统一视为 INTERNAL_ERROR。
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code
	}
	return ErrorCodeInternalError
}

// InvalidInput 是 INVALID_INPUT 的快捷构造。
func InvalidInput(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeInvalidInput, message)
}
