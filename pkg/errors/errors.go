package errors

import (
	"errors"
	"fmt"
)

// ── 错误分类 ──
//
// 业务层的具体错误通过 %w 包装以下哨兵错误，Handler 只需 errors.Is 判断分类。

var (
	// ErrValidation 必填字段为空等输入错误，发生在任何状态变更之前
	ErrValidation = errors.New("参数校验失败")
	// ErrNotFound 操作的对象不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrPersistence 键值存储读写失败
	ErrPersistence = errors.New("持久化失败")
)

// PersistenceError 记录失败的存储操作及键名
type PersistenceError struct {
	Op  string // get | set | encode | decode
	Key string
	Err error
}

// NewPersistenceError 包装底层存储错误
func NewPersistenceError(op, key string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Key: key, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", ErrPersistence.Error(), e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is 使 errors.Is(err, ErrPersistence) 成立
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
