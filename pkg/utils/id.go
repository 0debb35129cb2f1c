package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func NewID() string { return uuid.NewString() }

// NewOrderedID 生成 UUIDv7；同一进程内按生成顺序递增，可用作排序键
func NewOrderedID() string { return uuid.Must(uuid.NewV7()).String() }

// SerialID 生成 CU20240001 形式的编号，序号不足 4 位补零
func SerialID(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s%d%04d", prefix, year, seq)
}

// NormalizeEmail 去空格并转小写
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
