package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFirstLine 岗位标题列的截取规则
func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Backend Engineer", firstLine("Backend Engineer\nRequirements: Go", 255))
	assert.Equal(t, "no newline here", firstLine("no newline here", 255))
	assert.Equal(t, "", firstLine("", 255))

	// 截断点不落在多字节字符中间
	title := "高级后端工程师岗位"
	truncated := firstLine(title, 10)
	assert.LessOrEqual(t, len(truncated), 10)
	assert.Equal(t, "高级后", truncated)
}
