package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractJSONObject 从夹带文字和围栏的输出中提取JSON
func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSONObject(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, extractJSONObject("以下是结果：\n```json\n{\"a\":1}\n```\n希望有帮助"))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSONObject(`prefix {"a":{"b":2}} suffix`), "嵌套对象应按括号配平提取")
	assert.Equal(t, "", extractJSONObject("没有任何JSON"), "无花括号时返回空串")
	assert.Equal(t, "", extractJSONObject(`{"a":1`), "未闭合的对象返回空串")
}

// TestSanitizeJSON 字符串内部未转义的引号被修复
func TestSanitizeJSON(t *testing.T) {
	broken := `{"msg": "he said "hello" to me"}`
	fixed := sanitizeJSON(broken)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(fixed), &out))
	assert.Equal(t, `he said "hello" to me`, out["msg"])
}

// TestSanitizeJSON_ValidUnchanged 合法JSON不应被破坏
func TestSanitizeJSON_ValidUnchanged(t *testing.T) {
	valid := `{"a": "text", "b": ["x", "y"], "c": {"d": "v"}}`
	assert.Equal(t, valid, sanitizeJSON(valid))

	escaped := `{"a": "already \"escaped\" quotes"}`
	assert.Equal(t, escaped, sanitizeJSON(escaped))
}
