package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// CalculateMD5 计算字节内容的MD5摘要，用于简历文本去重
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}