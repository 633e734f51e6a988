package rag

import "strings"

// Sanitize 去掉 NUL 和 C0 控制字符 (保留 \t \n \r)，
// 保证文本可以安全写入 text 列。纯函数，幂等，永不报错。
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
