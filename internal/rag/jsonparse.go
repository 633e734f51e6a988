package rag

import (
	"encoding/json"
	"errors"
	"strings"
)

// decodeModelJSON 从 LLM 回复中解出 JSON 对象。
// 模型经常把 JSON 包在 ```json 围栏里或者前后加说明文字，
// 这里取第一个 '{' 到最后一个 '}' 之间的内容再解码。
func decodeModelJSON(reply string, out interface{}) error {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	begin := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if begin < 0 || end <= begin {
		return errors.New("模型回复中没有 JSON 对象")
	}
	return json.Unmarshal([]byte(s[begin:end+1]), out)
}
