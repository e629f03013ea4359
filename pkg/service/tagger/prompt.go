package tagger

import "fmt"

func buildPrompt(maxTags, maxRunes int) string {
	return fmt.Sprintf(`你是一个表情包标签助手。请分析这张表情包图片，生成最多%d个中文标签。

要求：
- 每个标签不超过%d个字
- 标签类型包括：text（图中文字）、emotion（情绪）、subject（主体角色）、meaning（含义用途）
- 只返回一个JSON数组，不要其他内容

格式示例：
[{"tag": "无语", "confidence": 0.95, "type": "emotion"}]`, maxTags, maxRunes)
}
