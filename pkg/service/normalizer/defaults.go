package normalizer

import "github.com/memvault/memvault/pkg/domain/model"

// DefaultMappings returns the seed tag mapping table used when the
// repository holds no mappings yet and no custom seed is configured.
func DefaultMappings() []*model.TagMapping {
	return []*model.TagMapping{
		{
			Standard: "幽默",
			Aliases:  []string{"幽默场景", "搞笑", "有趣", "逗比", "幽默风格", "搞笑场景", "逗乐", "滑稽"},
			Category: "情绪",
		},
		{
			Standard: "生气",
			Aliases:  []string{"愤怒", "暴怒", "发火", "气愤", "恼火", "发怒", "愤慨"},
			Category: "情绪",
		},
		{
			Standard: "无语",
			Aliases:  []string{"无话可说", "speechless", "无言以对", "呆滞", "目瞪口呆"},
			Category: "情绪",
		},
		{
			Standard: "熊猫头",
			Aliases:  []string{"熊猫人", "胖达", "功夫熊猫", "熊猫表情", "熊猫脸"},
			Category: "角色",
		},
		{
			Standard: "狗头",
			Aliases:  []string{"黄狗", "狗子", "柴犬", "狗狗", "小狗", "汪星人"},
			Category: "角色",
		},
		{
			Standard: "猫咪",
			Aliases:  []string{"猫头", "喵星人", "小猫", "猫猫", "猫脸"},
			Category: "角色",
		},
		{
			Standard: "吐槽",
			Aliases:  []string{"吐槽场景", "调侃", "讽刺", "嘲讽", "挖苦"},
			Category: "场景",
		},
		{
			Standard: "日常",
			Aliases:  []string{"生活", "日常生活", "平常", "日常场景"},
			Category: "场景",
		},
		{
			Standard: "抽烟",
			Aliases:  []string{"吸烟", "抽菸", "吸菸", "抽雪茄", "吸雪茄"},
			Category: "动作",
		},
		{
			Standard: "喝酒",
			Aliases:  []string{"饮酒", "干杯", "碰杯", "喝啤酒", "饮酒场景"},
			Category: "动作",
		},
		{
			Standard: "思考",
			Aliases:  []string{"沉思", "冥想", "深思", "思索", "想事情"},
			Category: "动作",
		},
	}
}
