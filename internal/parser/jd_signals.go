package parser

import (
	"regexp"

	"resume-match-go/internal/types"
)

// JD中必备段与加分段的起始标记。中文标记不依赖\b，单独列分支
var (
	requiredHeaderRe  = regexp.MustCompile(`(?i)\b(requirements|required|must have|minimum qualifications|basic qualifications)\b|任职要求|岗位要求|职位要求`)
	preferredHeaderRe = regexp.MustCompile(`(?i)\b(preferred qualifications|preferred|nice to have|good to have|bonus|desired|a plus)\b|加分项|优先考虑`)
)

// ProcessJobDescription 对JD做通用抽取，并把技能划分为必备/加分两组
//
// 划分规则：定位"required"与"preferred"标记，按二者先后切出两段分别抽取；
// 缺失preferred标记时全部技能视为必备；两个标记都缺失时同样全部视为必备。
func ProcessJobDescription(text string, extractor *SkillExtractor) *types.JobDescriptionSignals {
	doc := extractor.Extract(text)

	signals := &types.JobDescriptionSignals{
		Document:        doc,
		CleanedText:     doc.RawText,
		RequiredSkills:  []string{},
		PreferredSkills: []string{},
	}
	if doc.RawText == "" {
		return signals
	}

	requiredText, preferredText := splitRequiredPreferred(doc.RawText)

	requiredSet := make(map[string]bool)
	for _, mention := range extractor.Extract(requiredText).Skills {
		requiredSet[mention.Skill] = true
		signals.RequiredSkills = append(signals.RequiredSkills, mention.Skill)
	}
	// preferred段里重复出现的必备技能不降级为加分项
	for _, mention := range extractor.Extract(preferredText).Skills {
		if requiredSet[mention.Skill] {
			continue
		}
		signals.PreferredSkills = append(signals.PreferredSkills, mention.Skill)
	}

	return signals
}

// splitRequiredPreferred 把JD文本切成必备段和加分段
func splitRequiredPreferred(text string) (string, string) {
	// 长度不变的折叠, 标记位置才能直接切原文
	lower := lowerASCII(text)

	reqLoc := requiredHeaderRe.FindStringIndex(lower)
	prefLoc := preferredHeaderRe.FindStringIndex(lower)

	switch {
	case prefLoc == nil:
		// 没有加分段标记，全文视为必备
		return text, ""
	case reqLoc == nil:
		// 只有加分段标记：标记之前视为必备，之后为加分
		return text[:prefLoc[0]], text[prefLoc[0]:]
	case reqLoc[0] <= prefLoc[0]:
		return text[:prefLoc[0]], text[prefLoc[0]:]
	default:
		// 加分段出现在必备段之前
		return text[reqLoc[0]:], text[prefLoc[0]:reqLoc[0]]
	}
}
