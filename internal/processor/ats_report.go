package processor

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/types"
)

// sectionDisplayNames ATS报告中章节的展示名
var sectionDisplayNames = map[string]string{
	types.SectionExperience: "Experience",
	types.SectionEducation:  "Education",
	types.SectionSkills:     "Skills",
	types.SectionProjects:   "Projects",
	types.SectionSummary:    "Summary",
}

// BuildATSReport 生成简历对单个JD的ATS风格检查报告
// 总分 = 必备覆盖率*0.6 + 加分覆盖率*0.2 + 章节齐备度*0.2；
// 空的必备/加分列表按全覆盖计，不惩罚JD没写的内容
func BuildATSReport(resume *types.ExtractedDocument, jd *types.JobDescriptionSignals, taxonomy *parser.SkillTaxonomy) *types.ATSReport {
	resumeSet := normalizeSkillSet(resume.SkillNames(), taxonomy)

	matchedRequired, missingRequired := splitByPresence(jd.RequiredSkills, resumeSet, taxonomy)
	matchedPreferred, missingPreferred := splitByPresence(jd.PreferredSkills, resumeSet, taxonomy)

	requiredCoverage := coverageRatio(len(matchedRequired), len(jd.RequiredSkills))
	preferredCoverage := coverageRatio(len(matchedPreferred), len(jd.PreferredSkills))

	var sectionsPresent, sectionsMissing []string
	for _, section := range types.StandardSections {
		if resume.DetectedSections[section] {
			sectionsPresent = append(sectionsPresent, sectionDisplayNames[section])
		} else {
			sectionsMissing = append(sectionsMissing, sectionDisplayNames[section])
		}
	}
	sectionCoverage := float64(len(sectionsPresent)) / float64(len(types.StandardSections))

	overall := clampScore(int(math.Round(100 * (constants.ATSRequiredWeight*requiredCoverage +
		constants.ATSPreferredWeight*preferredCoverage +
		constants.ATSSectionWeight*sectionCoverage))))

	report := &types.ATSReport{
		OverallScore:         overall,
		RequiredCoveragePct:  math.Round(requiredCoverage*1000) / 10,
		PreferredCoveragePct: math.Round(preferredCoverage*1000) / 10,
		MatchedRequired:      matchedRequired,
		MissingRequired:      missingRequired,
		MatchedPreferred:     matchedPreferred,
		MissingPreferred:     missingPreferred,
		SectionsPresent:      sectionsPresent,
		SectionsMissing:      sectionsMissing,
	}
	report.RedFlags = collectRedFlags(resume, jd, requiredCoverage)
	report.Recommendations = collectRecommendations(report)
	return report
}

// splitByPresence 把JD技能列表按简历是否持有拆成两组，保持JD顺序
func splitByPresence(jdSkills []string, resumeSet map[string]bool, taxonomy *parser.SkillTaxonomy) (matched, missing []string) {
	matched = []string{}
	missing = []string{}
	seen := make(map[string]bool, len(jdSkills))
	for _, skill := range jdSkills {
		canon := skill
		if taxonomy != nil {
			canon = taxonomy.Normalize(skill)
		}
		if canon == "" || seen[canon] {
			continue
		}
		seen[canon] = true
		if resumeSet[canon] {
			matched = append(matched, canon)
		} else {
			missing = append(missing, canon)
		}
	}
	return matched, missing
}

// coverageRatio 覆盖率，空列表按全覆盖计
func coverageRatio(matched, total int) float64 {
	if total == 0 {
		return 1
	}
	return float64(matched) / float64(total)
}

func collectRedFlags(resume *types.ExtractedDocument, jd *types.JobDescriptionSignals, requiredCoverage float64) []string {
	flags := []string{}

	if utf8.RuneCountInString(resume.RawText) < constants.ATSShortResumeRunes {
		flags = append(flags, "Resume text is very short; automated screeners may reject it as incomplete")
	}
	if !resume.DetectedSections[types.SectionExperience] {
		flags = append(flags, "No recognizable work experience section")
	}
	if !resume.DetectedSections[types.SectionSkills] {
		flags = append(flags, "No dedicated skills section; keyword scanners rely on it heavily")
	}
	if len(jd.RequiredSkills) > 0 && requiredCoverage < 0.5 {
		flags = append(flags, "Less than half of the required skills appear in the resume")
	}
	if mismatchedSeniority(resume.ExperienceLevelEstimate, jd.Document.ExperienceLevelEstimate) {
		flags = append(flags, fmt.Sprintf("Seniority mismatch: resume reads as %s while the role targets %s",
			resume.ExperienceLevelEstimate, jd.Document.ExperienceLevelEstimate))
	}
	return flags
}

// mismatchedSeniority 简历级别比JD要求低两档以上视为不匹配
func mismatchedSeniority(resumeLevel, jdLevel string) bool {
	rank := map[string]int{
		types.ExperienceJunior: 1,
		types.ExperienceMid:    2,
		types.ExperienceSenior: 3,
		types.ExperienceLead:   4,
	}
	r, rOK := rank[resumeLevel]
	j, jOK := rank[jdLevel]
	return rOK && jOK && j-r >= 2
}

func collectRecommendations(report *types.ATSReport) []string {
	recs := []string{}

	if len(report.MissingRequired) > 0 {
		recs = append(recs, fmt.Sprintf("Add concrete evidence for the required skills: %s",
			strings.Join(capList(report.MissingRequired, 5), ", ")))
	}
	if len(report.MissingPreferred) > 0 {
		recs = append(recs, fmt.Sprintf("Mention nice-to-have keywords where truthful: %s",
			strings.Join(capList(report.MissingPreferred, 5), ", ")))
	}
	for _, section := range report.SectionsMissing {
		recs = append(recs, fmt.Sprintf("Add a clearly titled %q section", section))
	}
	if len(recs) > constants.ATSMaxRecommendations {
		recs = recs[:constants.ATSMaxRecommendations]
	}
	return recs
}

// capList 截断列表到前n项
func capList(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
