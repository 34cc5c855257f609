package parser

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatchKind 技能命中方式，决定基础置信度
type MatchKind int

const (
	// MatchExact 规范名精确命中
	MatchExact MatchKind = iota
	// MatchAlias 别名命中
	MatchAlias
	// MatchVariation 变体写法命中
	MatchVariation
)

// skillPattern 单个检索词条目，term为小写检索词
type skillPattern struct {
	term      string
	canonical string
	kind      MatchKind
}

// SkillTaxonomy 技能分类表：规范名、别名映射和变体写法
// 构建完成后只读，可被多goroutine并发使用
type SkillTaxonomy struct {
	canonical  map[string]bool
	normalized map[string]string // 小写词 -> 规范名
	patterns   []skillPattern    // 按检索词长度降序
}

// taxonomyFile 自定义分类表yaml的文件结构
type taxonomyFile struct {
	Canonical  []string            `yaml:"canonical"`
	Aliases    map[string]string   `yaml:"aliases"`
	Variations map[string][]string `yaml:"variations"`
}

// NewSkillTaxonomy 从给定的词表构建分类表
// 同一检索词出现多种来源时保留更强的命中方式（exact > alias > variation）
func NewSkillTaxonomy(canonical []string, aliases map[string]string, variations map[string][]string) *SkillTaxonomy {
	t := &SkillTaxonomy{
		canonical:  make(map[string]bool, len(canonical)),
		normalized: make(map[string]string),
	}

	best := make(map[string]skillPattern)
	consider := func(term, canon string, kind MatchKind) {
		term = strings.ToLower(strings.TrimSpace(term))
		canon = strings.ToLower(strings.TrimSpace(canon))
		if term == "" || canon == "" {
			return
		}
		if cur, ok := best[term]; ok && cur.kind <= kind {
			return
		}
		best[term] = skillPattern{term: term, canonical: canon, kind: kind}
	}

	for _, c := range canonical {
		name := strings.ToLower(strings.TrimSpace(c))
		if name == "" {
			continue
		}
		t.canonical[name] = true
		consider(name, name, MatchExact)
	}
	for alias, canon := range aliases {
		consider(alias, canon, MatchAlias)
	}
	for canon, vars := range variations {
		for _, v := range vars {
			// 变体恰好等于规范名时按精确命中处理
			if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(canon)) {
				consider(v, canon, MatchExact)
				continue
			}
			consider(v, canon, MatchVariation)
		}
	}

	t.patterns = make([]skillPattern, 0, len(best))
	for _, p := range best {
		t.patterns = append(t.patterns, p)
		t.normalized[p.term] = p.canonical
	}

	// 长词优先，避免 "java" 吃掉 "javascript" 的命中
	sort.Slice(t.patterns, func(i, j int) bool {
		if len(t.patterns[i].term) != len(t.patterns[j].term) {
			return len(t.patterns[i].term) > len(t.patterns[j].term)
		}
		return t.patterns[i].term < t.patterns[j].term
	})

	return t
}

// LoadSkillTaxonomy 从yaml文件加载自定义分类表
func LoadSkillTaxonomy(path string) (*SkillTaxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取技能分类表失败: %w", err)
	}

	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析技能分类表失败: %w", err)
	}
	if len(file.Canonical) == 0 {
		return nil, fmt.Errorf("技能分类表为空: %s", path)
	}

	return NewSkillTaxonomy(file.Canonical, file.Aliases, file.Variations), nil
}

// Normalize 将任意写法归一到规范名，未知词返回其小写形式
func (t *SkillTaxonomy) Normalize(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if canon, ok := t.normalized[key]; ok {
		return canon
	}
	return key
}

// IsCanonical 判断是否规范技能名
func (t *SkillTaxonomy) IsCanonical(s string) bool {
	return t.canonical[strings.ToLower(strings.TrimSpace(s))]
}

// Size 返回规范技能数量
func (t *SkillTaxonomy) Size() int {
	return len(t.canonical)
}

// DefaultSkillTaxonomy 内置的技术技能分类表
func DefaultSkillTaxonomy() *SkillTaxonomy {
	canonical := []string{
		// 语言
		"python", "java", "javascript", "typescript", "go", "c", "c++", "c#",
		"rust", "ruby", "php", "swift", "kotlin", "scala", "r", "matlab",
		// 数据与查询
		"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
		"cassandra", "sqlite", "oracle", "dynamodb", "snowflake", "hive",
		// 前端
		"html", "css", "react", "angular", "vue", "next.js", "svelte",
		"webpack", "tailwind",
		// 后端与框架
		"node.js", "django", "flask", "fastapi", "spring", "spring boot",
		"express", "rails", "laravel", ".net", "gin",
		// 云与基础设施
		"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "ansible",
		"jenkins", "git", "linux", "bash", "nginx", "helm", "prometheus",
		"grafana",
		// 数据工程与消息
		"kafka", "rabbitmq", "spark", "hadoop", "airflow", "flink", "etl",
		"dbt",
		// 机器学习
		"machine learning", "deep learning", "nlp", "computer vision",
		"pandas", "numpy", "scikit-learn", "tensorflow", "pytorch", "keras",
		"xgboost", "opencv", "hugging face", "langchain", "llm",
		// 架构与实践
		"rest api", "graphql", "grpc", "microservices", "ci/cd", "tdd",
		"agile", "scrum", "oop", "system design", "distributed systems",
		// 分析与工具
		"tableau", "power bi", "excel", "jira", "looker", "data analysis",
		"data visualization", "a/b testing", "statistics",
	}

	aliases := map[string]string{
		"js":                          "javascript",
		"ts":                          "typescript",
		"golang":                      "go",
		"k8s":                         "kubernetes",
		"postgres":                    "postgresql",
		"mongo":                       "mongodb",
		"ml":                          "machine learning",
		"dl":                          "deep learning",
		"natural language processing": "nlp",
		"tf":                          "tensorflow",
		"sklearn":                     "scikit-learn",
		"amazon web services":         "aws",
		"google cloud":                "gcp",
		"google cloud platform":       "gcp",
		"reactjs":                     "react",
		"react.js":                    "react",
		"nodejs":                      "node.js",
		"node":                        "node.js",
		"vuejs":                       "vue",
		"vue.js":                      "vue",
		"nextjs":                      "next.js",
		"cpp":                         "c++",
		"csharp":                      "c#",
		"dotnet":                      ".net",
		"es":                          "elasticsearch",
		"microservice":                "microservices",
		"restful api":                 "rest api",
		"cicd":                        "ci/cd",
		"powerbi":                     "power bi",
		"large language models":       "llm",
		"large language model":        "llm",
	}

	variations := map[string][]string{
		"python":           {"python3", "python 3", "python2"},
		"java":             {"java 8", "java8", "java 11", "java11", "java 17"},
		"node.js":          {"node js"},
		"rest api":         {"rest apis", "restful", "restful apis"},
		"ci/cd":            {"ci cd", "ci-cd"},
		"scikit-learn":     {"scikit learn"},
		"machine learning": {"ml engineering", "ml ops", "mlops"},
		"spring boot":      {"springboot"},
		"kubernetes":       {"kubernetes cluster"},
		"a/b testing":      {"ab testing", "a b testing"},
	}

	return NewSkillTaxonomy(canonical, aliases, variations)
}
