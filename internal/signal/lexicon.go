package signal

// The lexicon: static keyword tables driving every classification step.
// All matching is case-insensitive substring search; entries are stored
// lowercase. Chinese and English vocabularies are mixed because the
// inputs are — tool transcripts freely interleave both.

// Fine-grained category names.
const (
	CategoryAnalysis      = "code-analysis"
	CategoryGeneration    = "code-generation"
	CategoryRefactoring   = "refactoring"
	CategoryBugFix        = "bug-fix"
	CategoryTesting       = "testing"
	CategoryDeployment    = "deployment"
	CategoryDocumentation = "documentation"
	CategoryData          = "data-processing"
	CategoryFiles         = "file-operations"
	CategoryNetwork       = "network"
	CategoryDatabase      = "database"
	CategoryTraining      = "ai-training"
	CategoryScripting     = "scripting"
	CategoryConfiguration = "configuration"
	CategorySecurity      = "security"
	CategoryPerformance   = "performance"
	CategoryOther         = "other"
)

// categoryRule is one fine-grained category with its keyword set and
// presentation icon.
type categoryRule struct {
	Name     string
	Keywords []string
	Icon     string
}

// categoryRules is the fine-grained lexicon. Declaration order is the
// tiebreak when two categories score equally, so it is part of the contract.
var categoryRules = []categoryRule{
	{CategoryAnalysis, []string{"分析", "检查", "扫描", "review", "analyze", "inspect", "lint", "audit"}, "🔍"},
	{CategoryGeneration, []string{"生成", "创建", "generate", "create", "build", "构建", "编写"}, "✨"},
	{CategoryRefactoring, []string{"重构", "优化", "refactor", "optimize", "improve", "修改", "更新"}, "🔧"},
	{CategoryBugFix, []string{"修复", "fix", "bug", "错误", "问题", "解决", "repair"}, "🐛"},
	{CategoryTesting, []string{"测试", "test", "验证", "verify", "check", "单元测试", "集成测试"}, "🧪"},
	{CategoryDeployment, []string{"部署", "deploy", "发布", "release", "上线", "publish"}, "🚀"},
	{CategoryDocumentation, []string{"文档", "说明", "doc", "readme", "guide", "manual"}, "📝"},
	{CategoryData, []string{"数据", "处理", "data", "process", "etl", "清洗"}, "📊"},
	{CategoryFiles, []string{"文件", "目录", "file", "folder", "copy", "move", "delete", "批量"}, "📁"},
	{CategoryNetwork, []string{"api", "请求", "调用", "http", "rest", "接口", "网络"}, "🌐"},
	{CategoryDatabase, []string{"数据库", "database", "sql", "查询", "migration", "迁移"}, "🗃️"},
	{CategoryTraining, []string{"训练", "模型", "机器学习", "train", "model", "neural", "深度学习"}, "🤖"},
	{CategoryScripting, []string{"脚本", "执行", "运行", "script", "run", "execute", "自动化"}, "⚡"},
	{CategoryConfiguration, []string{"配置", "设置", "config", "setup", "install", "环境"}, "⚙️"},
	{CategorySecurity, []string{"安全", "漏洞", "security", "vulnerability", "检测"}, "🔒"},
	{CategoryPerformance, []string{"性能", "performance", "加速", "提升"}, "⚡"},
}

// CategoryIcon returns the presentation icon for a fine-grained category.
func CategoryIcon(category string) string {
	for _, r := range categoryRules {
		if r.Name == category {
			return r.Icon
		}
	}
	return "🔖"
}

// Coarse profile keyword sets, tested in Bash → Write → Edit order.
var (
	bashKeywords  = []string{"bash", "shell", "命令", "执行", "运行", "脚本", "command", "curl"}
	writeKeywords = []string{"write", "创建", "生成", "新建", "写入", "create"}
	editKeywords  = []string{"edit", "编辑", "修改", "更新", "modify", "update"}
)

// Status indicator sets. The failure check always runs first: a line that
// mentions both "started" and "error" is a failure.
var (
	failureIndicators = []string{
		"失败", "错误", "异常", "无法", "不能", "问题",
		"failed", "error", "exception", "cannot", "unable",
		"❌", "出错", "失效",
	}
	runningIndicators = []string{
		"正在", "开始", "执行中", "处理中", "运行中",
		"running", "executing", "processing", "starting",
	}
	successIndicators = []string{
		"成功", "完成", "已创建", "已生成", "已修改", "已更新", "已配置",
		"success", "complete", "finished", "created", "generated",
		"updated", "configured", "✅", "完美", "好的", "已经",
	}
)

// Action verbs for task-name fallback rule 2.
var actionVerbs = []string{
	"分析", "创建", "生成", "修改", "编辑", "删除", "查找", "搜索",
	"配置", "设置", "部署", "测试", "运行", "执行", "处理", "优化",
	"重构", "修复", "调试", "检查", "验证", "更新", "安装",
	"analyze", "create", "generate", "fix", "deploy", "configure",
	"test", "run", "refactor", "update", "install",
}

// Domain keywords for task-name fallback rule 3.
var domainKeywords = []string{
	"docker", "飞书", "feishu", "webhook", "claude code", "message pusher",
	"通知", "配置", "测试", "部署", "hook", "flow", "集成",
}

// Vocabulary for key-detail line retention.
var valueKeywords = []string{
	"成功", "完成", "创建", "生成", "修改", "配置", "分析",
	"发现", "处理", "执行", "结果", "输出", "文件",
	"success", "created", "generated", "fixed", "passed",
}

// Noise denylist: transcript lines matching any of these are never details.
var noiseMarkers = []string{
	"system-reminder", "background bash", "timestamp",
	"===", "---", "tool_use_error", "debug",
}
