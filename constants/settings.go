package constants

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// ExportTemplate controls how much detail exports carry.
type ExportTemplate string

const (
	ExportMinimal  ExportTemplate = "minimal"
	ExportStandard ExportTemplate = "standard"
	ExportDetailed ExportTemplate = "detailed"
)

func (e ExportTemplate) Valid() bool {
	return e == ExportMinimal || e == ExportStandard || e == ExportDetailed
}

// Backend names a content generation backend.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendOpenAI Backend = "openai"
	BackendClaude Backend = "claude"
	BackendGemini Backend = "gemini"
	BackendOllama Backend = "ollama"
)

func (b Backend) Valid() bool {
	switch b {
	case BackendLocal, BackendOpenAI, BackendClaude, BackendGemini, BackendOllama:
		return true
	}
	return false
}
