package digest

import (
	"strings"
	"sync"

	"github.com/nzdigest/nzdigest/internal/engine"
)

// Family selects which provider serves a model.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyFirstParty
	FamilyThirdParty
)

func (f Family) String() string {
	switch f {
	case FamilyFirstParty:
		return "gemini"
	case FamilyThirdParty:
		return "groq"
	}
	return "unknown"
}

// DefaultModel is the first-party model identifier.
const DefaultModel = "gemini-flash"

// catalog is replaced as a whole; readers take a snapshot under the lock.
var (
	catalogMu sync.RWMutex
	catalog   = defaultCatalog()
)

func defaultCatalog() []engine.ModelInfo {
	return []engine.ModelInfo{
		{ID: DefaultModel, DisplayName: "Gemini Flash", Family: FamilyFirstParty.String(), Default: true},
		{ID: "llama-3.3-70b-versatile", DisplayName: "LLaMA 3.3 70B", Family: FamilyThirdParty.String()},
		{ID: "openai/gpt-oss-120b", DisplayName: "GPT OSS 120B", Family: FamilyThirdParty.String()},
		{ID: "meta-llama/llama-4-scout-17b-16e-instruct", DisplayName: "LLaMA 4 Scout", Family: FamilyThirdParty.String()},
		{ID: "moonshotai/kimi-k2-instruct", DisplayName: "Kimi K2 Instruct", Family: FamilyThirdParty.String()},
		{ID: "deepseek-r1-distill-llama-70b", DisplayName: "DeepSeek R1", Family: FamilyThirdParty.String()},
		{ID: "qwen/qwen3-32b", DisplayName: "Qwen 3 32B", Family: FamilyThirdParty.String()},
	}
}

// SetThirdPartyModels replaces the third-party allow-set. The first-party
// entry is always kept. Entries without an ID are skipped.
func SetThirdPartyModels(models []engine.ModelInfo) {
	next := []engine.ModelInfo{defaultCatalog()[0]}
	seen := map[string]bool{DefaultModel: true}
	for _, m := range models {
		id := strings.TrimSpace(m.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if m.DisplayName == "" {
			m.DisplayName = id
		}
		m.ID = id
		m.Family = FamilyThirdParty.String()
		m.Default = false
		next = append(next, m)
	}
	catalogMu.Lock()
	catalog = next
	catalogMu.Unlock()
}

// ResetModels restores the built-in catalog.
func ResetModels() {
	catalogMu.Lock()
	catalog = defaultCatalog()
	catalogMu.Unlock()
}

// Models returns a copy of the catalog in display order.
func Models() []engine.ModelInfo {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	out := make([]engine.ModelInfo, len(catalog))
	copy(out, catalog)
	return out
}

// Resolve maps a model identifier to its provider family.
func Resolve(model string) (Family, error) {
	if model == DefaultModel {
		return FamilyFirstParty, nil
	}
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	for _, m := range catalog {
		if m.ID == model && m.Family == FamilyThirdParty.String() {
			return FamilyThirdParty, nil
		}
	}
	return FamilyUnknown, engine.Errorf(engine.KindUnsupportedModel, engine.StageSummarize, "Unsupported model: %s", model)
}
