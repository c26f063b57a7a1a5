package kanji

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed models.toml
var embeddedModelsTOML []byte

// VariantConfig is a single downloadable model variant: one
// quantization of one family.
type VariantConfig struct {
	ID          string `toml:"id"`
	Filename    string `toml:"filename"`
	DisplayName string `toml:"display_name"`
}

// ModelFamily groups the variants that share a HuggingFace repo.
type ModelFamily struct {
	RepoID               string                   `toml:"repo_id"`
	DisplayName          string                   `toml:"display_name"`
	PreTokenizerOverride string                   `toml:"pre_tokenizer_override"`
	Variants             map[string]VariantConfig `toml:"variants"`
}

// Registry is the parsed model catalog: which variant ids exist, and
// which family/repo each belongs to. It never resolves a variant to a
// local file itself — that is the host's HuggingFace-cache concern,
// out of scope here — only which variants are known.
type Registry struct {
	DefaultModel string                 `toml:"default_model"`
	Models       map[string]ModelFamily `toml:"models"`
}

// ParseRegistry parses a models.toml document. It is exported so a
// host process can supply its own catalog instead of the embedded
// default.
func ParseRegistry(data []byte) (*Registry, error) {
	var r Registry
	if _, err := toml.Decode(string(data), &r); err != nil {
		return nil, fmt.Errorf("kanji: parsing model registry: %w", err)
	}
	return &r, nil
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
	defaultRegistryErr  error
)

// DefaultRegistry returns the registry parsed from the module's
// embedded models.toml, memoized after the first call. Per the
// no-process-globals design note, this is an explicit lazy
// initializer rather than a package-level side effect, and a host is
// free to ignore it entirely and call ParseRegistry with its own
// catalog.
func DefaultRegistry() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = ParseRegistry(embeddedModelsTOML)
	})
	return defaultRegistry, defaultRegistryErr
}

// FindVariant looks up a variant by its unique id across every family.
func (r *Registry) FindVariant(variantID string) (ModelFamily, VariantConfig, bool) {
	for _, family := range r.Models {
		for _, variant := range family.Variants {
			if variant.ID == variantID {
				return family, variant, true
			}
		}
	}
	return ModelFamily{}, VariantConfig{}, false
}

// DefaultVariant resolves the registry's configured default variant.
func (r *Registry) DefaultVariant() (ModelFamily, VariantConfig, bool) {
	return r.FindVariant(r.DefaultModel)
}

// AllVariantIDs returns every known variant id, sorted for stable
// output.
func (r *Registry) AllVariantIDs() []string {
	var ids []string
	for _, family := range r.Models {
		for _, variant := range family.Variants {
			ids = append(ids, variant.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ErrUnknownVariant is wrapped into Error by ResolveVariantID when a
// requested variant id is not present in the registry.
type ErrUnknownVariant struct {
	VariantID string
}

func (e *ErrUnknownVariant) Error() string {
	return fmt.Sprintf("kanji: unknown model variant %q", e.VariantID)
}

// ResolveVariantID looks up variantID in reg and returns a structured
// Error, matching the FfiError/ModelError taxonomy the boundary
// surface reports to the host, if it is not found.
func ResolveVariantID(reg *Registry, variantID string) (ModelFamily, VariantConfig, error) {
	family, variant, ok := reg.FindVariant(variantID)
	if !ok {
		return ModelFamily{}, VariantConfig{}, &Error{
			Kind:  ErrorModelNotLoaded,
			Model: variantID,
			Err:   &ErrUnknownVariant{VariantID: variantID},
		}
	}
	return family, variant, nil
}
