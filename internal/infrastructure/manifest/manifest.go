// Package manifest reads the layer processing manifest: the JSON file
// listing, per layer and entity, the shell commands that acquire and
// process its dataset. Fill mode quotes these commands back into the
// catalog's comment columns.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gisdx/catalog-core/internal/domain/entities"
	"github.com/gisdx/catalog-core/internal/domain/parsing"
)

// Manifest implements ports.CommentSource over the parsed manifest file.
// The file maps layer -> entity -> ordered command list.
type Manifest struct {
	layers map[string]map[string][]string
}

// Load reads the manifest file. A missing file yields an empty manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{layers: make(map[string]map[string][]string)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest file: %w", err)
	}

	var layers map[string]map[string][]string
	if err := json.Unmarshal(data, &layers); err != nil {
		return nil, fmt.Errorf("parsing manifest file %s: %w", path, err)
	}
	return &Manifest{layers: layers}, nil
}

// Commands returns the source-phase and processing-phase command comments
// for a layer entity. Manifest keys may be full entity keys or bare
// county_city suffixes; both are tried.
func (m *Manifest) Commands(layer, entity string) (string, string) {
	byEntity := m.layers[layer]
	if byEntity == nil {
		return "", ""
	}

	commands, ok := byEntity[entity]
	if !ok {
		if suffix := entitySuffix(entity); suffix != "" {
			commands, ok = byEntity[suffix]
		}
	}
	if !ok || len(commands) == 0 {
		return "", ""
	}
	return splitPhases(commands)
}

// entitySuffix converts a full entity key to its bare county_city form.
func entitySuffix(entity string) string {
	state, county, city, err := parsing.SplitEntity(stripLayer(entity))
	if err != nil || state == "" {
		return ""
	}
	if city == "" {
		return county
	}
	return county + "_" + city
}

// stripLayer drops a leading layer name from an entity key when present.
// Longer layer names are tried first so flu never shadows fema_flood.
func stripLayer(entity string) string {
	for _, name := range entities.LayerNamesByLength() {
		if strings.HasPrefix(entity, name+"_") {
			return strings.TrimPrefix(entity, name+"_")
		}
	}
	return entity
}

// splitPhases divides a command list into the source (acquisition) phase
// and the processing phase. Download commands belong to the source phase;
// the first ogrinfo or later command starts processing; update commands
// end the quoted region.
func splitPhases(commands []string) (string, string) {
	var source, processing []string
	inProcessing := false

	for _, cmd := range commands {
		trimmed := strings.TrimSpace(cmd)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)

		if strings.HasPrefix(lower, "update ") || strings.HasPrefix(lower, "psql") && strings.Contains(lower, "update ") {
			break
		}
		if !inProcessing && (strings.Contains(lower, "ogrinfo") || strings.Contains(lower, "ogr2ogr")) {
			inProcessing = true
		}
		if inProcessing {
			processing = append(processing, trimmed)
		} else {
			source = append(source, trimmed)
		}
	}
	return joinBracketed(source), joinBracketed(processing)
}

// joinBracketed renders a command list as the bracketed multi-line form
// the comment columns use.
func joinBracketed(commands []string) string {
	if len(commands) == 0 {
		return ""
	}
	return "[" + strings.Join(commands, "]\n[") + "]"
}
