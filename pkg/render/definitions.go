package render

import (
	"context"
	"fmt"
	"strings"
)

// StaticDefinitions is a DefinitionsGenerator backed by a fixed map of
// definition identifier to text block. It covers testing and simple
// deployments; production systems plug in their own generator.
type StaticDefinitions map[string]string

// Generate concatenates the blocks for the required identifiers, in
// the order requested. Unknown identifiers are noted inline rather
// than failing, matching the engine's degrade-never-crash policy.
func (d StaticDefinitions) Generate(_ context.Context, required []string, _ map[string]any) (string, error) {
	var blocks []string
	for _, id := range required {
		if block, ok := d[id]; ok {
			blocks = append(blocks, block)
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[definition %q unavailable]", id))
	}
	return strings.Join(blocks, "\n\n"), nil
}
