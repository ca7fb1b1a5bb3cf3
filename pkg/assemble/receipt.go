package assemble

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"github.com/lexweave/lexweave/pkg/clause"
)

// Receipt is the audit record for one assembly run. InputHash and
// OutputHash are computed over canonical JSON, so identical inputs
// always yield identical hashes regardless of map iteration order —
// the reproducibility guarantee downstream QA verifies. RunID and
// GeneratedAt vary per run and are excluded from both hashes.
type Receipt struct {
	RunID       string    `json:"run_id"`
	TemplateID  string    `json:"template_id"`
	CompanyID   string    `json:"company_id"`
	GeneratedAt time.Time `json:"generated_at"`

	// ClauseSlugs lists the resolved clauses in final document order.
	ClauseSlugs []string `json:"clause_slugs"`

	InputHash  string `json:"input_hash"`
	OutputHash string `json:"output_hash"`
}

// receiptInput is the canonical-hash payload for the run's inputs.
type receiptInput struct {
	Template  clause.Template `json:"template"`
	Variables map[string]any  `json:"variables"`
}

func (e *Engine) newReceipt(tmpl clause.Template, vars map[string]any, resolved []clause.Clause, doc string) (Receipt, error) {
	inputHash, err := canonicalHash(receiptInput{Template: tmpl, Variables: vars})
	if err != nil {
		return Receipt{}, fmt.Errorf("hash assembly inputs: %w", err)
	}

	outputSum := sha256.Sum256([]byte(doc))

	slugs := make([]string, 0, len(resolved))
	for _, c := range resolved {
		slugs = append(slugs, c.Slug)
	}

	return Receipt{
		RunID:       uuid.NewString(),
		TemplateID:  tmpl.ID,
		CompanyID:   tmpl.CompanyID,
		GeneratedAt: e.clock().UTC(),
		ClauseSlugs: slugs,
		InputHash:   inputHash,
		OutputHash:  hex.EncodeToString(outputSum[:]),
	}, nil
}

// canonicalHash serializes v as JCS canonical JSON and hashes it.
func canonicalHash(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
