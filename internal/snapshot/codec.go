// Package snapshot encodes and decodes the frozen balance data persisted
// when a regarding closes. The envelope carries an explicit schema version
// so readers can detect snapshots written by older releases instead of
// misparsing them.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/settlement"
)

// SchemaVersion is the envelope schema written by this release.
const SchemaVersion = 1

var ErrUnknownSchema = errors.New("unknown snapshot schema version")

// Envelope wraps a computed summary with its provenance. MemberVsMemberNames
// is the display-name projection stored alongside the id-keyed summary for
// presentation; the id-keyed data is authoritative and round-trip safe.
type Envelope struct {
	SchemaVersion       int                                   `json:"schema_version"`
	ComputedAt          time.Time                             `json:"computed_at"`
	Summary             *settlement.Summary                   `json:"summary"`
	MemberVsMemberNames map[string]map[string]decimal.Decimal `json:"total_member_vs_member_names"`
}

// NewEnvelope wraps a summary in a current-version envelope, resolving the
// display-name projection at this serialization boundary.
func NewEnvelope(summary *settlement.Summary, computedAt time.Time) *Envelope {
	return &Envelope{
		SchemaVersion:       SchemaVersion,
		ComputedAt:          computedAt.UTC(),
		Summary:             summary,
		MemberVsMemberNames: summary.MemberVsMemberByName(),
	}
}

// Encode serializes a summary into a version-1 envelope. Decimal values are
// emitted as quoted strings, so no precision is lost to binary floats.
func Encode(summary *settlement.Summary, computedAt time.Time) ([]byte, error) {
	return EncodeEnvelope(NewEnvelope(summary, computedAt))
}

// EncodeEnvelope serializes an already-built envelope.
func EncodeEnvelope(env *Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a persisted envelope and verifies its schema version.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSchema, env.SchemaVersion)
	}
	return &env, nil
}
