package sink

import (
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// Codec converts a JSON-LD document into a canonical RDF serialization.
type Codec interface {
	Serialize(doc map[string]any) ([]byte, error)
}

// JSONLDCodec implements Codec using the json-gold processor, producing
// N-Quads (N-Triples when the document carries no named graphs).
type JSONLDCodec struct {
	proc *ld.JsonLdProcessor
	opts *ld.JsonLdOptions
}

// NewJSONLDCodec returns a codec emitting application/n-quads.
func NewJSONLDCodec() *JSONLDCodec {
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	return &JSONLDCodec{
		proc: ld.NewJsonLdProcessor(),
		opts: opts,
	}
}

// Serialize expands the document to RDF and returns the serialized triples.
func (c *JSONLDCodec) Serialize(doc map[string]any) ([]byte, error) {
	out, err := c.proc.ToRDF(doc, c.opts)
	if err != nil {
		return nil, fmt.Errorf("jsonld to rdf: %w", err)
	}
	serialized, ok := out.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected serialization type %T", out)
	}
	return []byte(serialized), nil
}
