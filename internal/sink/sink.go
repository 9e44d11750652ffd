// Package sink persists member records as N-Triples artifacts.
package sink

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/ldes-tools/harvester/internal/harvester"
	hashpkg "github.com/ldes-tools/harvester/internal/hash/sha256"
	"github.com/ldes-tools/harvester/internal/storage"
)

// NTriplesSink converts member payloads to N-Triples through a Codec and
// writes one artifact per member, named by the SHA-256 digest of the
// member's identity.
type NTriplesSink struct {
	codec  Codec
	store  storage.Provider
	logger *zap.Logger
}

// NewNTriplesSink builds a sink writing through the given store.
func NewNTriplesSink(codec Codec, store storage.Provider, logger *zap.Logger) *NTriplesSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NTriplesSink{
		codec:  codec,
		store:  store,
		logger: logger,
	}
}

// Persist serializes one member and writes its artifact, returning the
// artifact URI. Codec failures surface as *harvester.ConversionError.
func (s *NTriplesSink) Persist(ctx context.Context, id string, member map[string]any, pageContext any) (string, error) {
	doc := buildDocument(member, pageContext)

	data, err := s.codec.Serialize(doc)
	if err != nil {
		return "", &harvester.ConversionError{MemberID: id, Err: err}
	}

	name := hashpkg.Sum([]byte(id)) + ".nt"
	uri, err := s.store.Save(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("save artifact %s: %w", name, err)
	}

	s.logger.Debug("Saved member artifact",
		zap.String("member_id", id),
		zap.String("artifact", uri),
	)
	return uri, nil
}

// buildDocument assembles the JSON-LD document to serialize. When the member
// wraps its payload in @graph, the graph content is the actual record and is
// serialized directly, inheriting a context from the member or the page when
// it carries none. Otherwise the whole member is used, with the page context
// attached if the member has none of its own.
func buildDocument(member map[string]any, pageContext any) map[string]any {
	if graph, ok := member["@graph"].(map[string]any); ok {
		if _, has := graph["@context"]; has {
			return graph
		}
		doc := maps.Clone(graph)
		if ctx := contextFor(member, pageContext); ctx != nil {
			doc["@context"] = ctx
		}
		return doc
	}

	doc := maps.Clone(member)
	if _, has := doc["@context"]; !has && pageContext != nil {
		doc["@context"] = pageContext
	}
	return doc
}

// contextFor prefers the page-level context, falling back to the member's.
func contextFor(member map[string]any, pageContext any) any {
	if pageContext != nil {
		return pageContext
	}
	return member["@context"]
}
