package harvester

import (
	"fmt"

	hashpkg "github.com/ldes-tools/harvester/internal/hash/sha256"
)

// Synonym key tables for the shape-varying documents LDES publishers emit.
// Publishers disagree on whether JSON-LD terms carry the @ prefix and on
// whether the paging tree hangs off the collection root or a named view, so
// every lookup tries each variant in order.
var (
	viewKeys     = []string{"view", "@view"}
	relationKeys = []string{"relation", "@relation"}
	nodeKeys     = []string{"node", "@node"}
	idKeys       = []string{"@id", "id"}
	memberKeys   = []string{"member", "members", "@member", "@members"}
	identityKeys = []string{"@id", "id", "object", "@type"}
	typeKeys     = []string{"@type", "type"}
	contextKeys  = []string{"@context"}
)

// eventStreamType marks a collection root document.
const eventStreamType = "EventStream"

func firstKey(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// ExtractRelations returns every next-page URL the document references, in
// document order. Relations under a view and at the document root are both
// collected; duplicates are not removed here (the frontier deduplicates).
// Absent fields yield an empty result, never an error.
func ExtractRelations(doc Document) []string {
	var urls []string

	if view, ok := firstKey(doc, viewKeys); ok {
		switch v := view.(type) {
		case map[string]any:
			if rel, ok := firstKey(v, relationKeys); ok {
				urls = append(urls, nodeURLs(rel)...)
			}
		case []any:
			for _, item := range v {
				obj, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if rel, ok := firstKey(obj, relationKeys); ok {
					urls = append(urls, nodeURLs(rel)...)
				}
			}
		}
	}

	if rel, ok := firstKey(doc, relationKeys); ok {
		urls = append(urls, nodeURLs(rel)...)
	}

	return urls
}

// nodeURLs pulls target URLs out of a relation value, which may be a single
// relation object or a list of them. A relation's node is either a URL string
// or an object identified by @id/id.
func nodeURLs(relation any) []string {
	var urls []string

	switch rel := relation.(type) {
	case map[string]any:
		node, ok := firstKey(rel, nodeKeys)
		if !ok {
			return nil
		}
		switch n := node.(type) {
		case string:
			urls = append(urls, n)
		case map[string]any:
			if id, ok := firstKey(n, idKeys); ok {
				if s, ok := id.(string); ok {
					urls = append(urls, s)
				}
			}
		}
	case []any:
		for _, item := range rel {
			urls = append(urls, nodeURLs(item)...)
		}
	}

	return urls
}

// ExtractMembers returns the raw member records a page document contains,
// flattened in source order. No dedup: member identity is the engine's job.
func ExtractMembers(doc Document) []map[string]any {
	var members []map[string]any

	for _, key := range memberKeys {
		switch v := doc[key].(type) {
		case []any:
			for _, item := range v {
				if m, ok := item.(map[string]any); ok {
					members = append(members, m)
				}
			}
		case map[string]any:
			members = append(members, v)
		}
	}

	return members
}

// MemberID computes the canonical identity of a member record. The first
// present candidate field wins, unwrapped one level when its value is an
// object carrying @id/id. Records with none of the candidates fall back to a
// SHA-256 digest of their canonical JSON form, so every member has a stable,
// content-derived identity.
func MemberID(member map[string]any) string {
	for _, key := range identityKeys {
		v, ok := member[key]
		if !ok {
			continue
		}
		switch id := v.(type) {
		case string:
			return id
		case map[string]any:
			if nested, ok := firstKey(id, idKeys); ok {
				if s, ok := nested.(string); ok {
					return s
				}
			}
		}
	}

	digest, err := hashpkg.CanonicalJSON(member)
	if err != nil {
		// Unmarshalable values cannot come from a decoded JSON document;
		// fmt prints maps with sorted keys, so this stays deterministic.
		return hashpkg.Sum([]byte(fmt.Sprintf("%v", member)))
	}
	return digest
}

// DocumentContext returns the document's @context, or nil.
func DocumentContext(doc Document) any {
	v, _ := firstKey(doc, contextKeys)
	return v
}

// IsEventStream reports whether the document declares itself a collection
// root rather than a single page.
func IsEventStream(doc Document) bool {
	v, ok := firstKey(doc, typeKeys)
	if !ok {
		return false
	}
	s, ok := v.(string)
	return ok && s == eventStreamType
}
