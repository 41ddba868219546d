package annotation

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	schema "github.com/speakeasy-api/schemaannotate"
)

// Fingerprinter provides schema canonicalization and hashing with caching.
// Graphs must not be mutated after they were fingerprinted with the same
// Fingerprinter.
type Fingerprinter struct {
	mu       sync.RWMutex
	cache    map[schema.Schema]string // schema node → fingerprint hex
	maxDepth int                      // Guardrail for pathological graphs
}

// NewFingerprinter creates a new fingerprinter
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{
		cache:    make(map[schema.Schema]string, 256),
		maxDepth: 1000,
	}
}

// Fingerprint returns a deterministic hex fingerprint covering structure,
// declared properties and resolved properties.
func (fp *Fingerprinter) Fingerprint(s schema.Schema) string {
	if s == nil {
		return "bottom"
	}

	fp.mu.RLock()
	if sum, ok := fp.cache[s]; ok {
		fp.mu.RUnlock()
		return sum
	}
	fp.mu.RUnlock()

	ctx := newCanonCtx(fp.maxDepth)
	w := newCanonWriter()
	encodeNode(s, ctx, w)
	sum := sha256.Sum256(w.Bytes())
	hex := fmt.Sprintf("%x", sum[:])

	fp.mu.Lock()
	fp.cache[s] = hex
	fp.mu.Unlock()

	return hex
}

// Reset clears the cache
func (fp *Fingerprinter) Reset() {
	fp.mu.Lock()
	fp.cache = make(map[schema.Schema]string, 256)
	fp.mu.Unlock()
}

// canonCtx holds state for a single canonicalization traversal
type canonCtx struct {
	inProgress map[schema.Schema]int    // Cycle detection: node → cycle ID
	nextID     int                      // Next cycle ID to assign
	localMemo  map[schema.Schema][]byte // Per-call memoization for shared subtrees
	depth      int
	maxDepth   int
}

func newCanonCtx(maxDepth int) *canonCtx {
	return &canonCtx{
		inProgress: make(map[schema.Schema]int, 64),
		localMemo:  make(map[schema.Schema][]byte, 128),
		nextID:     1,
		maxDepth:   maxDepth,
	}
}

func encodeNode(s schema.Schema, ctx *canonCtx, w *canonWriter) {
	ctx.depth++
	if ctx.depth > ctx.maxDepth {
		w.WriteString("{\"$max_depth\":true}")
		ctx.depth--
		return
	}
	defer func() { ctx.depth-- }()

	if s == nil {
		w.WriteString("{\"$bottom\":true}")
		return
	}
	if cached, ok := ctx.localMemo[s]; ok {
		w.Write(cached)
		return
	}
	if id, inProgress := ctx.inProgress[s]; inProgress {
		w.WriteString(fmt.Sprintf("{\"$cycle\":%d}", id))
		return
	}

	id := ctx.nextID
	ctx.nextID++
	ctx.inProgress[s] = id

	startPos := w.Len()
	w.WriteByte('{')

	first := true
	writeField := func(key string, fn func()) {
		if !first {
			w.WriteByte(',')
		}
		first = false
		w.WriteString(fmt.Sprintf("%q:", key))
		fn()
	}

	writeField("kind", func() { w.WriteString(fmt.Sprintf("%q", s.Kind())) })
	if name, ok := schema.FullNameOf(s); ok {
		writeField("name", func() { w.WriteString(fmt.Sprintf("%q", name)) })
	}
	if len(s.Properties()) > 0 {
		writeField("properties", func() { encodeProperties(s.Properties(), w) })
	}
	if len(s.ResolvedProperties()) > 0 {
		writeField("resolved", func() { encodeProperties(s.ResolvedProperties(), w) })
	}

	switch v := s.(type) {
	case *schema.Primitive:
		writeField("type", func() { w.WriteString(fmt.Sprintf("%q", v.Type)) })
	case *schema.Enum:
		writeField("symbols", func() { encodeStrings(v.Symbols, w) })
	case *schema.Fixed:
		writeField("size", func() { w.WriteString(fmt.Sprintf("%d", v.Size)) })
	case *schema.Record:
		if len(v.Fields) > 0 {
			writeField("fields", func() {
				w.WriteByte('[')
				for i, f := range v.Fields {
					if i > 0 {
						w.WriteByte(',')
					}
					w.WriteString(fmt.Sprintf("{%q:", f.Name))
					if len(f.Properties) > 0 {
						w.WriteString("{\"properties\":")
						encodeProperties(f.Properties, w)
						w.WriteString(",\"type\":")
						encodeNode(f.Type, ctx, w)
						w.WriteByte('}')
					} else {
						encodeNode(f.Type, ctx, w)
					}
					w.WriteByte('}')
				}
				w.WriteByte(']')
			})
		}
	case *schema.Union:
		// Member order is significant for unions.
		writeField("members", func() {
			w.WriteByte('[')
			for i, m := range v.Members {
				if i > 0 {
					w.WriteByte(',')
				}
				w.WriteString(fmt.Sprintf("{%q:", m.Key()))
				encodeNode(m.Type, ctx, w)
				w.WriteByte('}')
			}
			w.WriteByte(']')
		})
	case *schema.Map:
		writeField("values", func() { encodeNode(v.Values, ctx, w) })
		if v.Key != nil {
			writeField("key", func() { encodeNode(v.Key, ctx, w) })
		}
	case *schema.Array:
		writeField("items", func() { encodeNode(v.Items, ctx, w) })
	case *schema.Typeref:
		writeField("ref", func() { encodeNode(v.Ref, ctx, w) })
	}

	w.WriteByte('}')

	delete(ctx.inProgress, s)
	ctx.localMemo[s] = w.BytesFrom(startPos)
}

// encodeProperties renders a property map canonically. Values go through
// YAML, which sorts map keys.
func encodeProperties(p schema.Properties, w *canonWriter) {
	keys := p.Keys()
	w.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(fmt.Sprintf("%q:", k))
		w.WriteString(fmt.Sprintf("%q", canonicalValue(p[k])))
	}
	w.WriteByte('}')
}

func canonicalValue(v any) string {
	if p, ok := v.(schema.Properties); ok {
		v = map[string]any(p)
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(out)
}

// encodeStrings keeps declaration order; enum symbol order is part of the
// type.
func encodeStrings(in []string, w *canonWriter) {
	w.WriteByte('[')
	for i, s := range in {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteString(fmt.Sprintf("%q", s))
	}
	w.WriteByte(']')
}

// canonWriter is a simple buffer for building canonical representations
type canonWriter struct {
	buf []byte
}

func newCanonWriter() *canonWriter {
	return &canonWriter{buf: make([]byte, 0, 1024)}
}

func (w *canonWriter) Write(p []byte) {
	w.buf = append(w.buf, p...)
}

func (w *canonWriter) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

func (w *canonWriter) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

func (w *canonWriter) Bytes() []byte {
	return w.buf
}

// BytesFrom returns a copy of the buffer from start, safe to keep after
// further writes.
func (w *canonWriter) BytesFrom(start int) []byte {
	out := make([]byte, w.Len()-start)
	copy(out, w.buf[start:])
	return out
}

func (w *canonWriter) Len() int {
	return len(w.buf)
}
