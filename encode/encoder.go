// Package encode is the Attribute Encoder collaborator from spec.md §4.4: a
// dictionary that dense-encodes one or more string columns into int32 codes
// sharing a single dictionary, with inverse decoding. Grounded on
// thusithakit-golang-practice/internal/engine/loader.go's forward-dict
// (map[string]int32) + inverse-list ([]string) pattern, collapsed to a
// single dictionary rather than loader.go's per-worker-then-merge scheme,
// since spec.md §5 rules out internal task spawning for the core.
package encode

// AttributeEncoder assigns dense, monotonically increasing int32 codes to
// distinct strings, starting at 1 (spec.md §3: "forward map ... monotonically
// assigned, starting at 1").
type AttributeEncoder struct {
	forward map[string]int32
	inverse []string // inverse[code-1] == string
}

func New() *AttributeEncoder {
	return &AttributeEncoder{forward: make(map[string]int32)}
}

func (e *AttributeEncoder) codeFor(s string) int32 {
	if code, ok := e.forward[s]; ok {
		return code
	}
	code := int32(len(e.inverse) + 1)
	e.forward[s] = code
	e.inverse = append(e.inverse, s)
	return code
}

// EncodeKeyValueAttributes encodes keyColumns followed by valueColumns with
// one shared dictionary, returning one int32 slice per input column in the
// same positional order (spec.md §4.4). Null values are not permitted; the
// caller is expected to have already excluded them, per spec.md §4.4.
func (e *AttributeEncoder) EncodeKeyValueAttributes(keyColumns, valueColumns [][]string) [][]int32 {
	out := make([][]int32, 0, len(keyColumns)+len(valueColumns))
	for _, col := range keyColumns {
		out = append(out, e.encodeColumn(col))
	}
	for _, col := range valueColumns {
		out = append(out, e.encodeColumn(col))
	}
	return out
}

func (e *AttributeEncoder) encodeColumn(col []string) []int32 {
	codes := make([]int32, len(col))
	for i, s := range col {
		codes[i] = e.codeFor(s)
	}
	return codes
}

// DecodeValue inverts a previously issued code (spec.md §8 law 4:
// decode(encode(s)) == s). It panics on an unknown code, since spec.md §4.4
// guarantees decoding is only ever asked of "any code previously issued" by
// this same encoder — an unknown code is a caller bug, not a runtime input.
func (e *AttributeEncoder) DecodeValue(code int32) string {
	idx := code - 1
	if idx < 0 || int(idx) >= len(e.inverse) {
		panic("encode: decode of code never issued by this encoder")
	}
	return e.inverse[idx]
}
