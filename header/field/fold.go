package field

func isCRLF(c byte) bool  { return c == '\r' || c == '\n' }
func isSpace(c byte) bool { return c == ' ' || c == '\t' }

// Unfold takes a folded header value and unfolds it for reading. Every line
// break followed by folding whitespace is replaced with a single space. Line
// breaks not followed by whitespace are dropped. Continuation lines holding
// nothing but whitespace fold into the same single space.
func Unfold(f []byte) []byte {
	uf := make([]byte, 0, len(f))
	folded := false
	for i := 0; i < len(f); i++ {
		if !isCRLF(f[i]) {
			uf = append(uf, f[i])
			folded = false
			continue
		}

		for i+1 < len(f) && isCRLF(f[i+1]) {
			i++
		}

		if i+1 < len(f) && isSpace(f[i+1]) {
			for i+1 < len(f) && isSpace(f[i+1]) {
				i++
			}
			if !folded {
				uf = append(uf, ' ')
				folded = true
			}
		}
	}
	return uf
}
