package mesher

// maskWriter streams runs of cells into an opaque bitset. Each word holds
// one column of width cells, so a run crossing a column boundary continues
// at bit 0 of the next word.
type maskWriter struct {
	words []uint64
	width int
	full  uint64
	word  int
	bit   int
}

func newMaskWriter(words []uint64, d Dims) *maskWriter {
	return &maskWriter{words: words, width: d.CSP, full: d.columnMask()}
}

// writeRun advances the stream by n cells and sets their bits when opaque
// is true. Work is constant per column boundary crossed.
func (w *maskWriter) writeRun(n int, opaque bool) error {
	for n > 0 {
		free := w.width - w.bit
		switch {
		case n < free:
			if w.word >= len(w.words) {
				return ErrOverrun
			}
			if opaque {
				w.words[w.word] |= bitRange(w.bit, n)
			}
			w.bit += n
			n = 0
		case w.bit == 0 && n >= w.width:
			count := n / w.width
			if w.word+count > len(w.words) {
				return ErrOverrun
			}
			if opaque {
				for i := w.word; i < w.word+count; i++ {
					w.words[i] = w.full
				}
			}
			w.word += count
			n -= count * w.width
		default:
			if w.word >= len(w.words) {
				return ErrOverrun
			}
			if opaque {
				w.words[w.word] |= bitRange(w.bit, free)
			}
			n -= free
			w.word++
			w.bit = 0
		}
	}
	return nil
}

// bitRange returns n consecutive bits starting at low.
func bitRange(low, n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (1<<uint(n) - 1) << uint(low)
}
