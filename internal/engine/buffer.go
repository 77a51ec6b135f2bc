package engine

// Buffer holds the tail of the word being typed, at most max runes long.
// wordLen counts every rune of the word, including evicted ones, so an
// overflowed word is never mistaken for the trigger its tail resembles.
type Buffer struct {
	max     int
	runes   []rune
	wordLen int
}

func NewBuffer(max int) *Buffer {
	return &Buffer{max: max, runes: make([]rune, 0, max)}
}

func (b *Buffer) Append(r rune) {
	b.wordLen++
	if b.max <= 0 {
		return
	}
	if len(b.runes) == b.max {
		copy(b.runes, b.runes[1:])
		b.runes = b.runes[:len(b.runes)-1]
	}
	b.runes = append(b.runes, r)
}

func (b *Buffer) Backspace() {
	if b.wordLen == 0 {
		return
	}
	b.wordLen--
	if len(b.runes) > 0 {
		b.runes = b.runes[:len(b.runes)-1]
	}
}

func (b *Buffer) Reset() {
	b.runes = b.runes[:0]
	b.wordLen = 0
}

func (b *Buffer) Len() int {
	return len(b.runes)
}

// Overflowed reports whether runes of the current word were evicted.
func (b *Buffer) Overflowed() bool {
	return b.wordLen > len(b.runes)
}

func (b *Buffer) String() string {
	return string(b.runes)
}
