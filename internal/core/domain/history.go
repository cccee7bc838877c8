package domain

// History is the conversation transcript, one entry per turn, each prefixed
// with its role ("User: ..." / "Assistant: ..."). It is owned and mutated by
// the front-end; the RAG core only ever reads a suffix of it.
type History []string

// Window returns the most recent n entries. Entries are never split, so the
// suffix always starts at a turn boundary.
func (h History) Window(n int) History {
	if n <= 0 || len(h) == 0 {
		return nil
	}
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}
