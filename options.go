package iobuf

// Options is a compiled trie of candidate ByteStrings, used to select the
// first matching candidate out of a stream in a single pass (rather than
// trying each candidate's bytes in turn).
type Options struct {
	root *optionsNode
}

// optionsNode is one trie node: byte -> child, plus the index of a
// candidate that terminates here (or -1 if none does).
type optionsNode struct {
	children  map[byte]*optionsNode
	candidate int
}

func newOptionsNode() *optionsNode {
	return &optionsNode{children: make(map[byte]*optionsNode), candidate: -1}
}

// CompileStrings compiles a set of candidate byte strings into an Options
// trie. Candidates are tried in the order given when more than one is a
// prefix of another; Select commits to the longest match actually found
// by walking to the deepest node reached, not to the first candidate
// whose bytes happen to appear.
func CompileStrings(candidates ...ByteString) *Options {
	root := newOptionsNode()
	for i, c := range candidates {
		n := root
		length := c.Len()
		for j := 0; j < length; j++ {
			b := c.at(j)
			child, ok := n.children[b]
			if !ok {
				child = newOptionsNode()
				n.children[b] = child
			}
			n = child
		}
		if n.candidate == -1 {
			n.candidate = i
		}
	}
	return &Options{root: root}
}

// Select walks b's unread bytes against the trie without consuming any of
// them first; on a match it consumes exactly the matched candidate's
// bytes and returns its index, or -1 with no bytes consumed if nothing in
// the option set matches a prefix of b.
func (o *Options) Select(b *Buffer) (int, error) {
	n := o.root
	var matched int64 = -1
	matchedCandidate := -1

	var i int64
	for {
		if n.candidate != -1 {
			matched = i
			matchedCandidate = n.candidate
		}
		c, err := b.GetByte(i)
		if err != nil {
			break
		}
		child, ok := n.children[c]
		if !ok {
			break
		}
		n = child
		i++
	}

	if matchedCandidate == -1 {
		return -1, nil
	}
	if err := b.Skip(matched); err != nil {
		return -1, err
	}
	return matchedCandidate, nil
}
