package hir

// scope is one lexical level of the resolution chain.
type scope struct {
	names map[string]LocalID
}

// scopeChain resolves identifiers innermost-first.
type scopeChain struct {
	scopes []scope
}

func (c *scopeChain) push() {
	c.scopes = append(c.scopes, scope{names: make(map[string]LocalID)})
}

func (c *scopeChain) pop() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// declare binds name in the innermost scope. Returns false when the
// name is already declared at this level.
func (c *scopeChain) declare(name string, id LocalID) bool {
	top := c.scopes[len(c.scopes)-1]
	if _, exists := top.names[name]; exists {
		return false
	}
	top.names[name] = id
	return true
}

// resolve walks the chain innermost-first.
func (c *scopeChain) resolve(name string) (LocalID, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if id, ok := c.scopes[i].names[name]; ok {
			return id, true
		}
	}
	return NoLocalID, false
}
