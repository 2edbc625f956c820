package entity

// Walker is a function called for each entity of a tree. The top-level entity
// is at depth 0 and i is the index of the entity within its parent.
type Walker func(depth, i int, e *Entity) error

// Walk performs a depth first search of the tree starting with e itself. It
// calls the Walker for each entity. If the Walker returns an error, then
// processing stops immediately and the error is returned.
func (w Walker) Walk(e *Entity) error {
	type part struct {
		depth int
		i     int
		e     *Entity
	}

	openStack := make([]part, 0, 10)

	pushStack := func(depth int, e *Entity) {
		if parts, err := e.GetParts(); err == nil {
			for i := len(parts) - 1; i >= 0; i-- {
				openStack = append(openStack, part{depth, i, parts[i]})
			}
		}
	}

	popStack := func() part {
		end := len(openStack) - 1
		p := openStack[end]
		openStack = openStack[:end]
		return p
	}

	openStack = append(openStack, part{0, 0, e})
	for len(openStack) > 0 {
		p := popStack()
		if err := w(p.depth, p.i, p.e); err != nil {
			return err
		}
		pushStack(p.depth+1, p.e)
	}

	return nil
}

// WalkSingle calls the Walker only for entities with a single body.
func (w Walker) WalkSingle(e *Entity) error {
	var sw Walker = func(depth, i int, part *Entity) error {
		if !part.IsMultipart() {
			return w(depth, i, part)
		}
		return nil
	}
	return sw.Walk(e)
}

// WalkMultipart calls the Walker only for multipart entities.
func (w Walker) WalkMultipart(e *Entity) error {
	var mw Walker = func(depth, i int, part *Entity) error {
		if part.IsMultipart() {
			return w(depth, i, part)
		}
		return nil
	}
	return mw.Walk(e)
}
