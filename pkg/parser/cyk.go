package parser

// dpNode is one derivation in the chart. For leaves r1 holds the input
// character and r2 the matched rule.
type dpNode struct {
	r1, r2      uint64
	left, right *dpNode
}

// dpCell keeps derivations per rule in insertion order; the first
// derivation found for a rule wins.
type dpCell struct {
	rules []uint64
	nodes map[uint64]*dpNode
}

func (c *dpCell) add(rule uint64, node *dpNode) {
	if c.nodes == nil {
		c.nodes = make(map[uint64]*dpNode)
	} else if _, ok := c.nodes[rule]; ok {
		return
	}
	c.nodes[rule] = node
	c.rules = append(c.rules, rule)
}

// Recognize reports whether text is in the grammar's language.
func (g *Grammar) Recognize(text string) bool {
	return g.parseTree(text) != nil
}

// parseTree runs the CYK recognizer and returns the derivation tree rooted
// at the start rule, or nil when text is not in the language.
func (g *Grammar) parseTree(text string) *TreeNode {
	input := []rune(text)
	if g.usedEOF {
		input = append(input, EOFSign)
	}
	n := len(input)
	if n == 0 {
		return nil
	}

	// dp[i][j] holds the rules deriving input[i : i+j+1]
	dp := make([][]dpCell, n)
	// ks[i] marks the span lengths starting at i that derive anything
	ks := make([]*Bitfield, n)
	for i := range n {
		dp[i] = make([]dpCell, n-i)
		ks[i] = NewBitfield(n)
	}

	for i, c := range input {
		rules, ok := g.tToNT[c]
		if !ok {
			return nil
		}
		for _, r := range rules {
			dp[i][0].add(r, &dpNode{r1: uint64(c), r2: r})
		}
		ks[i].Add(0)
	}

	for i := 1; i < n; i++ {
		for j := 0; j < n-i; j++ {
			target := &dp[j][i]
			for k := range ks[j].Positions() {
				right, span := j+1+k, i-1-k
				if span < 0 {
					break
				}
				if !ks[right].Has(span) {
					continue
				}
				leftCell, rightCell := &dp[j][k], &dp[right][span]
				for _, r1 := range leftCell.rules {
					partners := g.rightPair[r1]
					if partners == nil {
						continue
					}
					for _, r2 := range rightCell.rules {
						if !partners.Has(int(r2)) {
							continue
						}
						node := &dpNode{r1: r1, r2: r2, left: leftCell.nodes[r1], right: rightCell.nodes[r2]}
						for _, parent := range g.ntToNT[pairKey(r1, r2)] {
							target.add(parent, node)
						}
					}
				}
			}
			if len(target.rules) > 0 {
				ks[j].Add(i)
			}
		}
	}

	root, ok := dp[0][n-1].nodes[startRule]
	if !ok {
		return nil
	}
	tree := g.newNode(startRule)
	g.fillTree(tree, root)
	return tree
}

func (g *Grammar) newNode(rule uint64) *TreeNode {
	info, ok := g.rules[rule]
	return &TreeNode{rule: rule, info: info, fire: ok}
}

// fillTree materializes a derivation, re-inserting the unit-production
// chain between the rule of node and the pair or character it came from.
func (g *Grammar) fillTree(node *TreeNode, dn *dpNode) {
	var bottom, top uint64
	if dn.left != nil {
		bottom = pairKey(dn.r1, dn.r2)
		top = node.rule
	} else {
		top = dn.r2
		bottom = g.originalTToNT[rune(dn.r1)]
	}

	if bottom != top {
		for _, rule := range g.substitution[substKey{bottom: bottom, top: top}] {
			node.left = g.newNode(rule)
			node = node.left
		}
	}

	if dn.left == nil {
		node.terminal = rune(dn.r1)
		node.leaf = true
		return
	}
	node.left = g.newNode(dn.r1)
	node.right = g.newNode(dn.r2)
	g.fillTree(node.left, dn.left)
	g.fillTree(node.right, dn.right)
}
