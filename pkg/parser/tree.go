package parser

import (
	"strconv"
	"strings"
)

// TreeNode is a node of the derivation tree handed to event callbacks.
type TreeNode struct {
	rule        uint64
	info        ruleInfo
	fire        bool
	left, right *TreeNode
	terminal    rune
	leaf        bool
}

// Rule returns the grammar rule name of the node, or "" for internal rules.
func (n *TreeNode) Rule() string {
	return n.info.name
}

// Text returns the input matched by the node without the EOF sign.
func (n *TreeNode) Text() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *TreeNode) writeText(sb *strings.Builder) {
	if n.leaf {
		if n.terminal != EOFSign {
			sb.WriteRune(n.terminal)
		}
		return
	}
	if n.left != nil {
		n.left.writeText(sb)
	}
	if n.right != nil {
		n.right.writeText(sb)
	}
}

// Int parses the matched text as a decimal integer.
func (n *TreeNode) Int() (int, error) {
	return strconv.Atoi(n.Text())
}
