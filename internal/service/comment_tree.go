package service

import (
	"karmafeed/internal/models"
)

// BuildCommentTree assembles the flat rows of a single post into a forest.
// Rows must be in creation order; siblings keep that order. A comment whose
// parent is not among the rows is promoted to a root. The result is never nil.
func BuildCommentTree(rows []*models.Comment) []*models.CommentNode {
	roots, _ := buildCommentTree(rows)
	return roots
}

// buildCommentTree also reports the deepest reply level (0 for roots only).
func buildCommentTree(rows []*models.Comment) ([]*models.CommentNode, int) {
	nodes := make(map[uint]*models.CommentNode, len(rows))
	for _, row := range rows {
		nodes[row.ID] = &models.CommentNode{
			ID:           row.ID,
			Post:         row.PostID,
			Parent:       row.ParentID,
			Author:       row.Author,
			Content:      row.Content,
			CreatedAt:    row.CreatedAt,
			LikeCount:    row.LikeCount,
			UserHasLiked: row.UserHasLiked,
			Replies:      []*models.CommentNode{},
		}
	}

	roots := []*models.CommentNode{}
	for _, row := range rows {
		node := nodes[row.ID]
		if row.ParentID != nil && *row.ParentID != row.ID {
			if parent, ok := nodes[*row.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, treeDepth(roots)
}

// treeDepth walks the forest iteratively so long reply chains cannot exhaust the stack.
func treeDepth(roots []*models.CommentNode) int {
	type frame struct {
		node  *models.CommentNode
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for _, r := range roots {
		stack = append(stack, frame{node: r})
	}

	deepest := 0
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > deepest {
			deepest = f.depth
		}
		for _, child := range f.node.Replies {
			stack = append(stack, frame{node: child, depth: f.depth + 1})
		}
	}
	return deepest
}
