// Package policy 集中放置授权判定，handler 内不再散落 owner 判断。
package policy

import "yatube/internal/model"

type Action string

const (
	ActionEditPost Action = "post:edit"
)

// Allow 判定 userID 能否对帖子执行 action
func Allow(action Action, userID uint64, post *model.Post) bool {
	switch action {
	case ActionEditPost:
		return post.AuthorID == userID
	default:
		return false
	}
}
