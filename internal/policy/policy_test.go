package policy

import (
	"testing"

	"yatube/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestAllowEditPost(t *testing.T) {
	post := &model.Post{ID: 1, AuthorID: 7}

	assert.True(t, Allow(ActionEditPost, 7, post))
	assert.False(t, Allow(ActionEditPost, 8, post))
	assert.False(t, Allow(ActionEditPost, 0, post))
}

func TestAllowUnknownAction(t *testing.T) {
	post := &model.Post{ID: 1, AuthorID: 7}
	assert.False(t, Allow(Action("post:delete"), 7, post))
}
