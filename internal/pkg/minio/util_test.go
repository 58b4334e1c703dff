package minio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectNameFromURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain key", "posts/1/a.jpg", "posts/1/a.jpg"},
		{"leading slash", "/posts/1/a.jpg", "posts/1/a.jpg"},
		{"bucket prefixed path", "keystone/posts/1/a.jpg", "posts/1/a.jpg"},
		{"full url", "http://127.0.0.1:9000/keystone/posts/1/a.jpg", "posts/1/a.jpg"},
		{"url with query", "https://cdn.example.com/keystone/posts/2/b.mp4?x=1", "posts/2/b.mp4"},
		{"empty", "  ", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ObjectNameFromURL("keystone", c.in))
		})
	}
}

func TestDeleteMediaWithoutClient(t *testing.T) {
	var s *Store
	assert.Error(t, s.DeleteMedia(context.Background(), "posts/1/a.jpg"))
}
