package blog

import (
	"testing"
	"time"
)

func TestNewPostIDSortsChronologically(t *testing.T) {
	earlier := NewPostID(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	later := NewPostID(time.Date(2025, 3, 1, 10, 0, 1, 0, time.UTC))
	if !(earlier < later) {
		t.Errorf("ids should sort by creation time: %s !< %s", earlier, later)
	}
}

func TestPostLink(t *testing.T) {
	p := Post{Slug: "hello-world"}
	if got := p.Link(); got != "/blog/hello-world/" {
		t.Errorf("Link() = %q", got)
	}
}

func TestCommentsOpen(t *testing.T) {
	pub := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Post{PubDate: pub}

	if !p.CommentsOpen(0, pub.AddDate(10, 0, 0)) {
		t.Error("a zero window should keep comments open forever")
	}
	if !p.CommentsOpen(30, pub.AddDate(0, 0, 29)) {
		t.Error("comments should still be open inside the window")
	}
	if p.CommentsOpen(30, pub.AddDate(0, 0, 31)) {
		t.Error("comments should be closed past the window")
	}
}
