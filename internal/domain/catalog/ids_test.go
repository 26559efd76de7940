package catalog

import (
	"testing"

	"github.com/google/uuid"
)

func TestAssignIDIsTimeOrdered(t *testing.T) {
	var prev uuid.UUID
	for i := 0; i < 50; i++ {
		p := &Product{}
		if err := p.BeforeCreate(nil); err != nil {
			t.Fatalf("BeforeCreate: %v", err)
		}
		if p.ID.Version() != 7 {
			t.Fatalf("expected v7 id, got version %d", p.ID.Version())
		}
		if i > 0 && p.ID.String() <= prev.String() {
			t.Fatalf("ids not increasing: %s then %s", prev, p.ID)
		}
		prev = p.ID
	}
	fixed := uuid.New()
	c := &ProductColor{ID: fixed}
	if err := c.BeforeCreate(nil); err != nil || c.ID != fixed {
		t.Fatalf("explicit id should be kept: got=%s err=%v", c.ID, err)
	}
}
