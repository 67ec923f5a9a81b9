package rooms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreCreateAndGet(t *testing.T) {
	req := require.New(t)
	s := NewStore()
	now := time.Now()

	e, created := s.create("AB12", "host-1", now)
	req.True(created)
	req.Equal("AB12", e.room.Code)
	req.Equal("host-1", e.room.HostConnID)

	again, created := s.create("AB12", "host-2", now)
	req.False(created)
	req.Same(e, again, "existing entry must be returned, not replaced")
	req.Equal("host-1", again.room.HostConnID, "create does not reassign; the app does")

	req.Same(e, s.get("AB12"))
	req.Nil(s.get("MISSING"))
}

func TestStoreRemove(t *testing.T) {
	req := require.New(t)
	s := NewStore()

	s.create("AB12", "host-1", time.Now())
	s.create("CD34", "host-2", time.Now())
	req.Equal(2, s.Len())

	s.remove("AB12")
	req.Nil(s.get("AB12"))
	req.Equal(1, s.Len())
	req.Equal([]string{"CD34"}, s.Codes())
}

func TestStoreEntries(t *testing.T) {
	req := require.New(t)
	s := NewStore()

	s.create("AB12", "host-1", time.Now())
	s.create("CD34", "host-2", time.Now())

	req.Len(s.entries(), 2)
}
