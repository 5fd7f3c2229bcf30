package groups

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	foosball "github.com/kicktally/foosball-sync/repos/foosball"
)

func TestSanitizeGuestName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Lena", "Lena"},
		{"  Lena  ", "Lena"},
		{"Lena #1!", "Lena 1"},
		{"<script>", "script"},
		{"!!!", ""},
		{"", ""},
		{strings.Repeat("a", 30), strings.Repeat("a", 20)},
	}

	for _, c := range cases {
		if got := sanitizeGuestName(c.in); got != c.want {
			t.Errorf("sanitizeGuestName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildGuests(t *testing.T) {
	guests := buildGuests([]string{"Lena", "!!!", "Ole"})

	assert.Len(t, guests, 2, "unsanitizable names should be dropped")
	assert.Equal(t, "Lena", guests[0].Name)
	assert.Equal(t, "Ole", guests[1].Name)
	assert.NotEmpty(t, guests[0].ID)
	assert.NotEqual(t, guests[0].ID, guests[1].ID)
}

func TestIsAdmin(t *testing.T) {
	group := &foosball.Group{
		AdminUID: "creator",
		Members: map[string]foosball.Member{
			"creator": {Name: "Creator", Role: "admin"},
			"second":  {Name: "Second", Role: "admin"},
			"viewer":  {Name: "Viewer", Role: "viewer"},
		},
	}

	assert.True(t, isAdmin(group, "creator"))
	assert.True(t, isAdmin(group, "second"))
	assert.False(t, isAdmin(group, "viewer"))
	assert.False(t, isAdmin(group, "stranger"))
}
