package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw string

		wantErr     bool
		wantKind    Kind
		wantNegated bool
		wantPrefix  string
	}{
		{raw: "fly", wantKind: Exact, wantPrefix: "fly"},
		{raw: "admin.ban", wantKind: Exact, wantPrefix: "admin.ban"},
		{raw: "admin.*", wantKind: Wildcard, wantPrefix: "admin."},
		{raw: "tp*", wantKind: Wildcard, wantPrefix: "tp"},
		{raw: "*", wantKind: Wildcard, wantPrefix: ""},
		{raw: "-fly", wantKind: Exact, wantNegated: true, wantPrefix: "fly"},
		{raw: "-admin.*", wantKind: Wildcard, wantNegated: true, wantPrefix: "admin."},
		{raw: "-*", wantKind: Wildcard, wantNegated: true, wantPrefix: ""},
		{raw: "some-node_1.x", wantKind: Exact, wantPrefix: "some-node_1.x"},

		{raw: "", wantErr: true},
		{raw: "-", wantErr: true},
		{raw: "ad*min", wantErr: true},
		{raw: "**", wantErr: true},
		{raw: "has space", wantErr: true},
		{raw: "newline\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			node, err := Parse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, Valid(tt.raw))
				return
			}
			assert.NoError(t, err)
			assert.True(t, Valid(tt.raw))
			assert.Equal(t, tt.raw, node.Raw())
			assert.Equal(t, tt.wantKind, node.Kind())
			assert.Equal(t, tt.wantNegated, node.Negated())
			assert.Equal(t, tt.wantPrefix, node.Prefix())
		})
	}
}

func TestNode_Matches(t *testing.T) {
	tests := []struct {
		node string
		perm string
		want bool
	}{
		{node: "fly", perm: "fly", want: true},
		{node: "fly", perm: "fly.fast", want: false},
		{node: "admin.*", perm: "admin.ban", want: true},
		{node: "admin.*", perm: "admin", want: false},
		{node: "admin.*", perm: "fly", want: false},
		{node: "*", perm: "anything.at.all", want: true},
		// The negation flag is not Matches' concern.
		{node: "-admin.*", perm: "admin.ban", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.node+"/"+tt.perm, func(t *testing.T) {
			node, err := Parse(tt.node)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, node.Matches(tt.perm))
		})
	}
}

func TestNode_Scope(t *testing.T) {
	wide, _ := Parse("admin.*")
	narrow, _ := Parse("admin.ban.*")
	global, _ := Parse("*")

	assert.Greater(t, narrow.Scope(), wide.Scope())
	assert.Equal(t, 0, global.Scope())
	assert.True(t, global.Global())
	assert.False(t, wide.Global())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(Info{Node: ""}))
	assert.NoError(t, r.Register(Info{Node: "admin.ban", Description: "ban players", Owner: "moderation"}))
	assert.NoError(t, r.Register(Info{Node: "admin.kick", Owner: "moderation"}))
	assert.NoError(t, r.Register(Info{Node: "admin.*", Wildcard: true}))

	all := r.All()
	assert.Len(t, all, 3)
	assert.Equal(t, "admin.*", all[0].Node)

	// Wildcard entries are metadata only, never expansion targets.
	assert.Equal(t, []string{"admin.ban", "admin.kick"}, r.Nodes())

	// Re-registering replaces the entry.
	assert.NoError(t, r.Register(Info{Node: "admin.ban", Description: "updated"}))
	assert.Len(t, r.All(), 3)
}
