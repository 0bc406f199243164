package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ref"
)

func TestIndex_Resolve(t *testing.T) {
	ix, err := Build(sampleTree(), testRegistry())
	require.NoError(t, err)

	tests := []struct {
		name        string
		raw         string
		from        string
		wantKey     string
		wantSub     string
		wantOwner   string
		wantVisible bool
	}{
		{"earlier step", "{{__1.docid}}", "3", "__1.docid", "", "1", true},
		{"sub path", "{{__0.source.id.name}}", "1", "__0.source.id", "name", "0", true},
		{"sibling arm", "{{__3.docid}}", "5", "__3.docid", "", "3", false},
		{"same step", "{{__1.docid}}", "1", "__1.docid", "", "1", false},
		{"loop value inside", "{{__6.value}}", "7", "__6.value", "", "6", true},
		{"loop value outside", "{{__6.value}}", "8", "__6.value", "", "6", true},
		{"global", "{{__g_authorization}}", "0", "__g_authorization", "", domain.GlobalScopeID, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ix.Resolve(tt.raw, tt.from)
			require.NoError(t, err)
			assert.True(t, res.Resolved)
			assert.Equal(t, tt.wantKey, res.Key)
			assert.Equal(t, tt.wantSub, res.SubPath)
			assert.Equal(t, tt.wantOwner, res.Owner)
			assert.Equal(t, tt.wantVisible, res.Visible)
			require.NotNil(t, res.Output)
		})
	}
}

func TestIndex_ResolveUnbound(t *testing.T) {
	ix, err := Build(sampleTree(), testRegistry())
	require.NoError(t, err)

	res, err := ix.Resolve("{{__42.nothing}}", "8")
	require.NoError(t, err)
	assert.False(t, res.Resolved)
	assert.False(t, res.Visible)
	assert.Nil(t, res.Output)

	_, err = ix.Resolve("plain text", "8")
	assert.ErrorIs(t, err, ErrNotReference)

	_, err = ix.Resolve("{{__1.docid}}", "missing")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestIndex_ResolveFromNil(t *testing.T) {
	ix, err := Build(sampleTree(), testRegistry())
	require.NoError(t, err)

	res := ix.ResolveFrom(ref.MustParse("{{__1.docid}}"), nil)
	assert.True(t, res.Resolved)
	assert.False(t, res.Visible)
}
