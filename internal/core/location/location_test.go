package location

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockwise/internal/core/apperror"
	"stockwise/internal/core/id"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"warehouse", KindWarehouse, false},
		{"shop", KindShop, false},
		{" Shop ", KindShop, false},
		{"WAREHOUSE", KindWarehouse, false},
		{"store", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeInvalidLocationType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	v := id.New()

	ref, err := Parse("shop", v.String())
	require.NoError(t, err)
	assert.Equal(t, KindShop, ref.Kind())
	assert.Equal(t, v, ref.ID())
	assert.IsType(t, AtShop{}, ref)
	assert.Equal(t, "shop:"+v.String(), ref.String())

	_, err = Parse("warehouse", "not-a-uuid")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = Parse("depot", v.String())
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidLocationType))

	_, err = Parse("warehouse", id.Nil().String())
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestFromExclusive(t *testing.T) {
	w, s := id.New(), id.New()
	nilID := id.Nil()

	ref, err := FromExclusive(&w, nil)
	require.NoError(t, err)
	assert.True(t, Equal(ref, Warehouse(w)))

	ref, err = FromExclusive(&nilID, &s)
	require.NoError(t, err)
	assert.True(t, Equal(ref, Shop(s)))

	ref, err = FromExclusive(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, ref)

	_, err = FromExclusive(&w, &s)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidLocationType))
}

func TestEqual(t *testing.T) {
	v := id.New()

	assert.True(t, Equal(Warehouse(v), Warehouse(v)))
	assert.False(t, Equal(Warehouse(v), Shop(v)), "same id, different kind")
	assert.False(t, Equal(Warehouse(v), Warehouse(id.New())))
	assert.False(t, Equal(Warehouse(v), nil))
	assert.True(t, Equal(nil, nil))
}

func TestKeyOrdering(t *testing.T) {
	a, b := id.New(), id.New()
	if id.Compare(a, b) > 0 {
		a, b = b, a
	}

	keys := []Key{
		KeyOf(Shop(a)),
		KeyOf(Warehouse(b)),
		KeyOf(Shop(b)),
		KeyOf(Warehouse(a)),
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	assert.Equal(t, []Key{
		{Kind: KindWarehouse, ID: a},
		{Kind: KindWarehouse, ID: b},
		{Kind: KindShop, ID: a},
		{Kind: KindShop, ID: b},
	}, keys)

	assert.True(t, Equal(keys[2].Ref(), Shop(a)))
}

func TestMustNewPanicsOnUnknownKind(t *testing.T) {
	assert.Panics(t, func() { MustNew("depot", id.New()) })
}
