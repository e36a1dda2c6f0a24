package catalogs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry[int]("number")
	require.NoError(t, registry.Register("two", func() (int, error) { return 2, nil }))
	require.NoError(t, registry.Register("broken", func() (int, error) { return 0, errors.New("boom") }))
	assert.Error(t, registry.Register("two", func() (int, error) { return 3, nil }))

	got, err := registry.New("two")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	_, err = registry.New("broken")
	assert.Error(t, err)
	_, err = registry.New("three")
	assert.Error(t, err)

	assert.Equal(t, []string{"broken", "two"}, registry.Names())
	registry.Reset()
	assert.Empty(t, registry.Names())
}

func TestColumnMapping(t *testing.T) {
	plain := NewColumnMapping("redshift", "", Float)
	assert.Equal(t, "redshift", plain.Expression())
	assert.False(t, plain.IsTransform())

	same := NewColumnMapping("redshift", " redshift ", Float)
	assert.False(t, same.IsTransform())

	transform := NewColumnMapping("raJ2000", "ra*PI()/180.0", Float)
	assert.Equal(t, "ra*PI()/180.0", transform.Expression())
	assert.True(t, transform.IsTransform())

	assert.NoError(t, ValidateMappings([]ColumnMapping{plain, transform}))
	assert.Error(t, ValidateMappings([]ColumnMapping{plain, plain}))
	assert.Error(t, ValidateMappings([]ColumnMapping{{SourceExpression: "a"}}))
}
