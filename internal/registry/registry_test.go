package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	shape := ObjectOf(map[string]*Shape{"foo": Prim(String)})
	r.Register("services.storage.db", shape)

	got, ok := r.Lookup("services.storage.db")
	assert.True(t, ok)
	assert.Same(t, shape, got)
}

func TestLookupMissingPathReturnsFalse(t *testing.T) {
	r := New()
	_, ok := r.Lookup("nowhere")
	assert.False(t, ok)
}

func TestRegisterOverwritesPreviousShape(t *testing.T) {
	r := New()
	r.Register("mod", Prim(Number))
	r.Register("mod", Prim(String))
	got, ok := r.Lookup("mod")
	assert.True(t, ok)
	assert.Equal(t, String, got.Kind)
}

func TestClearRemovesAllEntries(t *testing.T) {
	r := New()
	r.Register("a", Prim(Any))
	r.Register("b", Prim(Any))
	r.Clear()
	assert.Empty(t, r.Paths())
}

func TestPathsListsRegisteredModules(t *testing.T) {
	r := New()
	r.Register("a.b", Prim(Any))
	r.Register("c.d", Prim(Any))
	paths := r.Paths()
	assert.ElementsMatch(t, []string{"a.b", "c.d"}, paths)
}

func TestConcurrentRegisterAndLookup(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r.Register("mod", Prim(Number))
			r.Lookup("mod")
		}(i)
	}
	wg.Wait()
	_, ok := r.Lookup("mod")
	assert.True(t, ok)
}

func TestCompatibleAnyAndUnknownAreWildcards(t *testing.T) {
	assert.True(t, Compatible(Prim(Any), Prim(String)))
	assert.True(t, Compatible(Prim(String), Prim(Any)))
	assert.True(t, Compatible(Prim(Unknown), Prim(Number)))
}

func TestCompatibleArraysCompareByElement(t *testing.T) {
	assert.True(t, Compatible(ArrayOf(Prim(String)), ArrayOf(Prim(String))))
	assert.False(t, Compatible(ArrayOf(Prim(String)), ArrayOf(Prim(Number))))
}

func TestCompatibleObjectsRequireSubsetOfKeys(t *testing.T) {
	expected := ObjectOf(map[string]*Shape{"foo": Prim(String)})
	actual := ObjectOf(map[string]*Shape{"foo": Prim(String), "bar": Prim(Number)})
	assert.True(t, Compatible(expected, actual))

	missing := ObjectOf(map[string]*Shape{"bar": Prim(Number)})
	assert.False(t, Compatible(expected, missing))
}

func TestCompatibleFunctionsCompareParamsAndReturn(t *testing.T) {
	expected := FuncOf([]*Shape{Prim(Number)}, Prim(String))
	actual := FuncOf([]*Shape{Prim(Number)}, Prim(String))
	assert.True(t, Compatible(expected, actual))

	badReturn := FuncOf([]*Shape{Prim(Number)}, Prim(Number))
	assert.False(t, Compatible(expected, badReturn))
}

func TestCompatibleEnumsCompareByName(t *testing.T) {
	expected := EnumOf("Color", []string{"Red", "Green"})
	actual := EnumOf("Color", []string{"Red", "Green"})
	assert.True(t, Compatible(expected, actual))

	other := EnumOf("Status", []string{"Red", "Green"})
	assert.False(t, Compatible(expected, other))
}
