package move

import (
	"testing"

	"github.com/matryer/is"
)

func TestSingle(t *testing.T) {
	is := is.New(t)
	m := Single(180)
	is.True(m.IsSingle())
	is.Equal(m.Cells(), []int{180})
	is.True(m.Contains(180))
	is.True(!m.Contains(NoCell))
}

func TestPair(t *testing.T) {
	is := is.New(t)
	m := New(10, 20)
	is.True(!m.IsSingle())
	is.Equal(m.Cells(), []int{10, 20})
	is.True(m.Contains(10))
	is.True(m.Contains(20))
	is.True(!m.Contains(30))
}

func TestEqualsIgnoresOrder(t *testing.T) {
	is := is.New(t)
	is.True(New(10, 20).Equals(New(20, 10)))
	is.True(New(10, 20).Equals(New(10, 20)))
	is.True(!New(10, 20).Equals(New(10, 21)))
	is.True(Single(10).Equals(Single(10)))
	is.True(!Single(10).Equals(New(10, 20)))
}
