package exhibit

import (
	"testing"

	"github.com/matryer/is"
)

func TestCompareNumbers(t *testing.T) {
	is := is.New(t)

	is.Equal(Compare(1.0, 10.0), -1)
	is.Equal(Compare(20, 5.0), 1)
	is.Equal(Compare(int64(4), 4.0), 0)
}

func TestCompareMixedTypes(t *testing.T) {
	is := is.New(t)

	is.Equal(Compare(nil, 0.0), -1)
	is.Equal(Compare("2015-01-01", 99.0), 1)
	is.Equal(Compare(true, false), 1)
	is.Equal(Compare(nil, nil), 0)
	is.Equal(Compare("a", "b"), -1)
}

func TestKey(t *testing.T) {
	is := is.New(t)

	k, ok := Key(42.0)
	is.True(ok)
	is.Equal(k, "42")

	k, _ = Key(1.5)
	is.Equal(k, "1.5")

	k, _ = Key("X")
	is.Equal(k, "X")

	_, ok = Key(nil)
	is.True(!ok)
}
