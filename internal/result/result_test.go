package result

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultVariantsAreExclusive(t *testing.T) {
	ok := Success(42)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsFailure())
	v, present := ok.Get()
	assert.True(t, present)
	assert.Equal(t, 42, v)
	assert.NoError(t, ok.Err())

	boom := errors.New("boom")
	bad := Failure[int](boom)
	assert.False(t, bad.IsSuccess())
	assert.True(t, bad.IsFailure())
	_, present = bad.Get()
	assert.False(t, present)
	assert.Equal(t, 0, bad.GetOrZero())
	assert.ErrorIs(t, bad.Err(), boom)
}

func TestFailureWithNilErrorStaysFailure(t *testing.T) {
	r := Failure[string](nil)
	require.True(t, r.IsFailure())
	assert.ErrorIs(t, r.Err(), ErrUnspecified)
}

func TestOfAdaptsValueErrorPairs(t *testing.T) {
	assert.True(t, Of(strconv.Atoi("12")).IsSuccess())
	assert.True(t, Of(strconv.Atoi("x")).IsFailure())
}

func TestMapShortCircuitsOnFailure(t *testing.T) {
	called := false
	r := Map(Failure[int](errors.New("nope")), func(v int) string {
		called = true
		return strconv.Itoa(v)
	})
	assert.False(t, called)
	assert.EqualError(t, r.Err(), "nope")

	mapped := Map(Success(7), strconv.Itoa)
	assert.Equal(t, "7", mapped.GetOrZero())
}

func TestFlatMapShortCircuitsOnFailure(t *testing.T) {
	called := false
	r := FlatMap(Failure[int](errors.New("first")), func(int) Result[int] {
		called = true
		return Success(1)
	})
	assert.False(t, called)
	assert.EqualError(t, r.Err(), "first")

	chained := FlatMap(Success(2), func(v int) Result[int] {
		return Failure[int](errors.New("second"))
	})
	assert.EqualError(t, chained.Err(), "second")
}

func TestMapErr(t *testing.T) {
	wrapped := MapErr(Failure[int](errors.New("inner")), func(err error) error {
		return errors.Join(errors.New("outer"), err)
	})
	assert.ErrorContains(t, wrapped.Err(), "outer")

	untouched := MapErr(Success(1), func(error) error {
		t.Fatal("MapErr must not run on success")
		return nil
	})
	assert.Equal(t, 1, untouched.GetOrZero())

	assert.Equal(t, 9, Failure[int](errors.New("x")).GetOrElse(9))
}

func TestCallbacks(t *testing.T) {
	var seen []string
	Success("a").OnSuccess(func(s string) { seen = append(seen, s) }).OnFailure(func(error) { seen = append(seen, "fail") })
	Failure[string](errors.New("b")).OnSuccess(func(s string) { seen = append(seen, s) }).OnFailure(func(err error) { seen = append(seen, err.Error()) })
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestOptional(t *testing.T) {
	some := Some("x")
	assert.True(t, some.IsPresent())
	assert.Equal(t, "x", some.OrElse("y"))

	none := None[string]()
	assert.True(t, none.IsAbsent())
	assert.Equal(t, "y", none.OrElse("y"))

	called := false
	mapped := MapOptional(none, func(s string) int {
		called = true
		return len(s)
	})
	assert.False(t, called)
	assert.True(t, mapped.IsAbsent())

	assert.Equal(t, 1, MapOptional(some, func(s string) int { return len(s) }).OrElse(0))
	assert.True(t, OfNonEmpty("").IsAbsent())
	assert.True(t, OfNilable[int](nil).IsAbsent())

	n := 3
	assert.Equal(t, 3, OfNilable(&n).OrElse(0))
	assert.True(t, Filter(Some(4), func(v int) bool { return v > 5 }).IsAbsent())
}

func TestOptionalOrFail(t *testing.T) {
	sentinel := errors.New("missing")
	assert.ErrorIs(t, None[int]().OrFail(sentinel).Err(), sentinel)
	assert.Equal(t, 5, Some(5).OrFail(sentinel).GetOrZero())
}
