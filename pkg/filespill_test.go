package pkg

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect[T any](t *testing.T, spill FileSpill[T]) []T {
	t.Helper()

	var items []T
	require.NoError(t, spill.Range(func(_ uint64, item T) error {
		items = append(items, item)
		return nil
	}))

	return items
}

func TestFileSpill(t *testing.T) {
	t.Run("NewFileSpill", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "nested", "fragments.gob")
		spill, err := NewFileSpill[int](target)
		require.NoError(t, err)
		require.NotNil(t, spill)
		require.Equal(t, target, spill.Path())
		defer spill.Close()
	})

	t.Run("AppendBatch keeps order across batches", func(t *testing.T) {
		spill, err := NewFileSpill[string](spillPath(t))
		require.NoError(t, err)
		defer spill.Close()

		require.NoError(t, spill.AppendBatch([]string{"first", "second"}))
		require.NoError(t, spill.AppendBatch([]string{"third"}))

		require.Equal(t, []string{"first", "second", "third"}, collect(t, spill))
	})

	t.Run("Len returns correct count", func(t *testing.T) {
		spill, err := NewFileSpill[int](spillPath(t))
		require.NoError(t, err)
		defer spill.Close()

		require.Equal(t, uint64(0), spill.Len())

		require.NoError(t, spill.AppendBatch([]int{1}))
		require.Equal(t, uint64(1), spill.Len())

		require.NoError(t, spill.AppendBatch([]int{2, 3}))
		require.Equal(t, uint64(3), spill.Len())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		spill, err := NewFileSpill[int](spillPath(t))
		require.NoError(t, err)
		defer spill.Close()

		require.NoError(t, spill.AppendBatch(nil))
		require.Equal(t, uint64(0), spill.Len())
	})

	t.Run("Range callback error stops iteration", func(t *testing.T) {
		spill, err := NewFileSpill[int](spillPath(t))
		require.NoError(t, err)
		defer spill.Close()

		require.NoError(t, spill.AppendBatch([]int{1, 2, 3}))

		count := 0
		rangeErr := spill.Range(func(index uint64, item int) error {
			count++
			if index == 1 {
				return errors.New("stop at index 1")
			}
			return nil
		})

		require.Error(t, rangeErr)
		require.Equal(t, 2, count) // Should stop after processing index 1
	})

	t.Run("Close keeps the data readable and rejects appends", func(t *testing.T) {
		spill, err := NewFileSpill[int](spillPath(t))
		require.NoError(t, err)

		require.NoError(t, spill.AppendBatch([]int{1}))
		require.NoError(t, spill.Close())

		require.Equal(t, []int{1}, collect(t, spill))
		require.ErrorIs(t, spill.AppendBatch([]int{2}), ErrReadOnly)
	})

	t.Run("Generic types work with different types", func(t *testing.T) {
		spillFloat, err := NewFileSpill[float64](spillPath(t))
		require.NoError(t, err)
		defer spillFloat.Close()

		require.NoError(t, spillFloat.AppendBatch([]float64{3.14, 2.71}))

		floats := collect(t, spillFloat)
		require.Len(t, floats, 2)
		require.InDelta(t, 3.14, floats[0], 0.001)
		require.InDelta(t, 2.71, floats[1], 0.001)

		type Point struct {
			X, Y int
		}

		spillPoint, err := NewFileSpill[Point](spillPath(t))
		require.NoError(t, err)
		defer spillPoint.Close()

		points := []Point{{X: 10, Y: 20}, {X: 30, Y: 40}}
		require.NoError(t, spillPoint.AppendBatch(points))
		require.Equal(t, points, collect(t, spillPoint))
	})
}

func TestOpenFileSpill(t *testing.T) {
	t.Run("reads items written by a previous spill", func(t *testing.T) {
		path := spillPath(t)

		writer, err := NewFileSpill[[]string](path)
		require.NoError(t, err)
		require.NoError(t, writer.AppendBatch([][]string{
			{"Results for File1.cs:", "    OK"},
			{"Error in File2.cs: parse error"},
		}))
		require.NoError(t, writer.Close())

		reader, err := OpenFileSpill[[]string](path)
		require.NoError(t, err)
		defer reader.Close()

		require.Equal(t, uint64(2), reader.Len())
		require.Equal(t, [][]string{{"Results for File1.cs:", "    OK"}, {"Error in File2.cs: parse error"}}, collect(t, reader))
	})

	t.Run("rejects appends", func(t *testing.T) {
		path := spillPath(t)

		writer, err := NewFileSpill[int](path)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		reader, err := OpenFileSpill[int](path)
		require.NoError(t, err)
		require.Equal(t, uint64(0), reader.Len())
		require.ErrorIs(t, reader.AppendBatch([]int{1}), ErrReadOnly)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenFileSpill[int](filepath.Join(t.TempDir(), "missing.gob"))
		require.Error(t, err)
	})
}

func spillPath(t testing.TB) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "spill.gob")
}

// BenchmarkAppendBatch measures the performance of appending one fragment at a time.
func BenchmarkAppendBatch(b *testing.B) {
	spill, err := NewFileSpill[[]string](spillPath(b))
	if err != nil {
		b.Fatalf("failed to create filespill: %v", err)
	}
	defer spill.Close()

	item := [][]string{{"Results for File.cs:", "    warning CS0168"}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = spill.AppendBatch(item)
	}
}

// BenchmarkRange measures the performance of iterating all items.
func BenchmarkRange(b *testing.B) {
	spill, err := NewFileSpill[[]string](spillPath(b))
	if err != nil {
		b.Fatalf("failed to create filespill: %v", err)
	}
	defer spill.Close()

	for i := 0; i < 1000; i++ {
		_ = spill.AppendBatch([][]string{{"Results for File.cs:", "    warning CS0168"}})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = spill.Range(func(index uint64, item []string) error {
			return nil
		})
	}
}

func TestEdgeCases(t *testing.T) {
	t.Run("empty filespill range returns no items", func(t *testing.T) {
		spill, err := NewFileSpill[int](spillPath(t))
		require.NoError(t, err)
		defer spill.Close()

		require.Empty(t, collect(t, spill))
	})

	t.Run("append empty slice item", func(t *testing.T) {
		spill, err := NewFileSpill[[]int](spillPath(t))
		require.NoError(t, err)
		defer spill.Close()

		require.NoError(t, spill.AppendBatch([][]int{{}}))

		items := collect(t, spill)
		require.Len(t, items, 1)
		require.Empty(t, items[0])
	})

	t.Run("append large numbers", func(t *testing.T) {
		spill, err := NewFileSpill[int64](spillPath(t))
		require.NoError(t, err)
		defer spill.Close()

		large := int64(math.MaxInt64)
		require.NoError(t, spill.AppendBatch([]int64{large}))
		require.Equal(t, []int64{large}, collect(t, spill))
	})

	t.Run("zero fields do not leak between items", func(t *testing.T) {
		type Data struct {
			Name  string
			Lines []string
		}

		spill, err := NewFileSpill[Data](spillPath(t))
		require.NoError(t, err)
		defer spill.Close()

		require.NoError(t, spill.AppendBatch([]Data{{Name: "a", Lines: []string{"x"}}, {Name: "b"}}))

		items := collect(t, spill)
		require.Len(t, items, 2)
		require.Equal(t, "b", items[1].Name)
		require.Empty(t, items[1].Lines)
	})

	t.Run("range with large dataset", func(t *testing.T) {
		spill, err := NewFileSpill[int](spillPath(t))
		require.NoError(t, err)
		defer spill.Close()

		n := 10000
		items := make([]int, n)
		for i := range items {
			items[i] = i
		}
		require.NoError(t, spill.AppendBatch(items))

		count := 0
		sum := 0
		require.NoError(t, spill.Range(func(index uint64, item int) error {
			count++
			sum += item
			return nil
		}))

		require.Equal(t, n, count)
		require.Equal(t, n*(n-1)/2, sum)
	})
}
