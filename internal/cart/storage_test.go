package cart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_PersistsAcrossSessions(t *testing.T) {
	dir := t.TempDir()

	c := New(FileStorage{Dir: dir})
	c.Add(menuItem("a", 150), 2)
	c.Add(menuItem("b", 40), 1)

	reopened := New(FileStorage{Dir: dir})
	assert.Equal(t, c.Lines(), reopened.Lines())

	reopened.Clear()
	_, err := os.Stat(filepath.Join(dir, "cart.json"))
	assert.True(t, os.IsNotExist(err))
	assert.True(t, New(FileStorage{Dir: dir}).Empty())
}

func TestFileStorage_StoredShape(t *testing.T) {
	dir := t.TempDir()
	c := New(FileStorage{Dir: dir})
	c.Add(menuItem("a", 150), 2)

	data, err := os.ReadFile(filepath.Join(dir, "cart.json"))
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":"a","name":"item a","price":150,"image_url":"https://example.com/a.jpg","quantity":2}]`,
		string(data))
}

func TestLoad_MalformedDataIsEmptyCart(t *testing.T) {
	for _, data := range []string{`{not json`, `{"id":"a"}`, `"cart"`} {
		c := New(&MemoryStorage{Data: []byte(data)})
		assert.True(t, c.Empty(), data)

		c.Add(menuItem("a", 10), 1)
		assert.Equal(t, 1, c.Count(), "session continues after bad data")
	}
}

func TestLoad_DropsBrokenLinesAndFoldsDuplicates(t *testing.T) {
	storage := &MemoryStorage{Data: []byte(`[
		{"id":"a","name":"A","price":100,"quantity":1},
		{"id":"","name":"nameless","price":5,"quantity":1},
		{"id":"b","name":"B","price":20,"quantity":0},
		{"id":"a","name":"A","price":100,"quantity":2}
	]`)}
	c := New(storage)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}
