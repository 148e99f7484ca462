package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	res := Success(http.StatusCreated, "payload")

	assert.Equal(t, "success", res.Status)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "payload", res.Data)
	assert.Empty(t, res.Error)
}

func TestError(t *testing.T) {
	res := Error(http.StatusNotFound, "dataset not found")

	assert.Equal(t, "error", res.Status)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "dataset not found", res.Error)
	assert.Nil(t, res.Data)
}

func TestPaginated(t *testing.T) {
	items := []string{"a", "b"}

	res := Paginated(http.StatusOK, "bookings", items, 42, 2, 20)

	assert.Equal(t, "success", res.Status)
	data, ok := res.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, items, data["bookings"])
	assert.Equal(t, int64(42), data["total"])
	assert.Equal(t, 2, data["page"])
	assert.Equal(t, 20, data["limit"])
}
