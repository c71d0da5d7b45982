package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOrderAppendsLogLine(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	ev := OrderConfirmedEvent{
		OrderID:      31,
		UserID:       7,
		Username:     "alice",
		MovieID:      4,
		MovieTitle:   "Dune",
		TicketAmount: 2,
		TotalAmount:  150,
		StartsAt:     "2026-09-02 18:00:00",
		FinishesAt:   "2026-09-02 20:10:00",
		ConfirmedAt:  "2026-09-01T10:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, recordOrder(body))
	require.NoError(t, recordOrder(body))

	data, err := os.ReadFile(filepath.Join("logs", "order.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `order_id=31`)
	assert.Contains(t, string(data), `user="alice"`)
	assert.Contains(t, string(data), `movie="Dune"`)
	assert.Equal(t, 2, countLines(string(data)))
}

func TestRecordOrderRejectsMalformedPayload(t *testing.T) {
	err := recordOrder([]byte("{not json"))
	assert.Error(t, err)
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
