package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAwards fires 50 concurrent awards of 10 points each at
// the same student. Every award must land exactly once: the final
// balance equals the sum and the ledger holds one entry per award.
func TestConcurrentAwards(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, token := app.seedTeacher(t, "lan.tran")
	studentData := app.registerStudent(t, "an.pham")
	studentID := studentData["id"].(string)

	concurrency := 50
	pointsPerAward := 10

	var wg sync.WaitGroup
	var successCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(map[string]interface{}{
				"student_id": studentID,
				"points":     pointsPerAward,
				"reason":     "Concurrency drill",
			})
			req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/students/award-points", bytes.NewReader(body))
			if err != nil {
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(concurrency), successCount.Load())

	// Final scan reflects every award exactly once
	resp, envelope := app.authedJSON(t, http.MethodPost, "/api/v1/students/scan-qr", token,
		map[string]string{"qr_value": studentData["qr_code"].(string)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(concurrency*pointsPerAward), data["balance"])

	// One ledger entry per award
	actResp, actEnvelope := app.authedJSON(t, http.MethodGet, "/api/v1/teacher/recent-transactions?limit=100", token, nil)
	require.Equal(t, http.StatusOK, actResp.StatusCode)
	txs := actEnvelope["data"].(map[string]interface{})["transactions"].([]interface{})
	assert.Len(t, txs, concurrency)
}
