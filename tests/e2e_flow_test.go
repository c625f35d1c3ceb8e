package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/middleware"
	"github.com/mansoorceksport/gymcard/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   string                 `json:"error"`
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, apiResponse) {
	t.Helper()
	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)

	var out apiResponse
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}, headers ...string) (*http.Response, apiResponse) {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(jsonBytes)
	}
	req, err := http.NewRequest(method, path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return e.do(t, req)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.IssueAdminToken(testSecret, "desk-1", "Front Desk", time.Hour)
	require.NoError(t, err)
	return token
}

func TestGoldenPath(t *testing.T) {
	runGoldenPath(t, repository.NewMemoryMemberRepository())
}

func TestGoldenPathMongo(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	db, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	runGoldenPath(t, repository.NewMongoMemberRepository(db))
}

func runGoldenPath(t *testing.T, store domain.MemberRepository) {
	env := newTestEnv(t, store)
	token := adminToken(t)

	// STEP 1: front desk registers a member on 2016-01-01 for one month
	resp, body := env.request(t, "POST", "/v1/admin/members", token, map[string]string{
		"firstName":    "Abebe",
		"lastName":     "Kebede",
		"duration":     "1 Month",
		"price":        "1500 ETB",
		"registerDate": "2016-01-01",
	}, "X-Correlation-ID", "create-abebe")
	require.Equal(t, http.StatusCreated, resp.StatusCode, body.Error)
	memberID := body.Data["id"].(string)
	require.NotEmpty(t, memberID)
	assert.EqualValues(t, 10, body.Data["remaining"])

	// Retried create with the same correlation id replays instead of duplicating
	require.Eventually(t, func() bool {
		for _, k := range env.Redis.Keys() {
			if strings.HasPrefix(k, "idempotency:") {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	resp, body = env.request(t, "POST", "/v1/admin/members", token, map[string]string{
		"firstName": "Abebe",
		"duration":  "1 Month",
	}, "X-Correlation-ID", "create-abebe")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("X-Idempotent-Replay"))
	assert.Equal(t, memberID, body.Data["id"])

	var listed struct {
		Data []domain.MemberRecord `json:"data"`
	}
	resp, err := env.App.Test(mustRequest(t, "GET", "/v1/admin/members", token), -1)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Len(t, listed.Data, 1)

	// STEP 2: the member scans the QR code
	resp, body = env.request(t, "GET", "/scan/"+memberID+"?scanned=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "Abebe Kebede", body.Data["name"])
	assert.Equal(t, "ACTIVE", body.Data["badge"])
	assert.Equal(t, "10 DAYS LEFT", body.Data["remainingText"])
	assert.Equal(t, "2016-02-01", body.Data["expiryDate"])
	assert.Equal(t, "2023-10-12", body.Data["expiryGregorian"])
	assert.Equal(t, "https://cards.test/scan/"+memberID+"?scanned=1", body.Data["scanUrl"])

	// STEP 3: renewal stacks onto the running membership
	resp, body = env.request(t, "POST", "/v1/admin/members/"+memberID+"/renew", token, map[string]string{
		"duration": "1 Month",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Error)
	assert.Equal(t, "2016-02-01", body.Data["registerDate"])
	assert.Equal(t, "ACTIVE", body.Data["status"])

	resp, body = env.request(t, "GET", "/scan/"+memberID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2016-03-01", body.Data["expiryDate"])
	assert.EqualValues(t, 30, body.Data["remaining"])

	// STEP 4: photo upload
	resp, body = env.do(t, photoRequest(t, "/v1/admin/members/"+memberID+"/photo", token))
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Error)
	photoURL := body.Data["profileImageUrl"].(string)
	assert.True(t, strings.HasPrefix(photoURL, "https://photos.test/members/"+memberID+"/"))

	_, body = env.request(t, "GET", "/scan/"+memberID, "", nil)
	assert.Equal(t, photoURL, body.Data["photoUrl"])

	// STEP 5: printable card
	resp, err = env.App.Test(mustRequest(t, "GET", "/scan/"+memberID+"/card.pdf", ""), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	// STEP 6: metrics reflect the card views
	resp, err = env.App.Test(mustRequest(t, "GET", "/metrics", ""), -1)
	require.NoError(t, err)
	metrics, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(metrics), `gymcard_card_views_total{badge="ACTIVE",scanned="true"}`)
}

func TestScannedCardPrefersStoredRemaining(t *testing.T) {
	stale := 3
	store := repository.NewMemoryMemberRepository(&domain.MemberRecord{
		ID:           "legacy-1",
		FirstName:    "Tigist",
		Duration:     "1",
		RegisterDate: "2016-01-01",
		Remaining:    &stale,
	})
	env := newTestEnv(t, store)

	_, body := env.request(t, "GET", "/scan/legacy-1?scanned=1", "", nil)
	assert.EqualValues(t, 3, body.Data["remaining"])
	assert.EqualValues(t, 10, body.Data["computedRemaining"])

	_, body = env.request(t, "GET", "/scan/legacy-1", "", nil)
	assert.EqualValues(t, 10, body.Data["remaining"])

	resp, body := env.request(t, "POST", "/v1/admin/remaining/refresh", adminToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body.Data["updated"])

	// the refresh invalidated the cached record
	_, body = env.request(t, "GET", "/scan/legacy-1?scanned=1", "", nil)
	assert.EqualValues(t, 10, body.Data["remaining"])
}

func TestCardForIncompleteRecord(t *testing.T) {
	store := repository.NewMemoryMemberRepository(&domain.MemberRecord{ID: "bare"})
	env := newTestEnv(t, store)

	resp, body := env.request(t, "GET", "/scan/bare?scanned=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "N/A", body.Data["firstName"])
	assert.Equal(t, "N/A", body.Data["badge"])
	assert.Equal(t, "N/A", body.Data["remainingText"])
	assert.Nil(t, body.Data["remaining"])
}

func TestErrorResponses(t *testing.T) {
	env := newTestEnv(t, repository.NewMemoryMemberRepository())
	token := adminToken(t)

	resp, body := env.request(t, "GET", "/scan/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "Member Not Found", body.Error)

	resp, _ = env.request(t, "GET", "/v1/admin/members", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.request(t, "GET", "/v1/admin/members", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = env.request(t, "POST", "/v1/admin/members", token, map[string]string{
		"firstName": "Abebe",
		"duration":  "fortnight",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Error, "Duration")

	resp, _ = env.request(t, "POST", "/v1/admin/members", token, map[string]string{
		"firstName":    "Abebe",
		"duration":     "1 Month",
		"registerDate": "2016-14-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.request(t, "PUT", "/v1/admin/members/nobody", token, map[string]string{"price": "100"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.request(t, "GET", "/v1/calendar/to-gregorian?date=2200-01-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCalendarEndpoints(t *testing.T) {
	env := newTestEnv(t, repository.NewMemoryMemberRepository())

	resp, body := env.request(t, "GET", "/v1/calendar/to-gregorian?date=2016-01-01", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2023-09-12", body.Data["gregorian"])

	_, body = env.request(t, "GET", "/v1/calendar/to-ethiopian?date=2023-10-02", "", nil)
	assert.Equal(t, "2016-01-21", body.Data["ethiopian"])

	_, body = env.request(t, "GET", "/v1/calendar/today", "", nil)
	assert.Equal(t, "2016-01-21", body.Data["ethiopian"])
	assert.Equal(t, "2023-10-02", body.Data["gregorian"])

	_, body = env.request(t, "GET", "/v1/calendar/leap/2015", "", nil)
	assert.Equal(t, true, body.Data["leap"])
	assert.EqualValues(t, 6, body.Data["pagumeDays"])

	_, body = env.request(t, "GET", "/v1/calendar/days-between?from=2016-01-01&to=2016-02-01", "", nil)
	assert.EqualValues(t, 30, body.Data["days"])

	_, body = env.request(t, "GET", "/v1/calendar/format?date=garbage", "", nil)
	assert.Equal(t, "garbage", body.Data["formatted"])
}

func mustRequest(t *testing.T, method, path, token string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func photoRequest(t *testing.T, path, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("photo", "face.png")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest("POST", path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
