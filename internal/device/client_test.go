package device

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// samplePointJSON is a full point as the firmware emits it.
const samplePointJSON = `{"address":0,"name":"Room","currentTemp":21.5,"sensorBound":true,` +
	`"lowThreshold":10,"highThreshold":30,"hysteresis":2,"lowEnabled":true,"highEnabled":true,` +
	`"errorEnabled":false,"lowPriority":1,"highPriority":1,"errorPriority":2}`

// TestGetAlarmConfig verifies decoding of points and their raw field sets.
func TestGetAlarmConfig(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, AlarmConfigPath, r.URL.Path)

		_, _ = w.Write([]byte(`{"points":[` + samplePointJSON + `]}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	snapshot, err := client.GetAlarmConfig(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Points, 1)
	require.Len(t, snapshot.RawPoints, 1)

	point := snapshot.Points[0]
	require.Equal(t, 0, point.Address)
	require.Equal(t, "Room", point.Name)
	require.InEpsilon(t, 21.5, point.CurrentTemp, 1e-9)
	require.True(t, point.SensorBound)
	require.Equal(t, PriorityMedium, point.LowPriority)
	require.Equal(t, PriorityHigh, point.ErrorPriority)

	require.True(t, snapshot.RawPoints[0].Has("hysteresis"))
	require.False(t, snapshot.RawPoints[0].Has("noSuchField"))
}

// TestGetAlarmConfigNoPoints ensures a response without the points list
// is reported as a distinct error.
func TestGetAlarmConfigNoPoints(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	_, err = client.GetAlarmConfig(context.Background())
	require.ErrorIs(t, err, ErrNoPointsField)
}

// TestGetAlarmConfigStatusError ensures non-success statuses carry
// the code and raw body for diagnostics.
func TestGetAlarmConfigStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"flash busy"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	_, err = client.GetAlarmConfig(context.Background())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Code)
	require.Contains(t, statusErr.Body, "flash busy")
}

// TestApplyAlarmConfigPartialEncoding ensures omitted change fields are
// genuinely absent from the wire, preserving the partial-update contract.
func TestApplyAlarmConfigPartialEncoding(t *testing.T) {
	t.Parallel()

	var received ConfigChangeRequest

	var rawChanges []map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, AlarmConfigPath, r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		var envelope struct {
			Changes []map[string]json.RawMessage `json:"changes"`
		}

		body, _ := json.Marshal(received)
		require.NoError(t, json.Unmarshal(body, &envelope))

		rawChanges = envelope.Changes

		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	low := -5.0
	change := PointChange{Address: 3, LowThreshold: &low}

	response, err := client.ApplyAlarmConfig(context.Background(), []PointChange{change})
	require.NoError(t, err)
	require.JSONEq(t, `{"success":true}`, string(response))

	require.Len(t, received.Changes, 1)
	require.Len(t, rawChanges, 1)
	require.Contains(t, rawChanges[0], "address")
	require.Contains(t, rawChanges[0], "lowThreshold")
	require.NotContains(t, rawChanges[0], "highThreshold")
	require.NotContains(t, rawChanges[0], "name")
}

// TestBoundedWait ensures a slow device trips the per-call timeout.
func TestBoundedWait(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"points":[]}`))
	}))
	defer server.Close()

	client, err := New(server.URL, WithCallTimeout(30*time.Millisecond))
	require.NoError(t, err)

	_, err = client.GetAlarmConfig(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestGetStatusAndSensors verifies decoding of the supplemental endpoints.
func TestGetStatusAndSensors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case StatusPath:
			_, _ = w.Write([]byte(`{"deviceId":7,"firmwareVersion":203,"ds18b20Count":4,` +
				`"pt1000Count":1,"measurementPeriod":10,"uptime":3600,"deviceStatus":[0,0,1,0,0,0,0]}`))
		case SensorsPath:
			_, _ = w.Write([]byte(`{"sensors":[{"type":"DS18B20","name":"Boiler",` +
				`"currentTemp":55.2,"minTemp":12.0,"maxTemp":79.5,"lowAlarmThreshold":10,` +
				`"highAlarmThreshold":90,"alarmStatus":0,"errorStatus":0,` +
				`"romString":"28FF4A77911503C1","boundPoint":2}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	status, err := client.GetStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, status.DeviceID)
	require.Equal(t, int64(3600), status.UptimeSeconds)
	require.Len(t, status.DeviceStatus, 7)

	sensors, err := client.GetSensors(context.Background())
	require.NoError(t, err)
	require.Len(t, sensors, 1)
	require.Equal(t, "DS18B20", sensors[0].Type)
	require.NotNil(t, sensors[0].BoundPoint)
	require.Equal(t, 2, *sensors[0].BoundPoint)
}

// TestNormalizeBaseURL covers bare hosts, sockets, and full URLs.
func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"192.168.1.100":           "http://192.168.1.100",
		"192.168.1.100:8080":      "http://192.168.1.100:8080",
		"http://device.local/":    "http://device.local",
		"https://device.local:80": "https://device.local:80",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizeBaseURL(in))
	}
}

// TestNewRequiresAddress ensures an empty address is rejected up front.
func TestNewRequiresAddress(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.Error(t, err)
}
