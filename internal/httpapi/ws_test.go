package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitaccess/gymgate/internal/gymgate/types"
)

func dialWS(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, f *serverFixture, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for f.server.hub.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d clients", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAccessEventsWS_BranchScoped(t *testing.T) {
	f := newServerFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.server.hub.Serve(ctx) }()

	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	end := time.Now().UTC().Add(30 * 24 * time.Hour)
	f.people.PutMember(types.Member{ID: "m1", BranchID: "b1", Name: "Alice", MembershipEnd: &end})
	f.people.PutMember(types.Member{ID: "m2", BranchID: "b2", Name: "Bob", MembershipEnd: &end})
	f.people.PutStaff(types.Staff{ID: "s1", BranchID: "b1", Name: "Admin", Role: types.RoleAdmin})
	token := f.staffToken(t, "s1")

	conn := dialWS(t, ts, "/ws/access-events?branch_id=b1&token="+token)
	waitForClients(t, f, 1)

	// Traffic on another branch first, then the subscribed branch. Only
	// the second event may reach this socket.
	rec := f.do(t, http.MethodPost, "/api/v1/attendance/members/check-in", "", map[string]any{"person_id": "m2", "branch_id": "b2"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/attendance/members/check-in", "", map[string]any{"person_id": "m1", "branch_id": "b1"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string `json:"type"`
		Data struct {
			BranchID string `json:"branch_id"`
			Type     string `json:"event_type"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "access_event", msg.Type)
	assert.Equal(t, "b1", msg.Data.BranchID, "events from other branches must never arrive")
	assert.Equal(t, "check_in", msg.Data.Type)
}

func TestAccessEventsWS_RequiresBranchAndToken(t *testing.T) {
	f := newServerFixture(t)

	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	f.people.PutStaff(types.Staff{ID: "s1", BranchID: "b1", Name: "Admin", Role: types.RoleAdmin})
	token := f.staffToken(t, "s1")

	// No token.
	resp, err := http.Get(ts.URL + "/ws/access-events?branch_id=b1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// No branch.
	resp, err = http.Get(ts.URL + "/ws/access-events?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCommandWS_StreamsAck(t *testing.T) {
	f := newServerFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.server.hub.Serve(ctx) }()

	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	f.people.PutStaff(types.Staff{ID: "s1", BranchID: "b1", Name: "Manager", Role: types.RoleManager})
	require.NoError(t, f.devices.Create(context.Background(), types.Device{ID: "dev-1", BranchID: "b1", Name: "Gate", RelayDelay: 5, IsOnline: true}))
	token := f.staffToken(t, "s1")

	rec := f.do(t, http.MethodPost, "/api/v1/device-trigger-relay", token, map[string]any{"device_id": "dev-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var res types.TriggerRelayResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	// Unknown commands are refused before the upgrade.
	resp, err := http.Get(ts.URL + "/ws/commands/ghost?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn := dialWS(t, ts, "/ws/commands/"+res.CommandID+"?token="+token)
	waitForClients(t, f, 1)

	rec = f.do(t, http.MethodPost, "/api/v1/device-commands/"+res.CommandID+"/ack", "", map[string]any{"status": "acknowledged"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string              `json:"type"`
		Data types.DeviceCommand `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "command_status", msg.Type)
	assert.Equal(t, types.CommandStatusAcknowledged, msg.Data.Status)
}
