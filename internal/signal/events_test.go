package signal

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseClientEvent_ValidJoin(t *testing.T) {
	evt, err := ParseClientEvent([]byte(`{"type":"join_room","roomId":"r1","user":"alice"}`))
	if err != nil {
		t.Fatalf("ParseClientEvent: %v", err)
	}
	if evt.Type != EventJoinRoom || evt.RoomID != "r1" || evt.User != "alice" {
		t.Fatalf("parsed=%+v", evt)
	}
}

func TestParseClientEvent_SignalBodyStaysOpaque(t *testing.T) {
	raw := `{"type":"offer","target":"p2","signal":{"sdp":"v=0","weird":[1,2]}}`
	evt, err := ParseClientEvent([]byte(raw))
	if err != nil {
		t.Fatalf("ParseClientEvent: %v", err)
	}
	if string(evt.Signal) != `{"sdp":"v=0","weird":[1,2]}` {
		t.Fatalf("signal=%s, want untouched body", evt.Signal)
	}
}

func TestParseClientEvent_EmptyCodeIsValid(t *testing.T) {
	evt, err := ParseClientEvent([]byte(`{"type":"code_change","roomId":"r1","code":""}`))
	if err != nil {
		t.Fatalf("ParseClientEvent: %v", err)
	}
	if evt.Code == nil || *evt.Code != "" {
		t.Fatalf("code=%v, want present empty string", evt.Code)
	}
}

func TestParseClientEvent_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"unknown type", `{"type":"dance"}`},
		{"join missing room", `{"type":"join_room","user":"x"}`},
		{"offer missing target", `{"type":"offer","signal":{}}`},
		{"offer missing signal", `{"type":"offer","target":"p"}`},
		{"answer missing signal", `{"type":"answer","target":"p"}`},
		{"candidate missing target", `{"type":"ice_candidate","candidate":{}}`},
		{"candidate missing body", `{"type":"ice_candidate","target":"p"}`},
		{"code missing room", `{"type":"code_change","code":"x"}`},
		{"code missing code", `{"type":"code_change","roomId":"r"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseClientEvent([]byte(tc.raw))
			if !errors.Is(err, ErrMalformedEvent) {
				t.Fatalf("err=%v, want ErrMalformedEvent", err)
			}
		})
	}
}

// The encoded frame, not just the Go struct, is the contract: an empty
// snapshot must reach the client as "peers":[] and a cleared editor as
// "code":"", neither dropped by the encoder.
func TestServerEvent_EmptyPayloadFieldsSurviveEncoding(t *testing.T) {
	c := NewCore()
	connectPeers(t, c, "a", "b")

	out := c.Join("a", "r1", "")
	data, err := json.Marshal(out[0].Msg)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var snap map[string]any
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	peers, ok := snap["peers"].([]any)
	if !ok {
		t.Fatalf("frame %s: peers key missing or not an array", data)
	}
	if len(peers) != 0 {
		t.Fatalf("frame %s: peers=%v, want []", data, peers)
	}

	c.Join("b", "r1", "")
	edits := c.BroadcastEdit("r1", "b", "")
	data, err = json.Marshal(edits[0].Msg)
	if err != nil {
		t.Fatalf("marshal edit: %v", err)
	}
	var edit map[string]any
	if err := json.Unmarshal(data, &edit); err != nil {
		t.Fatalf("unmarshal edit: %v", err)
	}
	code, ok := edit["code"].(string)
	if !ok {
		t.Fatalf("frame %s: code key missing", data)
	}
	if code != "" {
		t.Fatalf("frame %s: code=%q, want empty string", data, code)
	}
}
