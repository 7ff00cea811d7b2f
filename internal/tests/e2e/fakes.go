package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tanbro/sipxrtc-demo-trtc-web/domain"
)

// TencentCall is one API action received by FakeTencentCloud
type TencentCall struct {
	Action string
	Body   map[string]interface{}
}

// FakeTencentCloud answers the SMS and TRTC API actions the server uses.
// A dismissed room stays gone, so dismissing it again fails with RoomNotExist.
type FakeTencentCloud struct {
	Server *httptest.Server

	mu        sync.Mutex
	calls     []TencentCall
	dismissed map[uint64]bool
	smsCodes  map[string]string
}

// NewFakeTencentCloud starts a fake Tencent Cloud API endpoint
func NewFakeTencentCloud(t *testing.T) *FakeTencentCloud {
	t.Helper()
	f := &FakeTencentCloud{
		dismissed: make(map[uint64]bool),
		smsCodes:  make(map[string]string),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the endpoint to configure the SDK clients with
func (f *FakeTencentCloud) URL() string {
	return f.Server.URL
}

// LastCode returns the last validity code texted to an E.164 number
func (f *FakeTencentCloud) LastCode(phone string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.smsCodes[phone]
	return code, ok
}

// Calls returns the received calls for one action
func (f *FakeTencentCloud) Calls(action string) []TencentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []TencentCall
	for _, c := range f.calls {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeTencentCloud) handle(w http.ResponseWriter, r *http.Request) {
	action := r.Header.Get("X-TC-Action")
	body := map[string]interface{}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeTencentError(w, "InvalidParameter", err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, TencentCall{Action: action, Body: body})

	switch action {
	case "SendSms":
		phones, _ := body["PhoneNumberSet"].([]interface{})
		params, _ := body["TemplateParamSet"].([]interface{})
		statuses := make([]map[string]interface{}, 0, len(phones))
		for _, p := range phones {
			phone := fmt.Sprint(p)
			if len(params) > 0 {
				f.smsCodes[phone] = fmt.Sprint(params[0])
			}
			statuses = append(statuses, map[string]interface{}{
				"SerialNo":    "2028:fake",
				"PhoneNumber": phone,
				"Fee":         1,
				"Code":        "Ok",
				"Message":     "send success",
				"IsoCode":     "CN",
			})
		}
		writeTencentResponse(w, map[string]interface{}{"SendStatusSet": statuses})
	case "DismissRoom":
		roomID := uint64(body["RoomId"].(float64))
		if f.dismissed[roomID] {
			writeTencentError(w, domain.CodeRoomNotExist, "room not exist")
			return
		}
		f.dismissed[roomID] = true
		writeTencentResponse(w, map[string]interface{}{})
	default:
		writeTencentError(w, "InvalidAction", "unsupported action "+action)
	}
}

func writeTencentResponse(w http.ResponseWriter, fields map[string]interface{}) {
	fields["RequestId"] = "fake-request"
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"Response": fields})
}

func writeTencentError(w http.ResponseWriter, code, message string) {
	writeTencentResponse(w, map[string]interface{}{
		"Error": map[string]string{"Code": code, "Message": message},
	})
}

// FakeSIPX accepts call startups like the SIPX open API
type FakeSIPX struct {
	Server *httptest.Server

	mu         sync.Mutex
	startups   []domain.CallStartup
	rejectCode int
	rejectMsg  string
}

// NewFakeSIPX starts a fake SIPX open API
func NewFakeSIPX(t *testing.T) *FakeSIPX {
	t.Helper()
	f := &FakeSIPX{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the open API base URL
func (f *FakeSIPX) URL() string {
	return f.Server.URL
}

// Reject makes every following startup fail with the given status
func (f *FakeSIPX) Reject(status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectCode = status
	f.rejectMsg = message
}

// Startups returns the accepted call startups
func (f *FakeSIPX) Startups() []domain.CallStartup {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.CallStartup(nil), f.startups...)
}

func (f *FakeSIPX) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/trtc/startup" {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	if q.Get("api_key") == "" || q.Get("expire_at") == "" || q.Get("signature") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "missing signature"})
		return
	}

	var req domain.CallStartup
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectCode != 0 {
		w.WriteHeader(f.rejectCode)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": f.rejectMsg})
		return
	}
	f.startups = append(f.startups, req)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(domain.CallStartupResult{ID: fmt.Sprintf("call-%d", len(f.startups))})
}
