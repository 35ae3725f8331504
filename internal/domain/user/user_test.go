package user

import (
	"encoding/json"
	"testing"
)

func TestUser_UnmarshalJSON_AcceptsStringOrNumberID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantID  string
		wantErr bool
	}{
		{name: "string", raw: `{"id":"1","username":"alice","role":"user","apiKey":"k1"}`, wantID: "1"},
		{name: "number", raw: `{"id":7,"username":"zed","role":"admin","apiKey":"k7"}`, wantID: "7"},
		{name: "uuid", raw: `{"id":"6f1c9a1e-0000-4000-8000-000000000000","username":"u","role":"user","apiKey":"k"}`, wantID: "6f1c9a1e-0000-4000-8000-000000000000"},
		{name: "missing", raw: `{"username":"u","role":"user","apiKey":"k"}`, wantID: ""},
		{name: "bool_rejected", raw: `{"id":true,"username":"u","role":"user","apiKey":"k"}`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			var u User
			err := json.Unmarshal([]byte(tt.raw), &u)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", u)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.ID != tt.wantID {
				t.Fatalf("got id %q, want %q", u.ID, tt.wantID)
			}
			if u.APIKey == "" || u.Role == "" {
				t.Fatalf("other fields lost: %+v", u)
			}
		})
	}
}

func TestIdentity_FromUser(t *testing.T) {
	id := User{ID: "2", Username: "bob", Role: RoleAdmin, APIKey: "k"}.Identity()

	if id.UserID != "2" || id.Username != "bob" || !id.IsAdmin() {
		t.Fatalf("unexpected identity: %+v", id)
	}
}
