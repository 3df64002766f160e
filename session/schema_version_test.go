package session

import (
	"errors"
	"strings"
	"testing"
)

func TestDecodeRejectsUnsupportedSchemaVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version":99,"isAuthenticated":false}`))
	if !errors.Is(err, ErrUnsupportedSchema) {
		t.Fatalf("expected unsupported schema version error, got %v", err)
	}
}

func TestDecodeRejectsCorruptBlob(t *testing.T) {
	for _, input := range []string{"", "   ", "{", `{"user": 7}`} {
		if _, err := Decode([]byte(input)); !errors.Is(err, ErrCorruptBlob) {
			t.Fatalf("expected corrupt blob error for %q, got %v", input, err)
		}
	}
}

func TestEncodeWritesStateKeysAndNulls(t *testing.T) {
	raw, err := Encode(State{CurrentView: ViewHome})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `{"isAuthenticated":false,"user":null,"accessToken":null,"refreshToken":null,"expiresAt":null}`
	if string(raw) != want {
		t.Fatalf("unexpected encoding:\n got %s\nwant %s", raw, want)
	}
}

func TestDecodeMigratesVersionOne(t *testing.T) {
	// Version 1 blobs carry no expiresAt key.
	raw := []byte(`{"isAuthenticated":true,"user":{"id":"u1","email":"a@b.com","role":"authenticated"},"accessToken":"a","refreshToken":"r"}`)
	st, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode v1: %v", err)
	}
	if !st.IsAuthenticated || st.User.ID != "u1" || st.AccessToken != "a" {
		t.Fatalf("unexpected migrated state: %+v", st)
	}
	if st.ExpiresAt != 0 {
		t.Fatalf("expected no expiry for v1 blob, got %d", st.ExpiresAt)
	}
}

func TestDecodeMigratesLegacyWrapper(t *testing.T) {
	raw := []byte(`{"state":{"isAuthenticated":true,"user":{"id":"u2"},"accessToken":"a","refreshToken":"r"},"version":0}`)
	st, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode wrapper: %v", err)
	}
	if !st.IsAuthenticated || st.User.ID != "u2" || st.RefreshToken != "r" {
		t.Fatalf("unexpected migrated state: %+v", st)
	}
}

func TestDecodeRecomputesAuthenticationFlag(t *testing.T) {
	raw := []byte(`{"version":2,"isAuthenticated":true,"user":null,"accessToken":"a","refreshToken":"r","expiresAt":10}`)
	st, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.IsAuthenticated {
		t.Fatal("blob without user must not rehydrate as authenticated")
	}
	if st.ExpiresAt != 10 {
		t.Fatalf("expected expiry 10, got %d", st.ExpiresAt)
	}
}

func TestEncodeDecodePreservesState(t *testing.T) {
	u := testUser()
	in := State{IsAuthenticated: true, User: &u, AccessToken: "a", RefreshToken: "r", ExpiresAt: 1_758_021_187}
	raw, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ExpiresAt != in.ExpiresAt || out.AccessToken != in.AccessToken || !out.IsAuthenticated {
		t.Fatalf("unexpected decoded state: %+v", out)
	}
	if !out.User.CreatedAt.Equal(u.CreatedAt) || out.User.UserMetadata != u.UserMetadata {
		t.Fatalf("user mismatch: %+v", out.User)
	}
}

func TestDecodeInfersVersionFromExpiryKey(t *testing.T) {
	raw := []byte(`{"isAuthenticated":true,"user":{"id":"u3"},"accessToken":"a","refreshToken":"r","expiresAt":1700000000}`)
	st, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.ExpiresAt != 1700000000 {
		t.Fatalf("expected expiry to survive without a version field, got %d", st.ExpiresAt)
	}

	st, err = Decode([]byte(`{"isAuthenticated":false,"user":null,"accessToken":null,"refreshToken":null,"expiresAt":null}`))
	if err != nil {
		t.Fatalf("decode null expiry: %v", err)
	}
	if st.ExpiresAt != 0 || st.IsAuthenticated {
		t.Fatalf("unexpected state for signed-out blob: %+v", st)
	}
}

func TestDecodeAcceptsExplicitVersionField(t *testing.T) {
	raw := []byte(`{"version":2,"isAuthenticated":true,"user":{"id":"u4"},"accessToken":"a","refreshToken":"r","expiresAt":42}`)
	st, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.IsAuthenticated || st.ExpiresAt != 42 {
		t.Fatalf("unexpected state: %+v", st)
	}

	again, err := Encode(st)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(again), `"version"`) {
		t.Fatalf("re-encoded blob must not carry a version field: %s", again)
	}
}
