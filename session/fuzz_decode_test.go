package session

import "testing"

// FuzzSessionDecode exercises the persisted blob decoder with arbitrary inputs.
// Goal: no panics; a successful decode always re-encodes.
func FuzzSessionDecode(f *testing.F) {
	u := testUser()
	encoded, err := Encode(State{IsAuthenticated: true, User: &u, AccessToken: "a", RefreshToken: "r", ExpiresAt: 1700003600})
	if err == nil {
		f.Add(encoded)
		if len(encoded) > 30 {
			f.Add(encoded[:30])
		}
	}

	f.Add([]byte{})
	f.Add([]byte("null"))
	f.Add([]byte(`{"state":null}`))
	f.Add([]byte(`{"state":{},"version":0}`))
	f.Add([]byte(`{"version":-1}`))
	f.Add([]byte{255, 255, 255})

	f.Fuzz(func(t *testing.T, data []byte) {
		st, err := Decode(data)
		if err != nil {
			return
		}
		if st.IsAuthenticated != st.authenticated() {
			t.Fatalf("decoded state violates invariant: %+v", st)
		}
		if _, err := Encode(st); err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
	})
}
