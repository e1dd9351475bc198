package middleware

import "testing"

func TestAccessOptionsAllowed(t *testing.T) {
	cases := []struct {
		name    string
		allowed []int64
		userID  int64
		want    bool
	}{
		{name: "open mode allows anyone", allowed: nil, userID: 42, want: true},
		{name: "listed user allowed", allowed: []int64{1, 42}, userID: 42, want: true},
		{name: "unlisted user denied", allowed: []int64{1, 2}, userID: 42, want: false},
		{name: "empty slice means open mode", allowed: []int64{}, userID: 7, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := AccessOptions{AllowedUserIDs: tc.allowed}
			if got := opts.Allowed(tc.userID); got != tc.want {
				t.Fatalf("Allowed(%d) = %v, want %v", tc.userID, got, tc.want)
			}
		})
	}
}
