// Package cookie reads and writes HTTP cookies with HMAC-SHA256
// signing and key rotation.
//
// Session tokens are opaque random values, so signing is sufficient to
// detect tampering; the package deliberately does not encrypt.
//
//	mgr, err := cookie.New([]string{"at-least-32-characters-long-secret"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mgr.SetSigned(w, "sid", token, cookie.WithMaxAge(3600))
//	token, err := mgr.GetSigned(r, "sid")
//
// Rotation: pass the new secret first and keep old ones in the list
// until cookies signed with them have expired.
package cookie
