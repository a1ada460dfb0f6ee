// Package cookie sets and reads HTTP cookies that are either plain, signed
// with HMAC-SHA256, or sealed with AES-GCM.
//
// Every secret must be at least 32 characters. The first secret signs and
// seals new cookies, the remaining ones are still accepted when reading so
// secrets can be rotated without logging everybody out.
//
// Flash values are sealed JSON cookies that are removed on the first read:
//
//	_ = m.SetFlash(w, "messages", []string{"Authentication failed"})
//	var msgs []string
//	_ = m.GetFlash(w, r, "messages", &msgs)
package cookie
