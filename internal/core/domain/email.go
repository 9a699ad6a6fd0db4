package domain

import "strings"

// NormalizeEmail canonicalizes an address before it is stored or compared:
// surrounding space is dropped and the address lowercased. Gmail addresses
// additionally lose dots and any +suffix in the local part, and googlemail.com
// is folded into gmail.com.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	local, host := email[:at], email[at+1:]

	if host == "gmail.com" || host == "googlemail.com" {
		if plus := strings.Index(local, "+"); plus >= 0 {
			local = local[:plus]
		}
		local = strings.ReplaceAll(local, ".", "")
		host = "gmail.com"
	}
	return local + "@" + host
}
